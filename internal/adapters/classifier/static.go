package classifier

import (
	"context"
)

// StaticClassifier returns a fixed result code for every payload. It is
// used for smoke testing the gateway without a classification engine.
type StaticClassifier struct {
	code int
	err  error
}

// NewStaticClassifier creates a classifier that always returns code
func NewStaticClassifier(code int) *StaticClassifier {
	return &StaticClassifier{code: code}
}

// NewFailingClassifier creates a classifier that always fails with err
func NewFailingClassifier(err error) *StaticClassifier {
	return &StaticClassifier{err: err}
}

// Classify returns the configured result code or error
func (c *StaticClassifier) Classify(_ context.Context, _ []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	return c.code, nil
}
