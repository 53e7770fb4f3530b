package core

import (
	"context"
)

// Classifier defines the call contract with the external classification
// engine
type Classifier interface {
	// Classify analyzes a raw email payload and returns a result code:
	// ResultSpam or ResultHam. Any other code, or a non-nil error,
	// is treated as a classifier failure by the caller.
	Classify(ctx context.Context, payload []byte) (int, error)
}

// StatsSink receives one record per completed request
type StatsSink interface {
	// Record submits a completed-request record for aggregation
	Record(rec StatsRecord)
}
