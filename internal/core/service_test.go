package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mikey/spam-gateway/internal/core"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

// classifierFunc adapts a function to the core.Classifier interface
type classifierFunc func(ctx context.Context, payload []byte) (int, error)

func (f classifierFunc) Classify(ctx context.Context, payload []byte) (int, error) {
	return f(ctx, payload)
}

func staticCode(code int) core.Classifier {
	return classifierFunc(func(context.Context, []byte) (int, error) {
		return code, nil
	})
}

// TestClassifyResultCodes verifies the result-code contract: 0 is spam,
// 1 is ham, anything else fails open
func TestClassifyResultCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		code        int
		wantVerdict core.Verdict
		wantWire    string
	}{
		{"code 0 is spam", 0, core.VerdictSpam, "spam"},
		{"code 1 is ham", 1, core.VerdictHam, "ham"},
		{"negative code fails open", -1, core.VerdictError, "ham"},
		{"out-of-range code fails open", 7, core.VerdictError, "ham"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := core.NewGatewayService(staticCode(tt.code), zaptest.NewLogger(t))

			verdict := service.Classify(context.Background(), []byte("a test email"))

			assert.Equal(t, tt.wantVerdict, verdict)
			assert.Equal(t, tt.wantWire, verdict.WireToken(),
				"wire token must never expose an error verdict")
		})
	}
}

// TestClassifyFailureFailsOpen verifies that a failing classifier yields
// the internal error verdict but still transmits ham
func TestClassifyFailureFailsOpen(t *testing.T) {
	t.Parallel()

	failing := classifierFunc(func(context.Context, []byte) (int, error) {
		return 0, errors.New("classification network unreachable")
	})
	service := core.NewGatewayService(failing, zaptest.NewLogger(t))

	verdict := service.Classify(context.Background(), []byte("a test email"))

	assert.Equal(t, core.VerdictError, verdict,
		"internal telemetry must record the failure")
	assert.Equal(t, "ham", verdict.WireToken(),
		"a broken classifier must never cause spam blocking")
}

func TestVerdictStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "spam", core.VerdictSpam.String())
	assert.Equal(t, "ham", core.VerdictHam.String())
	assert.Equal(t, "error", core.VerdictError.String())

	assert.Equal(t, "spam", core.VerdictSpam.WireToken())
	assert.Equal(t, "ham", core.VerdictHam.WireToken())
	assert.Equal(t, "ham", core.VerdictError.WireToken())
}
