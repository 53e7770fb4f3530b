package core

import (
	"context"

	"go.uber.org/zap"
)

// GatewayService is the core service wrapping the external classifier
// with the fail-open verdict policy
type GatewayService struct {
	classifier Classifier
	logger     *zap.Logger
}

// NewGatewayService creates a new gateway service
func NewGatewayService(classifier Classifier, logger *zap.Logger) *GatewayService {
	return &GatewayService{
		classifier: classifier,
		logger:     logger,
	}
}

// Classify submits a payload to the classifier and maps the result code
// onto a verdict. A classifier failure or an out-of-range result code
// yields VerdictError; the wire token for that verdict is still "ham",
// so an unavailable classification engine never blocks legitimate mail.
func (s *GatewayService) Classify(ctx context.Context, payload []byte) Verdict {
	code, err := s.classifier.Classify(ctx, payload)
	if err != nil {
		s.logger.Warn("Classifier failed, failing open",
			zap.Error(err),
			zap.Int("payload_bytes", len(payload)))
		return VerdictError
	}

	verdict := VerdictFromCode(code)
	if verdict == VerdictError {
		s.logger.Warn("Classifier returned out-of-range result code, failing open",
			zap.Int("code", code))
	}

	return verdict
}
