package factory

import (
	"fmt"

	"github.com/mikey/spam-gateway/internal/adapters/classifier"
	"github.com/mikey/spam-gateway/internal/config"
	"github.com/mikey/spam-gateway/internal/core"
	"go.uber.org/zap"
)

// ClassifierFactory creates classifiers based on configuration
type ClassifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateClassifier creates a classifier based on the configuration
func (f *ClassifierFactory) CreateClassifier() (core.Classifier, error) {
	classifierType := f.cfg.GetString("classifier.type")

	switch classifierType {
	case "spamassassin":
		timeout, err := f.cfg.GetDuration("classifier.timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid classifier timeout: %w", err)
		}
		return classifier.NewSpamAssassinClassifier(
			f.cfg.GetString("classifier.spamd_address"),
			timeout,
			f.logger,
		)
	case "openai":
		return classifier.NewOpenAIClassifier(
			f.cfg.GetString("openai.api_key"),
			f.cfg.GetString("openai.model_name"),
			f.cfg.GetInt("openai.max_tokens"),
			float32(f.cfg.GetFloat64("openai.temperature")),
			f.cfg.GetInt("openai.max_body_size"),
			f.logger,
		)
	case "static":
		f.logger.Warn("Using static classifier, every payload gets the same verdict",
			zap.Int("code", f.cfg.GetInt("classifier.static_code")))
		return classifier.NewStaticClassifier(f.cfg.GetInt("classifier.static_code")), nil
	default:
		return nil, fmt.Errorf("unsupported classifier type: %s", classifierType)
	}
}
