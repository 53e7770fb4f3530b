package di

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/spam-gateway/internal/config"
	"github.com/mikey/spam-gateway/internal/core"
	"github.com/mikey/spam-gateway/internal/factory"
	"github.com/mikey/spam-gateway/internal/logging"
	"github.com/mikey/spam-gateway/internal/server"
	"github.com/mikey/spam-gateway/internal/stats"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register classifier factory and classifier
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.ClassifierFactory) (core.Classifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return nil, err
	}

	// Register gateway service
	if err := container.Provide(core.NewGatewayService); err != nil {
		return nil, err
	}

	// Register stats aggregator
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*stats.Aggregator, error) {
		interval, err := cfg.GetDuration("stats.flush_interval")
		if err != nil {
			return nil, fmt.Errorf("invalid stats flush interval: %w", err)
		}
		return stats.NewAggregator(logger, interval, cfg.GetInt("stats.buffer_size")), nil
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(a *stats.Aggregator) core.StatsSink {
		return a
	}); err != nil {
		return nil, err
	}

	// Register dispatcher
	if err := container.Provide(func(
		cfg *config.Config,
		logger *zap.Logger,
		service *core.GatewayService,
		sink core.StatsSink,
	) (*server.Dispatcher, error) {
		requestTimeout, err := cfg.GetDuration("server.request_timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid request timeout: %w", err)
		}
		drainTimeout, err := cfg.GetDuration("server.drain_timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid drain timeout: %w", err)
		}
		return server.NewDispatcher(
			service,
			sink,
			logger,
			cfg.GetString("server.listen_address"),
			cfg.GetInt("server.max_workers"),
			requestTimeout,
			cfg.GetInt64("server.max_payload_bytes"),
			drainTimeout,
		), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}
