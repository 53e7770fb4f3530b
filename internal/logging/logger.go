package logging

import (
	"fmt"

	"github.com/mikey/spam-gateway/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// build constructs a logger for the given level and output format
func build(level zapcore.Level, jsonFormat bool) (*zap.Logger, error) {
	var logConfig zap.Config
	if jsonFormat {
		logConfig = zap.NewProductionConfig()
	} else {
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	logConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err := logConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// InitLogger initializes the gateway logger based on configuration.
// An unrecognized logging.level is rejected rather than silently
// downgraded, matching the fail-fast startup contract.
func InitLogger(cfg *config.Config) (*zap.Logger, error) {
	levelName := cfg.GetString("logging.level")
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("invalid logging.level %q: %w", levelName, err)
	}

	logger, err := build(level, cfg.GetString("logging.format") == "json")
	if err != nil {
		return nil, err
	}
	return logger.Named("spam-gateway"), nil
}

// InitConsoleLogger initializes a console-friendly logger for the
// companion tools
func InitConsoleLogger(verbose bool, jsonFormat bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	return build(level, jsonFormat)
}
