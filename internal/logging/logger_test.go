package logging

import (
	"testing"

	"github.com/mikey/spam-gateway/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func newTestConfig(level, format string) *config.Config {
	v := config.NewEmptyViper()
	v.Set("logging.level", level)
	v.Set("logging.format", format)
	return config.NewFromViper(v)
}

func TestInitLoggerHonorsLevel(t *testing.T) {
	t.Parallel()

	logger, err := InitLogger(newTestConfig("debug", "json"))
	require.NoError(t, err)
	defer logger.Sync()

	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = InitLogger(newTestConfig("warn", "console"))
	require.NoError(t, err)
	defer logger.Sync()

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestInitLoggerRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := InitLogger(newTestConfig("loud", "json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid logging.level")
}
