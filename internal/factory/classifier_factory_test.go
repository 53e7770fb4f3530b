package factory

import (
	"context"
	"testing"

	"github.com/mikey/spam-gateway/internal/config"
	"github.com/mikey/spam-gateway/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestConfig(overrides map[string]interface{}) *config.Config {
	v := config.NewEmptyViper()
	for key, value := range overrides {
		v.Set(key, value)
	}
	return config.NewFromViper(v)
}

func TestCreateStaticClassifier(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(map[string]interface{}{
		"classifier.type":        "static",
		"classifier.static_code": core.ResultSpam,
	})
	f := NewClassifierFactory(cfg, zaptest.NewLogger(t))

	cls, err := f.CreateClassifier()
	require.NoError(t, err)

	code, err := cls.Classify(context.Background(), []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, core.ResultSpam, code)
}

func TestCreateOpenAIClassifierRequiresKey(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(map[string]interface{}{
		"classifier.type": "openai",
		"openai.api_key":  "",
	})
	f := NewClassifierFactory(cfg, zaptest.NewLogger(t))

	_, err := f.CreateClassifier()
	assert.Error(t, err, "startup must fail fast on an unusable classifier")
}

func TestCreateUnsupportedClassifier(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(map[string]interface{}{
		"classifier.type": "carrier-pigeon",
	})
	f := NewClassifierFactory(cfg, zaptest.NewLogger(t))

	_, err := f.CreateClassifier()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported classifier type")
}
