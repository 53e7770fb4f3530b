package classifier

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/mikey/spam-gateway/internal/core"
	"github.com/teamwork/spamc"
	"go.uber.org/zap"
)

// SpamAssassinClassifier is a Classifier implementation backed by a
// spamd instance speaking the SpamAssassin protocol
type SpamAssassinClassifier struct {
	client *spamc.Client
	logger *zap.Logger
}

// NewSpamAssassinClassifier creates a new SpamAssassin classifier and
// verifies the spamd instance is reachable
func NewSpamAssassinClassifier(addr string, timeout time.Duration, logger *zap.Logger) (*SpamAssassinClassifier, error) {
	client := spamc.New(addr, &net.Dialer{
		Timeout: timeout,
	})
	if err := client.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("could not ping spamd at %s: %w", addr, err)
	}

	logger.Info("Connected to spamd", zap.String("address", addr))

	return &SpamAssassinClassifier{
		client: client,
		logger: logger,
	}, nil
}

// Classify submits the payload to spamd and maps its spam determination
// onto the result-code contract
func (c *SpamAssassinClassifier) Classify(ctx context.Context, payload []byte) (int, error) {
	out, err := c.client.Check(ctx, bytes.NewReader(payload), nil)
	if err != nil {
		return 0, fmt.Errorf("spamd check failed: %w", err)
	}

	c.logger.Debug("spamd check completed",
		zap.Bool("is_spam", out.IsSpam),
		zap.Float64("score", out.Score))

	if out.IsSpam {
		return core.ResultSpam, nil
	}
	return core.ResultHam, nil
}
