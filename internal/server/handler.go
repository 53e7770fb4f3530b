package server

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/spam-gateway/internal/core"
	"go.uber.org/zap"
)

// writeGrace bounds the verdict write separately from the request
// deadline, so a request that timed out still gets its fail-open "ham"
// on the wire instead of a dead connection.
const writeGrace = 5 * time.Second

// handler processes exactly one accepted connection: read the payload to
// EOF, classify it, write the verdict token, emit one stats record. It
// owns the connection on every exit path, including panics.
type handler struct {
	service    *core.GatewayService
	stats      core.StatsSink
	logger     *zap.Logger
	timeout    time.Duration
	maxPayload int64
}

func newHandler(
	service *core.GatewayService,
	stats core.StatsSink,
	logger *zap.Logger,
	timeout time.Duration,
	maxPayload int64,
) *handler {
	return &handler{
		service:    service,
		stats:      stats,
		logger:     logger,
		timeout:    timeout,
		maxPayload: maxPayload,
	}
}

// newCorrelationID returns a fixed-width hex token tying together all
// log lines for one request
func newCorrelationID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:6])
}

// handle runs the request to completion. A panic anywhere in the request
// path is contained here and never reaches the dispatcher or other
// workers.
func (h *handler) handle(conn net.Conn) {
	start := time.Now()
	log := h.logger.With(zap.String("correlation_id", newCorrelationID()))

	// Every accepted connection yields exactly one stats record, even
	// when the request path panics. The record is emitted after the
	// response write, so stats delivery never adds to caller latency.
	verdict := core.VerdictError
	defer func() {
		if r := recover(); r != nil {
			log.Error("Request handler panicked",
				zap.Any("panic", r),
				zap.Duration("elapsed", time.Since(start)))
		}
		elapsed := time.Since(start)
		conn.Close()
		h.stats.Record(core.StatsRecord{Verdict: verdict, Elapsed: elapsed})
		log.Debug("Connection closed",
			zap.String("verdict", verdict.String()),
			zap.String("transmitted", verdict.WireToken()),
			zap.Duration("elapsed", elapsed))
	}()

	log.Debug("Connection accepted", zap.String("remote_addr", conn.RemoteAddr().String()))

	deadline := start.Add(h.timeout)
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()

	verdict = h.process(ctx, conn, deadline, log)

	if err := conn.SetWriteDeadline(time.Now().Add(writeGrace)); err != nil {
		log.Warn("Failed to set write deadline", zap.Error(err))
	}
	if _, err := conn.Write([]byte(verdict.WireToken())); err != nil {
		log.Warn("Failed to write verdict",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// process reads the payload and classifies it. Read failures and
// oversized payloads take the same fail-open path as classifier
// failures: internal verdict error, wire verdict ham.
func (h *handler) process(ctx context.Context, conn net.Conn, deadline time.Time, log *zap.Logger) core.Verdict {
	if err := conn.SetReadDeadline(deadline); err != nil {
		log.Warn("Failed to set read deadline", zap.Error(err))
	}

	payload, err := h.readPayload(conn)
	if err != nil {
		log.Warn("Failed to read payload, failing open", zap.Error(err))
		return core.VerdictError
	}
	log.Debug("Payload read", zap.Int("payload_bytes", len(payload)))

	log.Debug("Classifier invoked")
	verdict := h.service.Classify(ctx, payload)
	log.Debug("Classifier returned", zap.String("verdict", verdict.String()))

	return verdict
}

// readPayload reads the full payload until the client's EOF, bounded by
// the configured payload cap
func (h *handler) readPayload(conn net.Conn) ([]byte, error) {
	payload, err := io.ReadAll(io.LimitReader(conn, h.maxPayload+1))
	if err != nil {
		return nil, fmt.Errorf("payload read failed: %w", err)
	}
	if int64(len(payload)) > h.maxPayload {
		return nil, fmt.Errorf("payload exceeds %d bytes", h.maxPayload)
	}
	return payload, nil
}
