package server

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mikey/spam-gateway/internal/core"
	"go.uber.org/zap"
)

const (
	// acceptPollInterval bounds the accept wait so housekeeping (high
	// water checks, shutdown) runs even with no traffic
	acceptPollInterval = 1 * time.Second

	// highWaterLogInterval rate-limits the pool-nearing-capacity warning
	highWaterLogInterval = 60 * time.Second
)

// Dispatcher owns the listening socket and admission control. Each
// accepted connection is handed to exactly one worker goroutine; once
// maxWorkers are in flight, further connections are closed immediately
// without a worker being created.
type Dispatcher struct {
	service      *core.GatewayService
	stats        core.StatsSink
	logger       *zap.Logger
	listenAddr   string
	maxWorkers   int
	drainTimeout time.Duration

	handler  *handler
	listener *net.TCPListener
	slots    chan struct{}
	wg       sync.WaitGroup
	stopCh   chan struct{}
	rejected atomic.Int64

	lastHighWater time.Time
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(
	service *core.GatewayService,
	stats core.StatsSink,
	logger *zap.Logger,
	listenAddr string,
	maxWorkers int,
	requestTimeout time.Duration,
	maxPayloadBytes int64,
	drainTimeout time.Duration,
) *Dispatcher {
	return &Dispatcher{
		service:      service,
		stats:        stats,
		logger:       logger,
		listenAddr:   listenAddr,
		maxWorkers:   maxWorkers,
		drainTimeout: drainTimeout,
		handler:      newHandler(service, stats, logger, requestTimeout, maxPayloadBytes),
		slots:        make(chan struct{}, maxWorkers),
		stopCh:       make(chan struct{}),
	}
}

// Start binds the listening socket and launches the accept loop. A bind
// failure is fatal to the caller: no traffic may be served without it.
func (d *Dispatcher) Start() error {
	addr, err := net.ResolveTCPAddr("tcp", d.listenAddr)
	if err != nil {
		return fmt.Errorf("invalid listen address %s: %w", d.listenAddr, err)
	}
	listener, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", d.listenAddr, err)
	}
	d.listener = listener

	d.logger.Info("Gateway listening",
		zap.String("address", listener.Addr().String()),
		zap.Int("max_workers", d.maxWorkers))

	go d.acceptLoop()
	return nil
}

// Addr returns the bound listener address
func (d *Dispatcher) Addr() net.Addr {
	return d.listener.Addr()
}

// ActiveWorkers returns the number of requests currently in flight
func (d *Dispatcher) ActiveWorkers() int {
	return len(d.slots)
}

// RejectedTotal returns the number of connections refused by admission
// control since startup
func (d *Dispatcher) RejectedTotal() int64 {
	return d.rejected.Load()
}

// Stop closes the listener and waits for in-flight workers, bounded by
// the drain timeout
func (d *Dispatcher) Stop() error {
	close(d.stopCh)
	err := d.listener.Close()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(d.drainTimeout):
		d.logger.Warn("Drain timeout expired with workers still active",
			zap.Int("active", d.ActiveWorkers()))
	}

	d.logger.Info("Dispatcher stopped",
		zap.Int64("rejected_total", d.rejected.Load()))
	return err
}

func (d *Dispatcher) acceptLoop() {
	for {
		select {
		case <-d.stopCh:
			return
		default:
		}

		d.checkHighWater()

		if err := d.listener.SetDeadline(time.Now().Add(acceptPollInterval)); err != nil {
			select {
			case <-d.stopCh:
			default:
				d.logger.Error("Failed to arm accept deadline", zap.Error(err))
			}
			return
		}

		conn, err := d.listener.AcceptTCP()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-d.stopCh:
				return
			default:
			}
			d.logger.Error("Accept failed", zap.Error(err))
			continue
		}

		d.admit(conn)
	}
}

// admit launches a worker for the connection if a slot is free, and
// otherwise closes it on the spot. Rejections never create a handler
// and never touch the classifier.
func (d *Dispatcher) admit(conn *net.TCPConn) {
	select {
	case d.slots <- struct{}{}:
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			defer func() { <-d.slots }()
			d.handler.handle(conn)
		}()
	default:
		d.rejected.Add(1)
		d.logger.Warn("Connection rejected, worker pool exhausted",
			zap.String("remote_addr", conn.RemoteAddr().String()),
			zap.Int("max_workers", d.maxWorkers),
			zap.Int64("rejected_total", d.rejected.Load()))
		conn.Close()
	}
}

// checkHighWater warns when the pool is running at or above 90% of
// capacity, at most once per highWaterLogInterval
func (d *Dispatcher) checkHighWater() {
	active := d.ActiveWorkers()
	if active*10 < d.maxWorkers*9 {
		return
	}
	if time.Since(d.lastHighWater) < highWaterLogInterval {
		return
	}
	d.lastHighWater = time.Now()
	d.logger.Warn("Worker pool nearing capacity",
		zap.Int("active", active),
		zap.Int("max_workers", d.maxWorkers),
		zap.Int("percent", active*100/d.maxWorkers),
		zap.Int64("rejected_total", d.rejected.Load()))
}
