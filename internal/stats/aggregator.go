package stats

import (
	"time"

	"github.com/mikey/spam-gateway/internal/core"
	"go.uber.org/zap"
)

// Snapshot is a read-only copy of the current stats window
type Snapshot struct {
	WindowStart time.Time
	Total       int64
	Ham         int64
	Spam        int64
	Errors      int64
	Cumulative  time.Duration
	Min         time.Duration
	Max         time.Duration
}

// Average returns the mean elapsed time of the window, 0 for an empty window
func (s Snapshot) Average() time.Duration {
	if s.Total == 0 {
		return 0
	}
	return s.Cumulative / time.Duration(s.Total)
}

// Aggregator turns the stream of per-request records from all workers
// into periodic summaries. The window is mutated only by the run loop,
// so producers never contend on shared state; they just send on the
// records channel.
type Aggregator struct {
	records   chan core.StatsRecord
	snapshots chan chan Snapshot
	interval  time.Duration
	logger    *zap.Logger
	stopCh    chan struct{}
	doneCh    chan struct{}

	window Snapshot
}

// NewAggregator creates a stats aggregator flushing a summary every interval
func NewAggregator(logger *zap.Logger, interval time.Duration, bufferSize int) *Aggregator {
	return &Aggregator{
		records:   make(chan core.StatsRecord, bufferSize),
		snapshots: make(chan chan Snapshot),
		interval:  interval,
		logger:    logger,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Record submits a completed-request record. Safe to call from any
// number of workers concurrently.
func (a *Aggregator) Record(rec core.StatsRecord) {
	a.records <- rec
}

// Snapshot returns a copy of the current window, served by the run loop
func (a *Aggregator) Snapshot() Snapshot {
	reply := make(chan Snapshot, 1)
	a.snapshots <- reply
	return <-reply
}

// Start launches the aggregation loop
func (a *Aggregator) Start() {
	a.window = Snapshot{WindowStart: time.Now()}
	go a.run()
}

// Stop terminates the aggregation loop after a final flush
func (a *Aggregator) Stop() {
	close(a.stopCh)
	<-a.doneCh
}

func (a *Aggregator) run() {
	defer close(a.doneCh)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case rec := <-a.records:
			a.apply(rec)
		case reply := <-a.snapshots:
			reply <- a.window
		case <-ticker.C:
			a.flush()
		case <-a.stopCh:
			// Drain anything workers managed to send before shutdown
			for {
				select {
				case rec := <-a.records:
					a.apply(rec)
				default:
					a.flush()
					return
				}
			}
		}
	}
}

func (a *Aggregator) apply(rec core.StatsRecord) {
	switch rec.Verdict {
	case core.VerdictHam:
		a.window.Ham++
	case core.VerdictSpam:
		a.window.Spam++
	default:
		a.window.Errors++
	}
	a.window.Total++
	a.window.Cumulative += rec.Elapsed

	// The first record of a window sets both bounds unconditionally
	if a.window.Total == 1 || rec.Elapsed < a.window.Min {
		a.window.Min = rec.Elapsed
	}
	if a.window.Total == 1 || rec.Elapsed > a.window.Max {
		a.window.Max = rec.Elapsed
	}
}

// flush emits the window summary and resets it. Empty windows are still
// reported so operators can tell an idle gateway from a dead one.
func (a *Aggregator) flush() {
	w := a.window
	a.logger.Info("Stats window",
		zap.Time("window_start", w.WindowStart),
		zap.Int64("total", w.Total),
		zap.Int64("ham", w.Ham),
		zap.Int64("spam", w.Spam),
		zap.Int64("errors", w.Errors),
		zap.Duration("avg_elapsed", w.Average()),
		zap.Duration("min_elapsed", w.Min),
		zap.Duration("max_elapsed", w.Max))

	a.window = Snapshot{WindowStart: time.Now()}
}
