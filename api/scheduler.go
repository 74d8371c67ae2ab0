/*
scheduler.go - Automated compliance snapshot scheduler

PURPOSE:
  Periodically recomputes every user's designation progress and
  persists the results as compliance snapshots so the admin overview
  has fresh numbers without anyone clicking refresh.

DESIGN:
  - Runs a background goroutine with configurable capture interval
  - Captures immediately on start, then on every tick
  - Down-level stores keep only the latest capture per user and
    designation, so re-running is idempotent rather than additive

CONFIGURATION:
  - Interval: How often to capture (default: 1 hour)
  - Enabled: Whether the scheduler is active (default: true)

USAGE:
  scheduler := NewSnapshotScheduler(snaps, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - admin.go: AdminRefreshSnapshots (manual capture)
  - ce/snapshot.go: Snapshotter.CaptureAll
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fairhaven/cetrack/ce"
)

// SnapshotScheduler handles automated compliance captures.
type SnapshotScheduler struct {
	Snaps    *ce.Snapshotter
	Log      zerolog.Logger
	Interval time.Duration
	Enabled  bool

	// Clock returns "today" for each capture; tests override it.
	Clock func() ce.TimePoint

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSnapshotScheduler creates a new scheduler.
func NewSnapshotScheduler(snaps *ce.Snapshotter, log zerolog.Logger) *SnapshotScheduler {
	return &SnapshotScheduler{
		Snaps:    snaps,
		Log:      log,
		Interval: 1 * time.Hour,
		Enabled:  true,
		Clock:    ce.Today,
		stop:     make(chan bool),
	}
}

// Start begins the scheduler.
func (ss *SnapshotScheduler) Start() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if !ss.Enabled {
		ss.Log.Info().Msg("snapshot scheduler disabled, not starting")
		return
	}

	ss.ticker = time.NewTicker(ss.Interval)
	ss.wg.Add(1)

	go ss.run()

	ss.Log.Info().Dur("interval", ss.Interval).Msg("snapshot scheduler started")
}

// Stop stops the scheduler and waits for a capture in flight.
func (ss *SnapshotScheduler) Stop() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.ticker != nil {
		ss.ticker.Stop()
		close(ss.stop)
		ss.wg.Wait()
		ss.Log.Info().Msg("snapshot scheduler stopped")
	}
}

func (ss *SnapshotScheduler) run() {
	defer ss.wg.Done()

	// Capture immediately on start
	ss.capture()

	for {
		select {
		case <-ss.ticker.C:
			ss.capture()
		case <-ss.stop:
			return
		}
	}
}

func (ss *SnapshotScheduler) capture() {
	ctx := context.Background()
	now := ss.Clock()

	captured, err := ss.Snaps.CaptureAll(ctx, now, ce.SnapshotScheduled)
	if err != nil {
		ss.Log.Error().Err(err).Msg("scheduled snapshot capture failed")
		return
	}

	ss.Log.Info().
		Int("captured", captured).
		Str("as_of", now.String()).
		Msg("scheduled snapshot capture")
}

// RunNow triggers an immediate capture (for testing/admin).
func (ss *SnapshotScheduler) RunNow() {
	ss.capture()
}

// NextRunTime returns when the next scheduled capture will occur.
func (ss *SnapshotScheduler) NextRunTime() time.Time {
	return time.Now().Add(ss.Interval)
}
