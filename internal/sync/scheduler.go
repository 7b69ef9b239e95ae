package sync

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"fieldstock/internal/core/apperror"
	"fieldstock/pkg/logger"
)

// DefaultInterval is used when no sync interval is configured.
const DefaultInterval = 5 * time.Minute

const stopGrace = 10 * time.Second

// Status is the scheduler state exposed over the control API.
type Status struct {
	Active          bool       `json:"active"`
	IntervalSeconds int        `json:"intervalSeconds"`
	LastRunAt       *time.Time `json:"lastRunAt,omitempty"`
	LastStats       *Stats     `json:"lastStats,omitempty"`
	LastError       string     `json:"lastError,omitempty"`
}

// Scheduler runs the orchestrator on a fixed interval. Runs never
// overlap: if a cycle is still going when the next tick fires, the
// tick is skipped.
type Scheduler struct {
	orch     *Orchestrator
	interval time.Duration
	log      *logger.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	wg      sync.WaitGroup
	inRun   atomic.Bool
	lastRun atomic.Pointer[runResult]
}

type runResult struct {
	at    time.Time
	stats *Stats
	err   error
}

// NewScheduler creates a scheduler. A non-positive interval falls back
// to DefaultInterval.
func NewScheduler(orch *Orchestrator, interval time.Duration, log *logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		orch:     orch,
		interval: interval,
		log:      log.WithComponent("scheduler"),
	}
}

// Start begins periodic synchronization and kicks off an immediate
// first run. Calling Start on an active scheduler is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.interval), s.runCycle); err != nil {
		return fmt.Errorf("schedule sync: %w", err)
	}
	c.Start()
	s.cron = c

	// First cycle runs right away rather than one interval from now.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runCycle()
	}()

	s.log.Infow("periodic sync started", "interval", s.interval.String())
	return nil
}

// Stop halts periodic synchronization and waits briefly for an
// in-flight cycle to finish. Calling Stop on an inactive scheduler is
// a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return
	}
	cronCtx := s.cron.Stop()
	s.cron = nil

	done := make(chan struct{})
	go func() {
		<-cronCtx.Done()
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(stopGrace):
		s.log.Warnw("sync cycle still running at shutdown", "grace", stopGrace.String())
	}

	s.log.Infow("periodic sync stopped")
}

// RunNow triggers one synchronization cycle synchronously, independent
// of the periodic schedule. It shares the single-flight guard with the
// scheduled runs.
func (s *Scheduler) RunNow(ctx context.Context) (*Stats, error) {
	if !s.inRun.CompareAndSwap(false, true) {
		return nil, apperror.NewConflict("a synchronization cycle is already running")
	}
	defer s.inRun.Store(false)

	return s.runLocked(ctx)
}

// Active reports whether periodic synchronization is scheduled.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron != nil
}

// Status returns the scheduler state and the outcome of the last run.
func (s *Scheduler) Status() Status {
	st := Status{
		Active:          s.Active(),
		IntervalSeconds: int(s.interval / time.Second),
	}
	if last := s.lastRun.Load(); last != nil {
		at := last.at
		st.LastRunAt = &at
		st.LastStats = last.stats
		if last.err != nil {
			st.LastError = last.err.Error()
		}
	}
	return st
}

func (s *Scheduler) runCycle() {
	if !s.inRun.CompareAndSwap(false, true) {
		s.log.Debugw("sync cycle skipped, previous still running")
		return
	}
	defer s.inRun.Store(false)

	if _, err := s.runLocked(context.Background()); err != nil {
		s.log.Errorw("sync cycle failed", "error", err)
	}
}

func (s *Scheduler) runLocked(ctx context.Context) (*Stats, error) {
	stats, err := s.orch.RunOnce(ctx)
	s.lastRun.Store(&runResult{at: time.Now(), stats: stats, err: err})
	return stats, err
}
