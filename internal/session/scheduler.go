package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"luxury-tycoon/internal/economy"
	"luxury-tycoon/internal/logging"
)

// DefaultTickInterval is the default time between price ticks.
const DefaultTickInterval = 2 * time.Second

// Dispatcher accepts actions. *Session implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, a economy.Action) Result
}

// Scheduler fires a Tick at a fixed interval until stopped.
type Scheduler struct {
	target   Dispatcher
	interval time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
	ticks   atomic.Uint64
}

// NewScheduler creates a scheduler for target. A non-positive interval
// uses DefaultTickInterval.
func NewScheduler(target Dispatcher, interval time.Duration, logger zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Scheduler{
		target:   target,
		interval: interval,
		logger:   logging.WithComponent(logger, "scheduler"),
	}
}

// Start launches the tick loop. It returns immediately; calling Start on
// a running scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.loop(loopCtx, s.done)
	s.logger.Info().Dur("interval", s.interval).Msg("Scheduler started")
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return
		case <-ticker.C:
			res := s.target.Dispatch(ctx, economy.Tick{})
			if !res.Accepted {
				s.logger.Warn().Str("reason", res.Reason).Msg("Tick rejected")
				continue
			}
			s.ticks.Add(1)
		}
	}
}

// Stop ends the tick loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info().Uint64("ticks", s.ticks.Load()).Msg("Scheduler stopped")
}

// Running reports whether the tick loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Ticks returns the number of accepted ticks fired so far.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks.Load()
}
