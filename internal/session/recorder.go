package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"luxury-tycoon/internal/errors"
	"luxury-tycoon/internal/resilience"
	"luxury-tycoon/internal/store"
	"luxury-tycoon/pkg/utils"
)

const defaultQueueSize = 1024

// recorder writes journal entries in dispatch order on its own goroutine,
// so a slow or failing journal never holds the session lock. While the
// breaker is open entries are dropped without touching the journal.
type recorder struct {
	journal store.Journal
	retry   utils.RetryConfig
	breaker *resilience.Breaker
	logger  zerolog.Logger

	mu      sync.Mutex
	closed  bool
	queue   chan interface{}
	done    chan struct{}
	dropped atomic.Uint64
	failed  atomic.Uint64
}

func newRecorder(j store.Journal, retry utils.RetryConfig, breaker *resilience.Breaker, size int, logger zerolog.Logger) *recorder {
	if size <= 0 {
		size = defaultQueueSize
	}
	r := &recorder{
		journal: j,
		retry:   retry,
		breaker: breaker,
		logger:  logger,
		queue:   make(chan interface{}, size),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// enqueue queues an ActionRecord or NetWorthRecord. A full queue drops
// the entry.
func (r *recorder) enqueue(entry interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	select {
	case r.queue <- entry:
	default:
		r.dropped.Add(1)
		r.logger.Warn().Uint64("dropped", r.dropped.Load()).Msg("Journal queue full, entry dropped")
	}
}

func (r *recorder) run() {
	defer close(r.done)
	for entry := range r.queue {
		r.write(entry)
	}
}

func (r *recorder) write(entry interface{}) {
	ctx := context.Background()
	err := r.breaker.Execute(func() error {
		return utils.Retry(ctx, r.retry, func() error {
			switch e := entry.(type) {
			case store.ActionRecord:
				return r.journal.RecordAction(ctx, e)
			case store.NetWorthRecord:
				return r.journal.RecordSnapshot(ctx, e)
			}
			return nil
		})
	})
	switch {
	case err == nil:
	case errors.Is(err, resilience.ErrCircuitOpen):
		r.dropped.Add(1)
		r.logger.Debug().Msg("Journal circuit open, entry dropped")
	default:
		r.failed.Add(1)
		stats := r.breaker.Stats()
		r.logger.Error().Err(err).
			Str("circuit", string(stats.State)).
			Float64("failure_rate", stats.FailureRate()).
			Msg("Journal write failed")
	}
}

// close stops accepting entries and waits for the queue to drain.
func (r *recorder) close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
