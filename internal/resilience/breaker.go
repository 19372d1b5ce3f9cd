// Package resilience provides a circuit breaker for calls to slow or
// failing dependencies such as the journal database.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState string

const (
	CircuitClosed   CircuitState = "closed"    // Normal operation
	CircuitOpen     CircuitState = "open"      // Failing, rejecting calls
	CircuitHalfOpen CircuitState = "half_open" // Probing for recovery
)

// ErrCircuitOpen is returned when the circuit is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig holds circuit breaker configuration.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that open the circuit
	FailureThreshold int
	// SuccessThreshold is the number of half-open successes that close it again
	SuccessThreshold int
	// Cooldown is how long the circuit stays open before probing
	Cooldown time.Duration
}

// DefaultBreakerConfig returns the journal defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Cooldown:         30 * time.Second,
	}
}

// Breaker implements the circuit breaker pattern.
type Breaker struct {
	name   string
	config BreakerConfig
	now    func() time.Time

	mu          sync.Mutex
	state       CircuitState
	failures    int
	successes   int
	lastFailure time.Time
	lastChange  time.Time

	calls     int64
	failed    int64
	succeeded int64
	rejected  int64
}

// NewBreaker creates a closed breaker. Zero config fields take their
// defaults and a nil now uses time.Now.
func NewBreaker(name string, config BreakerConfig, now func() time.Time) *Breaker {
	def := DefaultBreakerConfig()
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = def.FailureThreshold
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = def.SuccessThreshold
	}
	if config.Cooldown <= 0 {
		config.Cooldown = def.Cooldown
	}
	if now == nil {
		now = time.Now
	}
	return &Breaker{
		name:       name,
		config:     config,
		now:        now,
		state:      CircuitClosed,
		lastChange: now(),
	}
}

// Execute runs fn unless the circuit is open. fn runs on the caller's
// goroutine.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}
	if err := fn(); err != nil {
		b.recordFailure()
		return err
	}
	b.recordSuccess()
	return nil
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls++
	if b.state == CircuitOpen {
		if b.now().Sub(b.lastFailure) < b.config.Cooldown {
			b.rejected++
			return ErrCircuitOpen
		}
		b.transitionTo(CircuitHalfOpen)
	}
	return nil
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.succeeded++
	switch b.state {
	case CircuitHalfOpen:
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.transitionTo(CircuitClosed)
		}
	case CircuitClosed:
		b.failures = 0
	}
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failed++
	b.lastFailure = b.now()

	switch b.state {
	case CircuitClosed:
		b.failures++
		if b.failures >= b.config.FailureThreshold {
			b.transitionTo(CircuitOpen)
		}
	case CircuitHalfOpen:
		b.transitionTo(CircuitOpen)
	}
}

func (b *Breaker) transitionTo(state CircuitState) {
	b.state = state
	b.lastChange = b.now()
	b.failures = 0
	b.successes = 0
}

// State returns the current circuit state.
func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats returns breaker counters.
func (b *Breaker) Stats() BreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BreakerStats{
		Name:       b.name,
		State:      b.state,
		Calls:      b.calls,
		Succeeded:  b.succeeded,
		Failed:     b.failed,
		Rejected:   b.rejected,
		LastChange: b.lastChange,
	}
}

// BreakerStats holds circuit breaker statistics.
type BreakerStats struct {
	Name       string       `json:"name"`
	State      CircuitState `json:"state"`
	Calls      int64        `json:"calls"`
	Succeeded  int64        `json:"succeeded"`
	Failed     int64        `json:"failed"`
	Rejected   int64        `json:"rejected"`
	LastChange time.Time    `json:"last_change"`
}

// FailureRate returns failed calls as a percentage of all calls.
func (s BreakerStats) FailureRate() float64 {
	if s.Calls == 0 {
		return 0
	}
	return float64(s.Failed) / float64(s.Calls) * 100
}
