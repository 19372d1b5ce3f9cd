// Package session hosts one running game: the single mutable state cell
// around the pure economy engine.
//
// Every mutation goes through Dispatch, which holds the session lock for
// the whole validate/apply/swap step. Accepted transitions are published
// on the stream hub and appended to the journal in dispatch order.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"luxury-tycoon/internal/economy"
	"luxury-tycoon/internal/errors"
	"luxury-tycoon/internal/logging"
	"luxury-tycoon/internal/market"
	"luxury-tycoon/internal/models"
	"luxury-tycoon/internal/resilience"
	"luxury-tycoon/internal/store"
	"luxury-tycoon/internal/stream"
	"luxury-tycoon/pkg/utils"
)

// dateLayout is the format of SessionFlags.LastSpinDate.
const dateLayout = "2006-01-02"

// Options configures a Session. Engine is required.
type Options struct {
	Engine *economy.Engine
	// Seed seeds the session RNG when Rand is nil. Zero uses the clock.
	Seed int64
	Rand market.RandomSource

	Hub     *stream.Hub
	Journal store.Journal
	Logger  zerolog.Logger
	Clock   func() time.Time

	Wheel          *Wheel
	ConversionRate decimal.Decimal
	Retry          utils.RetryConfig
	Breaker        resilience.BreakerConfig
	QueueSize      int
}

// Result is the outcome of a dispatched action.
type Result struct {
	Accepted bool         `json:"accepted"`
	Reason   string       `json:"reason,omitempty"`
	Err      error        `json:"-"`
	State    models.State `json:"state"`
}

// Session owns the current state of one game.
type Session struct {
	mu     sync.Mutex
	id     string
	seed   int64
	engine *economy.Engine
	state  models.State
	rng    market.RandomSource
	closed bool

	hub      *stream.Hub
	recorder *recorder
	logger   zerolog.Logger
	clock    func() time.Time

	wheel *Wheel
	rate  decimal.Decimal
}

// New starts a session at the engine's initial state.
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.Engine == nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "session requires an engine")
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Seed == 0 {
		opts.Seed = opts.Clock().UnixNano()
	}
	if opts.Rand == nil {
		opts.Rand = market.NewRand(opts.Seed)
	}
	if opts.Wheel == nil {
		opts.Wheel = DefaultWheel()
	}
	if !opts.ConversionRate.IsPositive() {
		opts.ConversionRate = decimal.NewFromInt(DefaultConversionRate)
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = utils.DefaultRetryConfig()
	}

	id := uuid.NewString()
	logger := logging.WithSession(opts.Logger, id)

	s := &Session{
		id:     id,
		seed:   opts.Seed,
		engine: opts.Engine,
		state:  opts.Engine.Initial(),
		rng:    opts.Rand,
		hub:    opts.Hub,
		logger: logger,
		clock:  opts.Clock,
		wheel:  opts.Wheel,
		rate:   opts.ConversionRate,
	}

	if opts.Journal != nil {
		breaker := resilience.NewBreaker("journal", opts.Breaker, opts.Clock)
		s.recorder = newRecorder(opts.Journal, opts.Retry, breaker, opts.QueueSize, logger)
		rec := store.SessionRecord{ID: id, Seed: opts.Seed, StartedAt: opts.Clock()}
		if err := opts.Journal.StartSession(ctx, rec); err != nil {
			logger.Warn().Err(err).Msg("Failed to journal session start")
		}
	}

	logger.Info().Int64("seed", opts.Seed).Msg("Session started")
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Seed returns the seed of the session RNG.
func (s *Session) Seed() int64 {
	return s.seed
}

// Engine returns the session's engine.
func (s *Session) Engine() *economy.Engine {
	return s.engine
}

// State returns a copy of the current state.
func (s *Session) State() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Snapshot returns the current state with its valuation.
func (s *Session) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(models.TopicAll, "")
}

func (s *Session) snapshotLocked(topic models.Topic, action string) models.Snapshot {
	state := s.state.Clone()
	portfolio, netWorth := economy.Valuation(state)
	return models.Snapshot{
		SessionID:      s.id,
		Topic:          topic,
		Action:         action,
		State:          state,
		PortfolioValue: portfolio,
		NetWorth:       netWorth,
		Timestamp:      s.clock(),
	}
}

// Dispatch applies a to the current state. A Tick without a random source
// is given the session RNG, and a Buy or Sell without a unit price trades
// at the instrument's current price.
func (s *Session) Dispatch(ctx context.Context, a economy.Action) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Result{Err: errors.ErrSessionClosed, Reason: errors.ErrSessionClosed.Error(), State: s.state.Clone()}
	}
	a = s.fillLocked(a)

	res := s.applyLocked(ctx, a)
	if res.Accepted {
		s.publishLocked(a)
	}
	return res
}

func (s *Session) fillLocked(a economy.Action) economy.Action {
	switch act := a.(type) {
	case economy.Tick:
		if act.Rand == nil {
			act.Rand = s.rng
		}
		return act
	case economy.Buy:
		if act.UnitPrice.IsZero() {
			act.UnitPrice = s.marketPriceLocked(act.InstrumentID)
		}
		return act
	case economy.Sell:
		if act.UnitPrice.IsZero() {
			act.UnitPrice = s.marketPriceLocked(act.InstrumentID)
		}
		return act
	}
	return a
}

func (s *Session) marketPriceLocked(id string) decimal.Decimal {
	if inst, ok := s.state.Instrument(id); ok {
		return inst.Price
	}
	return decimal.Zero
}

// applyLocked runs one action through the engine, swaps the cell and
// journals the outcome. The caller publishes.
func (s *Session) applyLocked(ctx context.Context, a economy.Action) Result {
	log := s.loggerFor(ctx)
	kind := "nil"
	if a != nil {
		kind = string(a.Kind())
	}

	if err := s.engine.Check(s.state, a); err != nil {
		logging.LogRejection(log, kind, err)
		s.journalLocked(a, kind, false, err.Error())
		return Result{Reason: err.Error(), Err: err, State: s.state.Clone()}
	}

	prev := s.state.Version
	s.state = s.engine.Apply(s.state, a)

	if kind == string(economy.KindTick) {
		logging.LogTick(log, s.state.Version, len(s.state.Instruments))
	} else {
		logging.LogAction(log, kind, s.state.Version,
			s.state.Wallet.Primary.StringFixed(2), s.state.Wallet.Premium.String())
	}
	s.journalLocked(a, kind, true, "")
	if s.state.Version != prev {
		s.recordNetWorthLocked()
	}

	return Result{Accepted: true, State: s.state.Clone()}
}

// loggerFor prefers the request-scoped logger carried by ctx.
func (s *Session) loggerFor(ctx context.Context) zerolog.Logger {
	if l, ok := logging.FromContext(ctx); ok {
		return logging.WithSession(l, s.id)
	}
	return s.logger
}

func (s *Session) publishLocked(a economy.Action) {
	if s.hub == nil {
		return
	}
	topic := models.TopicWallet
	if a.Kind() == economy.KindTick {
		topic = models.TopicPrices
	}
	s.hub.Publish(s.snapshotLocked(topic, string(a.Kind())))
}

func (s *Session) journalLocked(a economy.Action, kind string, accepted bool, reason string) {
	if s.recorder == nil {
		return
	}
	payload := "{}"
	if a != nil {
		if data, err := json.Marshal(a); err == nil {
			payload = string(data)
		}
	}
	s.recorder.enqueue(store.ActionRecord{
		ID:        uuid.NewString(),
		SessionID: s.id,
		Kind:      kind,
		Payload:   payload,
		Accepted:  accepted,
		Reason:    reason,
		Version:   s.state.Version,
		Primary:   s.state.Wallet.Primary,
		Premium:   s.state.Wallet.Premium,
		CreatedAt: s.clock(),
	})
}

func (s *Session) recordNetWorthLocked() {
	if s.recorder == nil {
		return
	}
	portfolio, netWorth := economy.Valuation(s.state)
	s.recorder.enqueue(store.NetWorthRecord{
		SessionID: s.id,
		Version:   s.state.Version,
		Primary:   s.state.Wallet.Primary,
		Premium:   s.state.Wallet.Premium,
		Portfolio: portfolio,
		NetWorth:  netWorth,
		CreatedAt: s.clock(),
	})
}

// JournalStats returns the journal circuit breaker counters. ok is false
// when the session has no journal.
func (s *Session) JournalStats() (stats resilience.BreakerStats, ok bool) {
	if s.recorder == nil {
		return resilience.BreakerStats{}, false
	}
	return s.recorder.breaker.Stats(), true
}

// Today returns the session clock's date as YYYY-MM-DD.
func (s *Session) Today() string {
	return s.clock().Format(dateLayout)
}

// Close stops accepting actions and flushes pending journal writes. It
// does not close the journal itself.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	rec := s.recorder
	s.mu.Unlock()

	s.logger.Info().Msg("Session closed")
	if rec != nil {
		return rec.close(ctx)
	}
	return nil
}
