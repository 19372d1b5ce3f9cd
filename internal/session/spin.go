package session

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"luxury-tycoon/internal/economy"
	"luxury-tycoon/internal/errors"
	"luxury-tycoon/internal/logging"
	"luxury-tycoon/internal/market"
	"luxury-tycoon/internal/models"
)

// Prize is one segment of the daily spin wheel.
type Prize struct {
	Currency models.Currency `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
	Weight   int             `json:"weight"`
}

// Wheel draws weighted prizes.
type Wheel struct {
	prizes []Prize
	total  int
}

// NewWheel builds a wheel. Weights must be non-negative with a positive sum.
func NewWheel(prizes []Prize) (*Wheel, error) {
	total := 0
	for i, p := range prizes {
		if !p.Currency.Valid() {
			return nil, errors.NewValidationError(fmt.Sprintf("prizes[%d].currency", i), p.Currency, "must be primary or premium")
		}
		if p.Amount.IsNegative() {
			return nil, errors.NewValidationError(fmt.Sprintf("prizes[%d].amount", i), p.Amount, "must be non-negative")
		}
		if p.Weight < 0 {
			return nil, errors.NewValidationError(fmt.Sprintf("prizes[%d].weight", i), p.Weight, "must be non-negative")
		}
		total += p.Weight
	}
	if total == 0 {
		return nil, errors.NewValidationError("prizes", len(prizes), "need a prize with positive weight")
	}
	return &Wheel{prizes: append([]Prize(nil), prizes...), total: total}, nil
}

// DefaultWheel returns the built-in wheel.
func DefaultWheel() *Wheel {
	w, err := NewWheel([]Prize{
		{Currency: models.CurrencyPrimary, Amount: decimal.NewFromInt(250), Weight: 30},
		{Currency: models.CurrencyPrimary, Amount: decimal.NewFromInt(500), Weight: 25},
		{Currency: models.CurrencyPrimary, Amount: decimal.NewFromInt(1000), Weight: 15},
		{Currency: models.CurrencyPrimary, Amount: decimal.NewFromInt(5000), Weight: 5},
		{Currency: models.CurrencyPremium, Amount: decimal.NewFromInt(5), Weight: 15},
		{Currency: models.CurrencyPremium, Amount: decimal.NewFromInt(10), Weight: 8},
		{Currency: models.CurrencyPremium, Amount: decimal.NewFromInt(50), Weight: 2},
	})
	if err != nil {
		panic(err)
	}
	return w
}

// Prizes returns a copy of the wheel segments.
func (w *Wheel) Prizes() []Prize {
	return append([]Prize(nil), w.prizes...)
}

// Draw picks a prize with probability proportional to its weight.
func (w *Wheel) Draw(rng market.RandomSource) Prize {
	target := int(rng.Float64() * float64(w.total))
	for _, p := range w.prizes {
		if target < p.Weight {
			return p
		}
		target -= p.Weight
	}
	// Float64 is below 1, so this only guards rounding at the upper edge.
	for i := len(w.prizes) - 1; i >= 0; i-- {
		if w.prizes[i].Weight > 0 {
			return w.prizes[i]
		}
	}
	return w.prizes[len(w.prizes)-1]
}

// SpinResult is the outcome of a daily spin.
type SpinResult struct {
	Prize Prize `json:"prize"`
	Result
}

// Spin draws today's prize with the session RNG and credits it. A second
// spin on the same date is rejected with ErrSpinUsed and draws nothing.
func (s *Session) Spin(ctx context.Context) (SpinResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return SpinResult{}, errors.ErrSessionClosed
	}

	today := s.Today()
	if !economy.CanSpin(s.state, today) {
		err := errors.NewRejectionError(string(economy.KindResolveDailySpin), today, errors.ErrSpinUsed)
		return SpinResult{Result: Result{Reason: err.Error(), Err: err, State: s.state.Clone()}}, err
	}

	prize := s.wheel.Draw(s.rng)
	action := economy.ResolveDailySpin{Currency: prize.Currency, Amount: prize.Amount, Date: today}

	res := s.applyLocked(ctx, action)
	if !res.Accepted {
		return SpinResult{Prize: prize, Result: res}, res.Err
	}
	s.publishLocked(action)
	logging.LogSpin(s.loggerFor(ctx), string(prize.Currency), prize.Amount.String(), today)
	return SpinResult{Prize: prize, Result: res}, nil
}
