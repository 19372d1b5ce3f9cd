package economy

import (
	"github.com/shopspring/decimal"

	"luxury-tycoon/internal/errors"
	"luxury-tycoon/internal/market"
)

// DefaultUnlockThresholdFraction is the share of an item's primary price a
// player must hold before the item unlocks.
const DefaultUnlockThresholdFraction = 0.5

// Rules are the tunable constants of the economy.
type Rules struct {
	StartingPrimary         decimal.Decimal
	StartingPremium         decimal.Decimal
	DailyReward             decimal.Decimal
	UnlockThresholdFraction decimal.Decimal
	HistoryLength           int
}

// DefaultRules returns the rules used when no configuration is supplied.
func DefaultRules() Rules {
	return Rules{
		StartingPrimary:         decimal.NewFromInt(10000),
		StartingPremium:         decimal.NewFromInt(25),
		DailyReward:             decimal.NewFromInt(1000),
		UnlockThresholdFraction: decimal.NewFromFloat(DefaultUnlockThresholdFraction),
		HistoryLength:           market.DefaultHistoryLength,
	}
}

// Validate checks the rules for values that would break invariants.
func (r Rules) Validate() error {
	if r.StartingPrimary.IsNegative() {
		return errors.NewValidationError("starting_primary", r.StartingPrimary, "must be non-negative")
	}
	if r.StartingPremium.IsNegative() {
		return errors.NewValidationError("starting_premium", r.StartingPremium, "must be non-negative")
	}
	if !r.DailyReward.IsPositive() {
		return errors.NewValidationError("daily_reward", r.DailyReward, "must be positive")
	}
	if r.UnlockThresholdFraction.IsNegative() || r.UnlockThresholdFraction.GreaterThan(decimal.NewFromInt(1)) {
		return errors.NewValidationError("unlock_threshold_fraction", r.UnlockThresholdFraction, "must be between 0 and 1")
	}
	if r.HistoryLength < 2 {
		return errors.NewValidationError("history_length", r.HistoryLength, "must be at least 2")
	}
	return nil
}
