package economy

import (
	"luxury-tycoon/internal/models"
)

func (e *Engine) claimDailyReward(s models.State) models.State {
	next := s.Clone()
	next.Wallet.Primary = next.Wallet.Primary.Add(e.rules.DailyReward)
	next.Flags.DailyRewardClaimed = true
	next.Flags.LoginStreak++
	return next
}

func (e *Engine) resolveDailySpin(s models.State, act ResolveDailySpin) models.State {
	next := s.Clone()
	switch act.Currency {
	case models.CurrencyPremium:
		next.Wallet.Premium = next.Wallet.Premium.Add(act.Amount)
	default:
		next.Wallet.Primary = next.Wallet.Primary.Add(act.Amount)
	}
	next.Flags.DailySpinUsed = true
	next.Flags.LastSpinDate = act.Date
	return next
}

// CanSpin reports whether the daily spin is still available on date today
// (formatted YYYY-MM-DD).
func CanSpin(s models.State, today string) bool {
	return !s.Flags.DailySpinUsed || s.Flags.LastSpinDate != today
}
