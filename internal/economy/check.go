package economy

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"luxury-tycoon/internal/errors"
	"luxury-tycoon/internal/models"
)

// Check reports why a would be rejected in state s, or nil if Apply
// would accept it. Every non-nil error wraps a RejectionError.
func (e *Engine) Check(s models.State, a Action) error {
	if a == nil {
		return errors.NewRejectionError("nil", "", errors.ErrUnknownAction)
	}

	reason, err := e.precondition(s, a)
	if err != nil {
		return errors.NewRejectionError(string(a.Kind()), reason, err)
	}
	return nil
}

func (e *Engine) precondition(s models.State, a Action) (string, error) {
	switch act := a.(type) {
	case Buy:
		if act.Shares <= 0 {
			return fmt.Sprintf("share count %d", act.Shares), errors.ErrInvalidAmount
		}
		if !act.UnitPrice.IsPositive() {
			return "unit price " + act.UnitPrice.String(), errors.ErrInvalidAmount
		}
		if _, ok := s.Instrument(act.InstrumentID); !ok {
			return act.InstrumentID, errors.ErrInstrumentNotFound
		}
		if held := s.Portfolio[act.InstrumentID].Shares; act.Shares > math.MaxInt64-held {
			return fmt.Sprintf("hold %d, buying %d overflows", held, act.Shares), errors.ErrInvalidAmount
		}
		cost := act.UnitPrice.Mul(decimal.NewFromInt(act.Shares))
		if s.Wallet.Primary.LessThan(cost) {
			return fmt.Sprintf("need %s, have %s", cost.StringFixed(2), s.Wallet.Primary.StringFixed(2)), errors.ErrInsufficientFunds
		}

	case Sell:
		if act.Shares <= 0 {
			return fmt.Sprintf("share count %d", act.Shares), errors.ErrInvalidAmount
		}
		if !act.UnitPrice.IsPositive() {
			return "unit price " + act.UnitPrice.String(), errors.ErrInvalidAmount
		}
		h, ok := s.Portfolio[act.InstrumentID]
		if !ok {
			return "no holding in " + act.InstrumentID, errors.ErrInsufficientShares
		}
		if h.Shares < act.Shares {
			return fmt.Sprintf("hold %d, selling %d", h.Shares, act.Shares), errors.ErrInsufficientShares
		}

	case Tick:
		if act.Rand == nil {
			return "", errors.ErrMissingRandomSource
		}

	case PurchaseItem:
		if !act.Currency.Valid() {
			return string(act.Currency), errors.ErrInvalidCurrency
		}
		item, ok := s.Items[act.ItemID]
		if !ok {
			return act.ItemID, errors.ErrItemNotFound
		}
		if item.Owned {
			return act.ItemID, errors.ErrItemOwned
		}
		if !item.Unlocked {
			return act.ItemID, errors.ErrItemLocked
		}
		price := item.Price(act.Currency)
		if s.Wallet.Balance(act.Currency).LessThan(price) {
			return fmt.Sprintf("need %s %s", price.String(), act.Currency), errors.ErrInsufficientFunds
		}

	case AddPrimary:
		if !act.Amount.IsPositive() {
			return act.Amount.String(), errors.ErrInvalidAmount
		}

	case AddPremium:
		if !act.Amount.IsPositive() {
			return act.Amount.String(), errors.ErrInvalidAmount
		}

	case SpendPremium:
		if !act.Amount.IsPositive() {
			return act.Amount.String(), errors.ErrInvalidAmount
		}

	case ClaimDailyReward:
		if s.Flags.DailyRewardClaimed {
			return "", errors.ErrRewardClaimed
		}

	case ResolveDailySpin:
		// Whether the player may spin today is the caller's decision.
		if !act.Currency.Valid() {
			return string(act.Currency), errors.ErrInvalidCurrency
		}
		if act.Amount.IsNegative() {
			return act.Amount.String(), errors.ErrInvalidAmount
		}

	case Unlock:
		if _, ok := s.Items[act.ItemID]; !ok {
			return act.ItemID, errors.ErrItemNotFound
		}

	case Reset, CompleteTutorial:

	default:
		return fmt.Sprintf("%T", a), errors.ErrUnknownAction
	}

	return "", nil
}
