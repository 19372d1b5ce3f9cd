package session

import (
	"context"

	"github.com/shopspring/decimal"

	"luxury-tycoon/internal/economy"
	"luxury-tycoon/internal/errors"
)

// DefaultConversionRate is the primary currency credited per premium unit.
const DefaultConversionRate = 100

// ConversionRate returns the premium to primary rate.
func (s *Session) ConversionRate() decimal.Decimal {
	return s.rate
}

// ConvertPremium exchanges gems premium for primary at the session rate.
// Both legs are applied under one lock hold and published once, so no
// observer sees the debit without the credit.
func (s *Session) ConvertPremium(ctx context.Context, gems decimal.Decimal) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Result{Err: errors.ErrSessionClosed, Reason: errors.ErrSessionClosed.Error(), State: s.state.Clone()}, errors.ErrSessionClosed
	}

	spend := economy.SpendPremium{Amount: gems}
	if !gems.IsPositive() {
		err := errors.NewRejectionError("convert", gems.String(), errors.ErrInvalidAmount)
		return Result{Reason: err.Error(), Err: err, State: s.state.Clone()}, err
	}
	if s.state.Wallet.Premium.LessThan(gems) {
		reason := "need " + gems.String() + " premium, have " + s.state.Wallet.Premium.String()
		err := errors.NewRejectionError("convert", reason, errors.ErrInsufficientFunds)
		return Result{Reason: err.Error(), Err: err, State: s.state.Clone()}, err
	}

	if res := s.applyLocked(ctx, spend); !res.Accepted {
		return res, res.Err
	}
	credit := economy.AddPrimary{Amount: gems.Mul(s.rate)}
	res := s.applyLocked(ctx, credit)
	s.publishLocked(credit)
	return res, res.Err
}
