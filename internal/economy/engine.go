// Package economy implements the game economy as a pure transition
// function over models.State.
//
// The engine owns no state. Callers hold the current State and replace it
// with the value returned by Apply. Apply never fails: an action whose
// preconditions do not hold returns its input unchanged, and Check reports
// the reason.
package economy

import (
	"github.com/shopspring/decimal"

	"luxury-tycoon/internal/catalog"
	"luxury-tycoon/internal/errors"
	"luxury-tycoon/internal/market"
	"luxury-tycoon/internal/models"
)

// Engine applies actions to economy states.
type Engine struct {
	rules   Rules
	catalog *catalog.Catalog
	prices  *market.Generator
}

// New creates an engine for the given rules and seed catalog.
func New(rules Rules, cat *catalog.Catalog) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, errors.Wrap(errors.ErrCatalogInvalid, "nil catalog")
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		rules:   rules,
		catalog: cat,
		prices:  market.NewGenerator(rules.HistoryLength),
	}, nil
}

// NewDefault creates an engine with DefaultRules and the embedded catalog.
func NewDefault() (*Engine, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	return New(DefaultRules(), cat)
}

// Rules returns the engine's rules.
func (e *Engine) Rules() Rules {
	return e.rules
}

// Initial returns the canonical initial state.
func (e *Engine) Initial() models.State {
	return models.State{
		Instruments: e.catalog.BuildInstruments(),
		Portfolio:   map[string]models.Holding{},
		Wallet: models.Wallet{
			Primary: e.rules.StartingPrimary,
			Premium: e.rules.StartingPremium,
		},
		Items: e.catalog.BuildItems(),
		Flags: models.SessionFlags{LoginStreak: 1},
	}
}

// Apply returns the state after action a. Rejected or malformed actions
// return s unchanged.
func (e *Engine) Apply(s models.State, a Action) models.State {
	if a == nil || e.Check(s, a) != nil {
		return s
	}

	next, changed := e.transition(s, a)
	if !changed {
		return s
	}
	if changesWealth(a.Kind()) {
		next = e.evaluateUnlocks(next)
	}
	next.Version = s.Version + 1
	return next
}

// transition computes the next state for an action that passed Check.
// It reports false when the action is accepted but has nothing to change.
func (e *Engine) transition(s models.State, a Action) (models.State, bool) {
	switch act := a.(type) {
	case Buy:
		return e.buy(s, act), true
	case Sell:
		return e.sell(s, act), true
	case Tick:
		next := s.Clone()
		next.Instruments = e.prices.AdvanceAll(s.Instruments, act.Rand)
		return next, true
	case PurchaseItem:
		return e.purchaseItem(s, act), true
	case AddPrimary:
		next := s.Clone()
		next.Wallet.Primary = next.Wallet.Primary.Add(act.Amount)
		return next, true
	case AddPremium:
		next := s.Clone()
		next.Wallet.Premium = next.Wallet.Premium.Add(act.Amount)
		return next, true
	case SpendPremium:
		next := s.Clone()
		next.Wallet.Premium = next.Wallet.Premium.Sub(decimal.Min(act.Amount, next.Wallet.Premium))
		return next, true
	case ClaimDailyReward:
		return e.claimDailyReward(s), true
	case ResolveDailySpin:
		return e.resolveDailySpin(s, act), true
	case Reset:
		return e.Initial(), true
	case Unlock:
		if s.Items[act.ItemID].Unlocked {
			return s, false
		}
		next := s.Clone()
		item := next.Items[act.ItemID]
		item.Unlocked = true
		next.Items[act.ItemID] = item
		return next, true
	case CompleteTutorial:
		if s.Flags.TutorialCompleted {
			return s, false
		}
		next := s.Clone()
		next.Flags.TutorialCompleted = true
		return next, true
	}
	return s, false
}

func (e *Engine) buy(s models.State, act Buy) models.State {
	next := s.Clone()
	shares := decimal.NewFromInt(act.Shares)
	cost := act.UnitPrice.Mul(shares)

	next.Wallet.Primary = next.Wallet.Primary.Sub(cost)

	h, ok := next.Portfolio[act.InstrumentID]
	if !ok {
		h = models.Holding{InstrumentID: act.InstrumentID, AverageCost: decimal.Zero}
	}
	total := h.Shares + act.Shares
	h.AverageCost = h.CostBasis().Add(cost).Div(decimal.NewFromInt(total))
	h.Shares = total
	next.Portfolio[act.InstrumentID] = h

	return next
}

func (e *Engine) sell(s models.State, act Sell) models.State {
	next := s.Clone()
	proceeds := act.UnitPrice.Mul(decimal.NewFromInt(act.Shares))

	next.Wallet.Primary = next.Wallet.Primary.Add(proceeds)

	h := next.Portfolio[act.InstrumentID]
	h.Shares -= act.Shares
	if h.Shares == 0 {
		delete(next.Portfolio, act.InstrumentID)
	} else {
		next.Portfolio[act.InstrumentID] = h
	}

	return next
}

func (e *Engine) purchaseItem(s models.State, act PurchaseItem) models.State {
	next := s.Clone()
	item := next.Items[act.ItemID]
	price := item.Price(act.Currency)

	switch act.Currency {
	case models.CurrencyPremium:
		next.Wallet.Premium = next.Wallet.Premium.Sub(price)
	default:
		next.Wallet.Primary = next.Wallet.Primary.Sub(price)
	}

	item.Owned = true
	next.Items[act.ItemID] = item
	return next
}
