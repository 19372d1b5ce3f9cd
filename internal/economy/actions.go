package economy

import (
	"github.com/shopspring/decimal"

	"luxury-tycoon/internal/market"
	"luxury-tycoon/internal/models"
)

// ActionKind enumerates the actions the engine understands.
type ActionKind string

const (
	KindBuy              ActionKind = "buy"
	KindSell             ActionKind = "sell"
	KindTick             ActionKind = "tick"
	KindPurchaseItem     ActionKind = "purchase_item"
	KindAddPrimary       ActionKind = "add_primary"
	KindAddPremium       ActionKind = "add_premium"
	KindSpendPremium     ActionKind = "spend_premium"
	KindClaimDailyReward ActionKind = "claim_daily_reward"
	KindResolveDailySpin ActionKind = "resolve_daily_spin"
	KindReset            ActionKind = "reset"
	KindUnlock           ActionKind = "unlock"
	KindCompleteTutorial ActionKind = "complete_tutorial"
)

// Action is a discrete input to the engine.
type Action interface {
	Kind() ActionKind
}

// Buy purchases Shares of an instrument at UnitPrice each.
type Buy struct {
	InstrumentID string          `json:"instrument_id"`
	Shares       int64           `json:"shares"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// Sell sells Shares of a held instrument at UnitPrice each.
type Sell struct {
	InstrumentID string          `json:"instrument_id"`
	Shares       int64           `json:"shares"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// Tick advances every instrument one price step using Rand.
type Tick struct {
	Rand market.RandomSource `json:"-"`
}

// PurchaseItem buys a catalog item with the chosen currency.
type PurchaseItem struct {
	ItemID   string          `json:"item_id"`
	Currency models.Currency `json:"currency"`
}

// AddPrimary credits primary currency.
type AddPrimary struct {
	Amount decimal.Decimal `json:"amount"`
}

// AddPremium credits premium currency.
type AddPremium struct {
	Amount decimal.Decimal `json:"amount"`
}

// SpendPremium debits premium currency, clamped at zero.
type SpendPremium struct {
	Amount decimal.Decimal `json:"amount"`
}

// ClaimDailyReward credits the daily primary reward once.
type ClaimDailyReward struct{}

// ResolveDailySpin records an already-drawn spin prize.
type ResolveDailySpin struct {
	Currency models.Currency `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
	Date     string          `json:"date"`
}

// Reset restores the canonical initial state.
type Reset struct{}

// Unlock marks a catalog item as purchasable.
type Unlock struct {
	ItemID string `json:"item_id"`
}

// CompleteTutorial marks onboarding as done.
type CompleteTutorial struct{}

func (Buy) Kind() ActionKind              { return KindBuy }
func (Sell) Kind() ActionKind             { return KindSell }
func (Tick) Kind() ActionKind             { return KindTick }
func (PurchaseItem) Kind() ActionKind     { return KindPurchaseItem }
func (AddPrimary) Kind() ActionKind       { return KindAddPrimary }
func (AddPremium) Kind() ActionKind       { return KindAddPremium }
func (SpendPremium) Kind() ActionKind     { return KindSpendPremium }
func (ClaimDailyReward) Kind() ActionKind { return KindClaimDailyReward }
func (ResolveDailySpin) Kind() ActionKind { return KindResolveDailySpin }
func (Reset) Kind() ActionKind            { return KindReset }
func (Unlock) Kind() ActionKind           { return KindUnlock }
func (CompleteTutorial) Kind() ActionKind { return KindCompleteTutorial }

// changesWealth reports whether an accepted action of kind k triggers
// unlock evaluation.
func changesWealth(k ActionKind) bool {
	switch k {
	case KindBuy, KindSell, KindPurchaseItem, KindAddPrimary,
		KindSpendPremium, KindClaimDailyReward, KindResolveDailySpin:
		return true
	}
	return false
}
