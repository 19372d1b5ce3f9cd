// Package models provides the domain types of the game economy.
package models

import (
	"github.com/shopspring/decimal"
)

// Trend represents the direction of the last price step of an instrument.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// Currency selects one side of the wallet.
type Currency string

const (
	CurrencyPrimary Currency = "primary"
	CurrencyPremium Currency = "premium"
)

// Valid reports whether c names a wallet currency.
func (c Currency) Valid() bool {
	return c == CurrencyPrimary || c == CurrencyPremium
}

// Category groups luxury catalog items.
type Category string

const (
	CategoryCars       Category = "cars"
	CategoryWatches    Category = "watches"
	CategoryJewelry    Category = "jewelry"
	CategoryArt        Category = "art"
	CategoryRealEstate Category = "real_estate"
	CategoryYachts     Category = "yachts"
	CategoryJets       Category = "jets"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryCars,
	CategoryWatches,
	CategoryJewelry,
	CategoryArt,
	CategoryRealEstate,
	CategoryYachts,
	CategoryJets,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Instrument is a tradable synthetic stock.
type Instrument struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"display_name"`
	Ticker      string            `json:"ticker"`
	Price       decimal.Decimal   `json:"price"`
	History     []decimal.Decimal `json:"history"`
	Trend       Trend             `json:"trend"`
}

// Holding is a portfolio entry for one instrument.
type Holding struct {
	InstrumentID string          `json:"instrument_id"`
	Shares       int64           `json:"shares"`
	AverageCost  decimal.Decimal `json:"average_cost"`
}

// CostBasis returns shares × average cost.
func (h Holding) CostBasis() decimal.Decimal {
	return h.AverageCost.Mul(decimal.NewFromInt(h.Shares))
}

// Wallet holds the two independent currency balances.
type Wallet struct {
	Primary decimal.Decimal `json:"primary"`
	Premium decimal.Decimal `json:"premium"`
}

// Balance returns the balance held in currency c.
func (w Wallet) Balance(c Currency) decimal.Decimal {
	if c == CurrencyPremium {
		return w.Premium
	}
	return w.Primary
}

// CatalogItem is a purchasable luxury item.
type CatalogItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	PrimaryPrice decimal.Decimal `json:"primary_price"`
	PremiumPrice decimal.Decimal `json:"premium_price"`
	Category     Category        `json:"category"`
	Owned        bool            `json:"owned"`
	Unlocked     bool            `json:"unlocked"`
}

// Price returns the item's price in currency c.
func (i CatalogItem) Price(c Currency) decimal.Decimal {
	if c == CurrencyPremium {
		return i.PremiumPrice
	}
	return i.PrimaryPrice
}

// SessionFlags holds the per-session reward and onboarding flags.
type SessionFlags struct {
	DailyRewardClaimed bool   `json:"daily_reward_claimed"`
	DailySpinUsed      bool   `json:"daily_spin_used"`
	LastSpinDate       string `json:"last_spin_date"`
	LoginStreak        int    `json:"login_streak"`
	TutorialCompleted  bool   `json:"tutorial_completed"`
}

// State is the complete economy state. Values of State are treated as
// immutable: transitions work on a Clone and never touch their input.
type State struct {
	Version     uint64                 `json:"version"`
	Instruments []Instrument           `json:"instruments"`
	Portfolio   map[string]Holding     `json:"portfolio"`
	Wallet      Wallet                 `json:"wallet"`
	Items       map[string]CatalogItem `json:"items"`
	Flags       SessionFlags           `json:"flags"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s

	out.Instruments = make([]Instrument, len(s.Instruments))
	for i, inst := range s.Instruments {
		inst.History = append([]decimal.Decimal(nil), inst.History...)
		out.Instruments[i] = inst
	}

	out.Portfolio = make(map[string]Holding, len(s.Portfolio))
	for id, h := range s.Portfolio {
		out.Portfolio[id] = h
	}

	out.Items = make(map[string]CatalogItem, len(s.Items))
	for id, item := range s.Items {
		out.Items[id] = item
	}

	return out
}

// Instrument returns the instrument with the given id.
func (s State) Instrument(id string) (Instrument, bool) {
	for _, inst := range s.Instruments {
		if inst.ID == id {
			return inst, true
		}
	}
	return Instrument{}, false
}
