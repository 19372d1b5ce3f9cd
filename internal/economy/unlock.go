package economy

import (
	"sort"

	"github.com/shopspring/decimal"

	"luxury-tycoon/internal/models"
)

// UnlockThreshold returns the primary balance at which item unlocks.
func (e *Engine) UnlockThreshold(item models.CatalogItem) decimal.Decimal {
	return item.PrimaryPrice.Mul(e.rules.UnlockThresholdFraction)
}

// evaluateUnlocks unlocks, in one pass, every locked item the primary
// balance now qualifies for. Unlocked items are never relocked.
func (e *Engine) evaluateUnlocks(s models.State) models.State {
	for id, item := range s.Items {
		if item.Unlocked {
			continue
		}
		if s.Wallet.Primary.GreaterThanOrEqual(e.UnlockThreshold(item)) {
			item.Unlocked = true
			s.Items[id] = item
		}
	}
	return s
}

// UnlockedIDs returns the sorted ids of all unlocked items.
func UnlockedIDs(s models.State) []string {
	ids := make([]string, 0, len(s.Items))
	for id, item := range s.Items {
		if item.Unlocked {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// ItemStatus is the position of an item in the Locked → Unlocked → Owned
// progression.
type ItemStatus string

const (
	StatusLocked   ItemStatus = "locked"
	StatusUnlocked ItemStatus = "unlocked"
	StatusOwned    ItemStatus = "owned"
)

// StatusOf returns the progression status of item.
func StatusOf(item models.CatalogItem) ItemStatus {
	switch {
	case item.Owned:
		return StatusOwned
	case item.Unlocked:
		return StatusUnlocked
	default:
		return StatusLocked
	}
}
