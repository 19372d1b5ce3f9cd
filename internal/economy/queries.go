package economy

import (
	"github.com/shopspring/decimal"

	"luxury-tycoon/internal/market"
	"luxury-tycoon/internal/models"
)

// PortfolioValue returns Σ shares × current price over all holdings.
func PortfolioValue(s models.State) decimal.Decimal {
	total := decimal.Zero
	for id, h := range s.Portfolio {
		inst, ok := s.Instrument(id)
		if !ok {
			continue
		}
		total = total.Add(inst.Price.Mul(decimal.NewFromInt(h.Shares)))
	}
	return total
}

// CollectionValue returns the primary price of every owned item.
func CollectionValue(s models.State) decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		if item.Owned {
			total = total.Add(item.PrimaryPrice)
		}
	}
	return total
}

// NetWorth returns primary balance + portfolio value + collection value.
func NetWorth(s models.State) decimal.Decimal {
	return s.Wallet.Primary.Add(PortfolioValue(s)).Add(CollectionValue(s))
}

// PercentChange returns the last price move of an instrument in percent.
func PercentChange(inst models.Instrument) decimal.Decimal {
	return market.PercentChange(inst.History)
}

// HoldingPnL returns the unrealised gain of a holding at the current price.
func HoldingPnL(s models.State, instrumentID string) decimal.Decimal {
	h, ok := s.Portfolio[instrumentID]
	if !ok {
		return decimal.Zero
	}
	inst, ok := s.Instrument(instrumentID)
	if !ok {
		return decimal.Zero
	}
	return inst.Price.Sub(h.AverageCost).Mul(decimal.NewFromInt(h.Shares))
}

// Valuation returns the portfolio value and net worth of s in one pass over
// the holdings.
func Valuation(s models.State) (portfolio, netWorth decimal.Decimal) {
	portfolio = PortfolioValue(s)
	netWorth = s.Wallet.Primary.Add(portfolio).Add(CollectionValue(s))
	return portfolio, netWorth
}

// MaxAffordableShares returns how many shares of an instrument the primary
// balance can buy at its current price.
func MaxAffordableShares(s models.State, instrumentID string) int64 {
	inst, ok := s.Instrument(instrumentID)
	if !ok || !inst.Price.IsPositive() {
		return 0
	}
	return s.Wallet.Primary.Div(inst.Price).Floor().IntPart()
}
