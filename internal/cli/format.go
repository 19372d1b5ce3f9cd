package cli

import (
	"strings"

	"github.com/shopspring/decimal"

	"luxury-tycoon/internal/economy"
	"luxury-tycoon/internal/models"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders a price history as one block character per point,
// scaled between the lowest and highest price.
func Sparkline(history []decimal.Decimal) string {
	if len(history) == 0 {
		return ""
	}

	lo, hi := history[0], history[0]
	for _, p := range history[1:] {
		lo = decimal.Min(lo, p)
		hi = decimal.Max(hi, p)
	}
	span := hi.Sub(lo)
	top := decimal.NewFromInt(int64(len(sparkBlocks) - 1))

	var b strings.Builder
	for _, p := range history {
		idx := 0
		if span.IsPositive() {
			idx = int(p.Sub(lo).Div(span).Mul(top).Round(0).IntPart())
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// trendArrow returns a one-character trend marker.
func trendArrow(t models.Trend) string {
	switch t {
	case models.TrendUp:
		return "▲"
	case models.TrendDown:
		return "▼"
	default:
		return "•"
	}
}

// trendText colors a trend marker.
func (o *Output) trendText(t models.Trend) string {
	switch t {
	case models.TrendUp:
		return o.Green(trendArrow(t))
	case models.TrendDown:
		return o.Red(trendArrow(t))
	default:
		return o.DimText(trendArrow(t))
	}
}

// statusText colors an item status.
func (o *Output) statusText(s economy.ItemStatus) string {
	switch s {
	case economy.StatusOwned:
		return o.Green(string(s))
	case economy.StatusUnlocked:
		return o.Cyan(string(s))
	default:
		return o.DimText(string(s))
	}
}
