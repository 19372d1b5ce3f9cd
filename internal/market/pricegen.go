// Package market advances the synthetic price process of the instrument catalog.
package market

import (
	"math/rand"

	"github.com/shopspring/decimal"

	"luxury-tycoon/internal/models"
)

// DefaultHistoryLength is the number of prices kept per instrument.
const DefaultHistoryLength = 30

// Regime thresholds and ranges. Gains are frequent, small losses are
// common and wide swings are rare.
const (
	mildUpCutoff   = 0.80
	mildDownCutoff = 0.95

	mildUpRange   = 0.025
	mildDownRange = 0.015
	wideRange     = 0.07
	wideSkew      = 0.3

	drift = 0.001

	trendThreshold = 0.008
)

// Regime is one of the three probability-weighted change distributions.
type Regime int

const (
	RegimeMildUp Regime = iota
	RegimeMildDown
	RegimeWide
)

func (r Regime) String() string {
	switch r {
	case RegimeMildUp:
		return "mild-up"
	case RegimeMildDown:
		return "mild-down"
	case RegimeWide:
		return "wide"
	default:
		return "unknown"
	}
}

// RandomSource yields uniform values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewRand returns a seeded random source.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// PriceFloor is the lowest price an instrument can reach.
var PriceFloor = decimal.NewFromInt(1)

// Step is the outcome of advancing one instrument by one tick.
type Step struct {
	Regime         Regime
	ChangeFraction float64
	Price          decimal.Decimal
	Trend          models.Trend
}

// Draw samples the regime and change fraction for one step.
func Draw(rng RandomSource) (Regime, float64) {
	r := rng.Float64()

	var regime Regime
	var change float64
	switch {
	case r < mildUpCutoff:
		regime = RegimeMildUp
		change = rng.Float64() * mildUpRange
	case r < mildDownCutoff:
		regime = RegimeMildDown
		change = rng.Float64()*mildDownRange - mildDownRange
	default:
		regime = RegimeWide
		change = (rng.Float64() - wideSkew) * wideRange
	}

	return regime, change + drift
}

// NextPrice applies change to price, floors it at PriceFloor and rounds to cents.
func NextPrice(price decimal.Decimal, change float64) decimal.Decimal {
	next := price.Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(change)))
	if next.LessThan(PriceFloor) {
		next = PriceFloor
	}
	return next.Round(2)
}

// TrendOf classifies a change fraction.
func TrendOf(change float64) models.Trend {
	switch {
	case change > trendThreshold:
		return models.TrendUp
	case change < -trendThreshold:
		return models.TrendDown
	default:
		return models.TrendNeutral
	}
}

// Generator advances instruments with a fixed history window.
type Generator struct {
	historyLength int
}

// NewGenerator creates a generator keeping historyLength prices per
// instrument. Non-positive lengths fall back to DefaultHistoryLength.
func NewGenerator(historyLength int) *Generator {
	if historyLength <= 0 {
		historyLength = DefaultHistoryLength
	}
	return &Generator{historyLength: historyLength}
}

// HistoryLength returns the size of the history window.
func (g *Generator) HistoryLength() int {
	return g.historyLength
}

// Next computes the next step for an instrument priced at price.
func (g *Generator) Next(price decimal.Decimal, rng RandomSource) Step {
	regime, change := Draw(rng)
	return Step{
		Regime:         regime,
		ChangeFraction: change,
		Price:          NextPrice(price, change),
		Trend:          TrendOf(change),
	}
}

// Advance returns inst moved forward one tick. The input's history slice
// is never written to.
func (g *Generator) Advance(inst models.Instrument, rng RandomSource) models.Instrument {
	step := g.Next(inst.Price, rng)

	inst.Price = step.Price
	inst.Trend = step.Trend
	inst.History = g.appendBounded(inst.History, step.Price)
	return inst
}

// AdvanceAll advances every instrument in order, drawing from rng.
func (g *Generator) AdvanceAll(instruments []models.Instrument, rng RandomSource) []models.Instrument {
	out := make([]models.Instrument, len(instruments))
	for i, inst := range instruments {
		out[i] = g.Advance(inst, rng)
	}
	return out
}

func (g *Generator) appendBounded(history []decimal.Decimal, price decimal.Decimal) []decimal.Decimal {
	start := 0
	if len(history)+1 > g.historyLength {
		start = len(history) + 1 - g.historyLength
	}
	out := make([]decimal.Decimal, 0, g.historyLength)
	out = append(out, history[start:]...)
	return append(out, price)
}

// PercentChange returns the change between the last two history points in
// percent, or zero when fewer than two points exist.
func PercentChange(history []decimal.Decimal) decimal.Decimal {
	n := len(history)
	if n < 2 {
		return decimal.Zero
	}
	prev, last := history[n-2], history[n-1]
	if prev.IsZero() {
		return decimal.Zero
	}
	return last.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100))
}
