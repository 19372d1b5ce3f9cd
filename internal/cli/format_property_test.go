package cli

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func toDecimals(cents []int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(cents))
	for i, c := range cents {
		out[i] = decimal.New(c, -2)
	}
	return out
}

// For any price history, Sparkline renders exactly one block per point,
// with the lowest point at the bottom block and the highest at the top.
func TestPropertySparklineShape(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("one block per point", prop.ForAll(
		func(cents []int64) bool {
			line := Sparkline(toDecimals(cents))
			if utf8.RuneCountInString(line) != len(cents) {
				return false
			}
			for _, r := range line {
				if !strings.ContainsRune(string(sparkBlocks), r) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(1, 1_000_000)),
	))

	properties.Property("extremes map to the outer blocks", prop.ForAll(
		func(cents []int64) bool {
			lo, hi := cents[0], cents[0]
			for _, c := range cents {
				if c < lo {
					lo = c
				}
				if c > hi {
					hi = c
				}
			}
			if lo == hi {
				return true
			}
			runes := []rune(Sparkline(toDecimals(cents)))
			for i, c := range cents {
				if c == lo && runes[i] != sparkBlocks[0] {
					return false
				}
				if c == hi && runes[i] != sparkBlocks[len(sparkBlocks)-1] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(12, gen.Int64Range(1, 1_000_000)),
	))

	properties.TestingRun(t)
}

func TestSparklineFlatHistory(t *testing.T) {
	assert.Equal(t, "", Sparkline(nil))
	flat := toDecimals([]int64{5000, 5000, 5000})
	assert.Equal(t, "▁▁▁", Sparkline(flat))
	assert.Equal(t, "▁█", Sparkline(toDecimals([]int64{100, 200})))
}
