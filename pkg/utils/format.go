// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency formats an amount of primary currency as $1,234,567.89.
func FormatCurrency(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	if negative {
		amount = amount.Neg()
	}

	str := amount.StringFixed(2)
	parts := strings.Split(str, ".")
	result := "$" + groupThousands(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// FormatGems formats a premium currency balance.
func FormatGems(amount decimal.Decimal) string {
	if amount.Equal(amount.Truncate(0)) {
		return groupThousands(amount.Truncate(0).String()) + " gems"
	}
	return amount.StringFixed(2) + " gems"
}

// groupThousands inserts commas every three digits of an unsigned integer string.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value decimal.Decimal) string {
	sign := ""
	if value.IsPositive() {
		sign = "+"
	}
	return sign + value.StringFixed(2) + "%"
}

// FormatPnL formats a gain or loss with an explicit sign.
func FormatPnL(pnl decimal.Decimal) string {
	formatted := FormatCurrency(pnl)
	if pnl.IsPositive() {
		return "+" + formatted
	}
	return formatted
}

// FormatQuantity formats a share count with commas.
func FormatQuantity(qty int64) string {
	if qty < 0 {
		return "-" + groupThousands(fmt.Sprintf("%d", -qty))
	}
	return groupThousands(fmt.Sprintf("%d", qty))
}

// FormatCompact formats large amounts as $1.25M or $3.40B.
func FormatCompact(amount decimal.Decimal) string {
	abs := amount.Abs()
	switch {
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1_000_000_000)):
		return "$" + amount.Div(decimal.NewFromInt(1_000_000_000)).StringFixed(2) + "B"
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1_000_000)):
		return "$" + amount.Div(decimal.NewFromInt(1_000_000)).StringFixed(2) + "M"
	case abs.GreaterThanOrEqual(decimal.NewFromInt(100_000)):
		return "$" + amount.Div(decimal.NewFromInt(1_000)).StringFixed(1) + "K"
	}
	return FormatCurrency(amount)
}
