package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyXOF is the currency every budget amount is expressed in.
const CurrencyXOF = "F CFA"

// FormatWithPrecision formats an amount with French digit grouping, rounded to precision.
// Example: 1234567.891 with precision 2 returns "1 234 567,89"
// Example: -1500 with precision 0 returns "-1 500"
func FormatWithPrecision(amount decimal.Decimal, precision int32) string {
	s := amount.StringFixed(precision)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}

// FormatXOF formats an amount in CFA francs, which have no minor unit.
// Example: 1421.5 returns "1 422 F CFA"
func FormatXOF(amount decimal.Decimal) string {
	return FormatWithPrecision(amount, 0) + " " + CurrencyXOF
}
