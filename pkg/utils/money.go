// Package utils provides display formatting shared by the CLI and reports.
package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var symbols = map[string]string{
	"PEN": "S/",
	"USD": "$",
	"EUR": "€",
}

// CurrencySymbol returns the display symbol for an ISO currency code,
// or the code itself when unknown.
func CurrencySymbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if s, ok := symbols[code]; ok {
		return s
	}
	return code
}

// FormatMoney formats an amount with thousands grouping and two decimals,
// rounded half away from zero. e.g., (1234567.891, "PEN") → "S/ 1,234,567.89"
func FormatMoney(amount float64, code string) string {
	d := decimal.NewFromFloat(amount).Round(2)
	negative := d.IsNegative()
	s := d.Abs().StringFixed(2)

	intPart, frac, _ := strings.Cut(s, ".")
	out := groupThousands(intPart) + "." + frac
	if negative {
		out = "-" + out
	}
	if sym := CurrencySymbol(code); sym != "" {
		return sym + " " + out
	}
	return out
}

// FormatPct formats a rate already expressed in percent.
// e.g., 6.5 → "6.50%"
func FormatPct(pct float64) string {
	return fmt.Sprintf("%s%%", decimal.NewFromFloat(pct).StringFixed(2))
}

// FormatCompact abbreviates large amounts. e.g., 2500000 → "2.5M"
func FormatCompact(amount float64) string {
	d := decimal.NewFromFloat(amount)
	abs := d.Abs()
	switch {
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1e9)):
		return trimZeros(d.Div(decimal.NewFromInt(1e9)).StringFixed(2)) + "B"
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1e6)):
		return trimZeros(d.Div(decimal.NewFromInt(1e6)).StringFixed(2)) + "M"
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1e3)):
		return trimZeros(d.Div(decimal.NewFromInt(1e3)).StringFixed(2)) + "K"
	default:
		return trimZeros(d.StringFixed(2))
	}
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// trimZeros drops trailing fractional zeros.
func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
