package calculator

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// exactDigits is enough fractional digits to write any float64 without loss.
const exactDigits = 1074

// FormatAmount renders amount with exactly two decimals, rounding the exact binary
// value half away from zero. Negative amounts keep their sign even when they round
// to zero ("-0.00"). Overflowed products render as "Infinity" / "-Infinity".
func FormatAmount(amount float64) string {
	switch {
	case math.IsInf(amount, 1):
		return "Infinity"
	case math.IsInf(amount, -1):
		return "-Infinity"
	case math.IsNaN(amount):
		return "NaN"
	}
	d := decimal.RequireFromString(strconv.FormatFloat(amount, 'f', exactDigits, 64))
	out := d.StringFixed(2)
	if amount < 0 && !strings.HasPrefix(out, "-") {
		out = "-" + out
	}
	return out
}

// CanonicalReading renders v as the shortest decimal string that parses back to v,
// without exponent notation ("1500", "12.5").
func CanonicalReading(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// DisplayAmount prefixes amount with the currency code, e.g. "PHP 3750.00".
func DisplayAmount(currency, amount string) string {
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return amount
	}
	return currency + " " + amount
}
