// Package money holds the numeric helpers shared by the parser, the validator
// and the totals engine: amount parsing that keeps "absent" distinct from
// zero, and decimal rounding at display precision.
package money

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPrecision is the display precision used when none is configured.
const DefaultPrecision int32 = 2

// amountNoise is stripped before a numeric parse.
var amountNoise = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "\t", "")

// currencyAffix matches a currency marker at either end of an amount.
var currencyAffix = regexp.MustCompile(`^(?:CA\$|C\$|US\$|\$|€|£|¥|USD|EUR|GBP|CAD)|(?:\$|€|£|USD|EUR|GBP|CAD)$`)

// ParseAmount parses a human-formatted amount such as "$1,234.50" or "(250)".
// Parenthesized values are negative. Empty text, a bare dash, or anything that
// does not parse yields NaN, never zero.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.ReplaceAll(s, "−", "-")
	s = amountNoise.Replace(strings.ToUpper(s))
	if strings.HasPrefix(s, "-") {
		s = "-" + currencyAffix.ReplaceAllString(s[1:], "")
	} else {
		s = currencyAffix.ReplaceAllString(s, "")
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "-" || strings.Trim(s, "-") == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return math.NaN()
	}
	if negative {
		v = -math.Abs(v)
	}
	return v
}

// IsFinite reports whether v carries a usable numeric value.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsZeroOrAbsent reports whether v is NaN or exactly zero.
func IsZeroOrAbsent(v float64) bool {
	return !IsFinite(v) || v == 0
}

var currencySymbols = []struct {
	marker string
	code   string
}{
	{"CA$", "CAD"},
	{"C$", "CAD"},
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
}

var currencyCodes = regexp.MustCompile(`\b(USD|EUR|GBP|CAD)\b`)

// DetectCurrency returns the ISO code suggested by a cell's text, or "".
func DetectCurrency(s string) string {
	for _, cs := range currencySymbols {
		if strings.Contains(s, cs.marker) {
			return cs.code
		}
	}
	if m := currencyCodes.FindString(strings.ToUpper(s)); m != "" {
		return m
	}
	return ""
}

var percentPattern = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*%`)

// ExtractRate returns the first percentage in s as a fraction (9.5% → 0.095).
func ExtractRate(s string) (float64, bool) {
	m := percentPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return decimal.NewFromFloat(v).Div(decimal.NewFromInt(100)).InexactFloat64(), true
}

// Dec converts a float to a decimal using its shortest representation.
// Non-finite values convert to zero; callers check IsFinite first when the
// distinction matters.
func Dec(v float64) decimal.Decimal {
	if !IsFinite(v) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// Round rounds v to precision decimal places, half away from zero, matching
// spreadsheet ROUND.
func Round(v float64, precision int32) decimal.Decimal {
	return Dec(v).Round(precision)
}

// Epsilon is one minor currency unit at the given precision.
func Epsilon(precision int32) decimal.Decimal {
	return decimal.New(1, -precision)
}

// WithinEpsilon reports whether |a-b| is strictly less than one minor unit.
func WithinEpsilon(a, b decimal.Decimal, precision int32) bool {
	return a.Sub(b).Abs().LessThan(Epsilon(precision))
}

// Sum adds values exactly. Non-finite values are skipped.
func Sum(values ...float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		if IsFinite(v) {
			total = total.Add(decimal.NewFromFloat(v))
		}
	}
	return total
}

// Float converts a decimal back to float64 for the wire types.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// Format renders a value with exactly precision decimal places.
func Format(d decimal.Decimal, precision int32) string {
	return d.StringFixed(precision)
}
