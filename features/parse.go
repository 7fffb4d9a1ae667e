package features

import (
	"math"
	"strconv"
	"strings"
)

func clean(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
}

// ParseInt reads a base-10 integer, ignoring thousands separators and
// surrounding whitespace. Anything unparseable yields def.
func ParseInt(raw string, def int) int {
	n, err := strconv.Atoi(clean(raw))
	if err != nil {
		return def
	}
	return n
}

// ParseFloat is ParseInt for decimals. NaN and infinities yield def.
func ParseFloat(raw string, def float64) float64 {
	f, err := strconv.ParseFloat(clean(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// AnnualIncome converts monthly applicant and co-applicant income to a yearly figure.
func AnnualIncome(monthly, coapp float64) float64 {
	return (monthly + coapp) * 12.0
}
