package utils

import (
	"math"
	"strconv"
	"strings"
)

// priceUnitTokens are removed from raw prices, longest first
var priceUnitTokens = []string{
	"usd/m²/năm", "usd/m2/năm", "usd/m²", "usd/m2",
	"/m²/năm", "/m2/năm", "usd", "/m²", "/m2", "/năm",
	"m²", "m2", "$",
}

// areaUnitTokens are removed from raw areas
var areaUnitTokens = []string{"hecta", "ha"}

var dashReplacer = strings.NewReplacer("–", "-", "—", "-")

// ParsePrice converts a raw rental price such as "85-95 USD/m²/năm" or "120 USD"
// into a float. A dash-separated range yields its midpoint.
// It returns nil when the text cannot be parsed.
func ParsePrice(raw string) *float64 {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, tok := range priceUnitTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.TrimSpace(dashReplacer.Replace(s))
	if s == "" {
		return nil
	}

	if lo, hi, ok := strings.Cut(s, "-"); ok {
		a, errA := parseFinite(lo)
		b, errB := parseFinite(hi)
		if errA != nil || errB != nil {
			return nil
		}
		mid := (a + b) / 2
		return &mid
	}

	v, err := parseFinite(s)
	if err != nil {
		return nil
	}
	return &v
}

// ParseArea converts a raw area such as "77.48 ha" into hectares.
// The dot is always the decimal separator: areas in this dataset are below a
// thousand hectares, so "1.250 ha" reads as 1.25, never 1250. A decimal comma
// ("77,48") is accepted as well.
// It returns nil when the text cannot be parsed.
func ParseArea(raw string) *float64 {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, tok := range areaUnitTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" || strings.Count(s, ".") > 1 {
		return nil
	}

	v, err := parseFinite(s)
	if err != nil {
		return nil
	}
	return &v
}

// ParseQueryNumber parses a number typed in a question: "," thousands
// separators are dropped and "." stays the decimal point.
func ParseQueryNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := parseFinite(s)
	return v, err == nil
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}
