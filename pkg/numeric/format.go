package numeric

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Missing is rendered wherever a figure is unavailable.
const Missing = "—"

var compactUnits = []struct {
	scale  float64
	suffix string
}{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// FormatCompact renders v with a K/M/B/T suffix ("1.23B").
func FormatCompact(v *float64, decimals int) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return Missing
	}

	abs := math.Abs(*v)
	for _, u := range compactUnits {
		if abs >= u.scale {
			return strconv.FormatFloat(*v/u.scale, 'f', decimals, 64) + u.suffix
		}
	}
	return strconv.FormatFloat(*v, 'f', decimals, 64)
}

// FormatRevenue applies the micro-unit correction before compact formatting.
func FormatRevenue(v *float64, correction MagnitudeCorrection) string {
	if v == nil {
		return Missing
	}
	corrected := correction.Apply(*v)
	return FormatCompact(&corrected, 2)
}

// FormatNumber renders v with thousands separators and at most decimals
// fractional digits ("1,234,567.89").
func FormatNumber(v *float64, decimals int) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return Missing
	}
	return humanize.CommafWithDigits(*v, decimals)
}

// ParseFloatPtr parses a loosely formatted upstream number. Placeholders such
// as "", "None", "null", "-" and "N/A" yield nil; "%", "$" and "," are
// stripped before parsing.
func ParseFloatPtr(s string) *float64 {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none", "null", "-", "n/a", "nan":
		return nil
	}

	s = strings.TrimSuffix(s, "%")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Float returns a pointer to v. Convenience for building nullable figures.
func Float(v float64) *float64 {
	return &v
}
