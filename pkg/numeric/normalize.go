// Package numeric converts the heterogeneous numeric representations found in
// upstream earnings payloads into one canonical float64 unit.
//
// Every function here is pure and never panics or returns an error: inputs that
// cannot be represented safely come back as nil, which callers render as
// "no data".
package numeric

import (
	"encoding/json"
	"math"
	"math/big"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// MaxSafeInteger is the largest integer magnitude a float64 holds without
// precision loss (2^53 - 1).
const MaxSafeInteger = 1<<53 - 1

var (
	maxSafeBig     = big.NewInt(MaxSafeInteger)
	maxSafeDecimal = decimal.NewFromInt(MaxSafeInteger)
)

// suffixMultipliers maps the trailing unit letter of a suffixed string to its scale.
var suffixMultipliers = map[byte]decimal.Decimal{
	'K': decimal.NewFromInt(1_000),
	'M': decimal.NewFromInt(1_000_000),
	'B': decimal.NewFromInt(1_000_000_000),
}

// NormalizeToBaseUnits converts value to a finite float64 in base units.
//
// Accepted inputs: nil, Go integer and float kinds, *float64, *big.Int, big.Int,
// decimal.Decimal, json.Number and strings. Strings may carry a single trailing
// K, M or B suffix ("123.4M" = 123400000), thousands separators and a leading
// currency sign.
//
// Returns nil when the input is unparsable, non-finite, or larger in magnitude
// than MaxSafeInteger. The overflow case is logged at warn level.
func NormalizeToBaseUnits(value interface{}) *float64 {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return fromFloat(v)
	case float32:
		return fromFloat(float64(v))
	case *float64:
		if v == nil {
			return nil
		}
		return fromFloat(*v)
	case int:
		return fromBigInt(big.NewInt(int64(v)))
	case int32:
		return fromBigInt(big.NewInt(int64(v)))
	case int64:
		return fromBigInt(big.NewInt(v))
	case *int64:
		if v == nil {
			return nil
		}
		return fromBigInt(big.NewInt(*v))
	case uint:
		return fromBigInt(new(big.Int).SetUint64(uint64(v)))
	case uint32:
		return fromBigInt(new(big.Int).SetUint64(uint64(v)))
	case uint64:
		return fromBigInt(new(big.Int).SetUint64(v))
	case *big.Int:
		if v == nil {
			return nil
		}
		return fromBigInt(v)
	case big.Int:
		return fromBigInt(&v)
	case decimal.Decimal:
		return fromDecimal(v)
	case json.Number:
		return fromString(string(v))
	case string:
		return fromString(v)
	default:
		return nil
	}
}

func fromFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	if math.Abs(v) > MaxSafeInteger {
		warnOverflow(decimal.NewFromFloat(v).String())
		return nil
	}
	return &v
}

func fromBigInt(v *big.Int) *float64 {
	if new(big.Int).Abs(v).Cmp(maxSafeBig) > 0 {
		warnOverflow(v.String())
		return nil
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return &f
}

func fromDecimal(d decimal.Decimal) *float64 {
	if d.Abs().GreaterThan(maxSafeDecimal) {
		warnOverflow(d.String())
		return nil
	}
	f, _ := d.Float64()
	return fromFloat(f)
}

func fromString(s string) *float64 {
	d, ok := parseDecimal(s)
	if !ok {
		return nil
	}
	return fromDecimal(d)
}

// parseDecimal parses a possibly suffixed numeric string exactly.
func parseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, false
	}

	multiplier := decimal.NewFromInt(1)
	last := s[len(s)-1]
	if last >= 'a' && last <= 'z' {
		last -= 'a' - 'A'
	}
	if m, ok := suffixMultipliers[last]; ok {
		multiplier = m
		s = strings.TrimSpace(s[:len(s)-1])
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d.Mul(multiplier), true
}

func warnOverflow(raw string) {
	log.Warn().
		Str("value", raw).
		Int64("max_safe_integer", MaxSafeInteger).
		Msg("Magnitude overflow, value dropped")
}

// MagnitudeCorrection repairs revenue figures that some upstream feeds report
// in micro-units (off by a factor of one million). It is a display-layer data
// repair, kept separate from the percentage math so it can be tuned or
// switched off on its own.
type MagnitudeCorrection struct {
	Enabled   bool
	Threshold float64 // magnitudes at or above this are treated as micro-units
	Divisor   float64
}

// DefaultMagnitudeCorrection divides magnitudes >= 1e13 by 1e6.
var DefaultMagnitudeCorrection = MagnitudeCorrection{
	Enabled:   true,
	Threshold: 1e13,
	Divisor:   1e6,
}

// Apply returns v corrected for the micro-unit defect, or v unchanged.
func (c MagnitudeCorrection) Apply(v float64) float64 {
	if !c.Enabled || c.Divisor == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	if math.Abs(v) >= c.Threshold {
		return v / c.Divisor
	}
	return v
}

// NormalizeLargeMagnitude applies DefaultMagnitudeCorrection.
func NormalizeLargeMagnitude(v float64) float64 {
	return DefaultMagnitudeCorrection.Apply(v)
}
