package earnings

import (
	"math"
	"strconv"

	"github.com/aristath/earnings/internal/domain"
	"github.com/aristath/earnings/pkg/numeric"
)

// DisplayLimit bounds surprise percentages shown to users.
const DisplayLimit = 300.0

// SurpriseDisplay is a surprise prepared for rendering. Value is clamped to
// ±DisplayLimit; Raw keeps the unclamped figure for tooltips.
type SurpriseDisplay struct {
	Raw     *float64     `json:"raw"`
	Value   *float64     `json:"value"`
	Basis   domain.Basis `json:"basis"`
	Extreme bool         `json:"extreme"`
	Label   string       `json:"label"`
}

// ClampForDisplay limits v to [-DisplayLimit, DisplayLimit].
func ClampForDisplay(v float64) float64 {
	return math.Max(-DisplayLimit, math.Min(DisplayLimit, v))
}

// NewSurpriseDisplay clamps r for display. The extreme flag and raw value
// are carried over untouched.
func NewSurpriseDisplay(r domain.SurpriseResult) SurpriseDisplay {
	d := SurpriseDisplay{
		Raw:     r.Value,
		Basis:   r.Basis,
		Extreme: r.Extreme,
	}
	if r.Value != nil {
		clamped := ClampForDisplay(*r.Value)
		d.Value = &clamped
	}
	d.Label = FormatPercent(d.Value)
	return d
}

// FormatPercent renders a signed percentage with two decimals. Missing data
// renders as numeric.Missing, never as "0%".
func FormatPercent(v *float64) string {
	if v == nil || !isFinite(*v) {
		return numeric.Missing
	}
	s := strconv.FormatFloat(*v, 'f', 2, 64)
	if *v > 0 {
		s = "+" + s
	}
	return s + "%"
}
