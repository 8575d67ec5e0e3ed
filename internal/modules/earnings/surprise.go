package earnings

import (
	"math"
	"math/big"

	"github.com/aristath/earnings/internal/domain"
	"github.com/aristath/earnings/pkg/numeric"
)

const (
	// ExtremeThreshold is the surprise magnitude (percent) above which a
	// result is more likely a data or unit error than a real surprise.
	ExtremeThreshold = 300.0

	// minDenominator guards percentage math against near-zero baselines.
	minDenominator = 1e-6
)

// SurpriseInput carries every candidate baseline for one guidance figure.
// Nil pointers and zero tags mean "not supplied".
type SurpriseInput struct {
	Guide          *float64
	Estimate       *float64
	ConsensusPct   *float64
	PrevMin        *float64
	PrevMax        *float64
	GuideFiscal    *domain.FiscalTag
	EstimateFiscal *domain.FiscalTag
	GuideMethod    domain.AccountingMethod
	EstimateMethod domain.AccountingMethod
}

// PercentDiff returns ((a - b) / |b|) * 100, or nil when either input is
// non-finite or b is too close to zero to divide by.
func PercentDiff(a, b float64) *float64 {
	if !isFinite(a) || !isFinite(b) || math.Abs(b) < minDenominator {
		return nil
	}
	v := (a - b) / math.Abs(b) * 100
	if !isFinite(v) {
		return nil
	}
	return &v
}

// FiscalTagsMatch reports whether both tags are fully defined and equal.
func FiscalTagsMatch(a, b *domain.FiscalTag) bool {
	if a == nil || b == nil || !a.Defined() || !b.Defined() {
		return false
	}
	return a.Period == b.Period && a.Year == b.Year
}

// MethodsCompatible reports whether figures on methods a and b can be
// compared. Unknown methods are compatible with anything.
func MethodsCompatible(a, b domain.AccountingMethod) bool {
	ga, gb := a.Group(), b.Group()
	if ga == domain.GroupUnknown || gb == domain.GroupUnknown {
		return true
	}
	return ga == gb
}

// ComputeSurprise picks the first usable baseline in priority order:
// vendor consensus percentage, then the estimate (same fiscal period and a
// compatible accounting method), then the midpoint of the previous guidance
// range. A baseline whose percentage cannot be computed is skipped.
func ComputeSurprise(in SurpriseInput) domain.SurpriseResult {
	if in.ConsensusPct != nil && isFinite(*in.ConsensusPct) {
		return newResult(*in.ConsensusPct, domain.BasisConsensus)
	}

	if in.Guide != nil && in.Estimate != nil &&
		FiscalTagsMatch(in.GuideFiscal, in.EstimateFiscal) &&
		MethodsCompatible(in.GuideMethod, in.EstimateMethod) {
		if v := PercentDiff(*in.Guide, *in.Estimate); v != nil {
			return newResult(*v, domain.BasisEstimate)
		}
	}

	if in.Guide != nil && in.PrevMin != nil && in.PrevMax != nil {
		mid := (*in.PrevMin + *in.PrevMax) / 2
		if v := PercentDiff(*in.Guide, mid); v != nil {
			return newResult(*v, domain.BasisPreviousMid)
		}
	}

	return domain.SurpriseResult{}
}

// ComputeActualSurprise compares a reported actual with its estimate.
func ComputeActualSurprise(actual, estimate *float64) domain.SurpriseResult {
	if actual == nil || estimate == nil {
		return domain.SurpriseResult{}
	}
	v := PercentDiff(*actual, *estimate)
	if v == nil {
		return domain.SurpriseResult{}
	}
	return newResult(*v, domain.BasisEstimate)
}

// ComputeRevenueSurprise is ComputeActualSurprise for integer revenue. The
// integers are converted to float64 only for the division.
func ComputeRevenueSurprise(actual, estimate *int64) domain.SurpriseResult {
	if actual == nil || estimate == nil {
		return domain.SurpriseResult{}
	}
	a, _ := numeric.BigIntToFloat(big.NewInt(*actual))
	e, _ := numeric.BigIntToFloat(big.NewInt(*estimate))
	return ComputeActualSurprise(&a, &e)
}

// IsExtreme reports whether v exceeds ExtremeThreshold in magnitude.
func IsExtreme(v *float64) bool {
	return v != nil && math.Abs(*v) > ExtremeThreshold
}

func newResult(v float64, basis domain.Basis) domain.SurpriseResult {
	return domain.SurpriseResult{
		Value:   &v,
		Basis:   basis,
		Extreme: IsExtreme(&v),
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
