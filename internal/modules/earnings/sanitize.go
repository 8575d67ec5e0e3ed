package earnings

import (
	"github.com/aristath/earnings/pkg/numeric"
)

// SanitizeFigure returns actual, or nil when actual cannot be trusted.
//
// An actual exactly equal to its estimate is treated as a placeholder copied
// from the estimate before results were reported. Equality is strict:
// -0.3300001 and -0.33 are different figures and the actual is kept.
func SanitizeFigure(actual, estimate *float64) *float64 {
	if actual == nil {
		return nil
	}
	if estimate == nil {
		return actual
	}
	if *actual == *estimate {
		return nil
	}
	return actual
}

// SanitizeRevenue is SanitizeFigure for integer revenue, compared exactly.
func SanitizeRevenue(actual, estimate *int64) *int64 {
	if actual == nil {
		return nil
	}
	if estimate == nil {
		return actual
	}
	if *actual == *estimate {
		return nil
	}
	return actual
}

// SanitizeRaw sanitizes figures that have not been normalized yet (suffixed
// strings, big integers, json.Number). The duplicate check runs on the
// original representation, so two integers beyond float64 precision are
// compared exactly. An actual that fails normalization is dropped; an
// estimate that fails normalization counts as absent.
func SanitizeRaw(actual, estimate interface{}) *float64 {
	a := numeric.NormalizeToBaseUnits(actual)
	if a == nil {
		return nil
	}
	if numeric.NormalizeToBaseUnits(estimate) == nil {
		return a
	}
	if numeric.ExactEqual(actual, estimate) {
		return nil
	}
	return a
}

// SanitizeReport nulls duplicated actuals field by field. A duplicate EPS
// never affects revenue and vice versa.
func SanitizeReport(r Report) Report {
	r.EPSActual = SanitizeFigure(r.EPSActual, r.EPSEstimate)
	r.RevenueActual = SanitizeRevenue(r.RevenueActual, r.RevenueEstimate)
	return r
}
