package earnings

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/earnings/internal/domain"
)

func tag(p domain.FiscalPeriod, year int) *domain.FiscalTag {
	return &domain.FiscalTag{Period: p, Year: year}
}

func TestPercentDiff(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want *float64
	}{
		{"above", 1.95, 1.0, fp(95)},
		{"below", 0.9, 1.0, fp(-10)},
		{"negative baseline uses magnitude", -0.2, -0.4, fp(50)},
		{"equal", 2, 2, fp(0)},
		{"near zero baseline", 1, 1e-7, nil},
		{"zero baseline", 1, 0, nil},
		{"NaN input", math.NaN(), 1, nil},
		{"infinite baseline", 1, math.Inf(-1), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentDiff(tt.a, tt.b)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestFiscalTagsMatch(t *testing.T) {
	assert.True(t, FiscalTagsMatch(tag(domain.PeriodQ1, 2025), tag(domain.PeriodQ1, 2025)))
	assert.False(t, FiscalTagsMatch(tag(domain.PeriodQ1, 2025), tag(domain.PeriodQ2, 2025)))
	assert.False(t, FiscalTagsMatch(tag(domain.PeriodQ1, 2025), tag(domain.PeriodQ1, 2024)))
	assert.False(t, FiscalTagsMatch(tag(domain.PeriodQ1, 0), tag(domain.PeriodQ1, 0)), "undefined year never matches")
	assert.False(t, FiscalTagsMatch(nil, tag(domain.PeriodQ1, 2025)))
	assert.False(t, FiscalTagsMatch(nil, nil))
}

func TestMethodsCompatible(t *testing.T) {
	tests := []struct {
		a, b domain.AccountingMethod
		want bool
	}{
		{domain.MethodAdjusted, domain.MethodNonGAAP, true},
		{domain.MethodOperating, domain.MethodProForma, true},
		{domain.MethodGAAP, domain.MethodReportedGAAP, true},
		{domain.MethodReported, domain.MethodGAAP, true},
		{domain.MethodGAAP, domain.MethodAdjusted, false},
		{domain.MethodNonGAAP, domain.MethodReported, false},
		{domain.MethodUnknown, domain.MethodGAAP, true},
		{domain.MethodAdjusted, domain.MethodUnknown, true},
		{domain.MethodUnknown, domain.MethodUnknown, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.a)+"/"+string(tt.b), func(t *testing.T) {
			assert.Equal(t, tt.want, MethodsCompatible(tt.a, tt.b))
		})
	}
}

func TestComputeSurprise(t *testing.T) {
	tests := []struct {
		name      string
		in        SurpriseInput
		wantValue *float64
		wantBasis domain.Basis
		extreme   bool
	}{
		{
			name: "estimate basis with matching periods",
			in: SurpriseInput{
				Guide: fp(1.95), Estimate: fp(1.0),
				GuideFiscal: tag(domain.PeriodQ1, 2025), EstimateFiscal: tag(domain.PeriodQ1, 2025),
			},
			wantValue: fp(95),
			wantBasis: domain.BasisEstimate,
		},
		{
			name: "period mismatch without fallback",
			in: SurpriseInput{
				Guide: fp(1.95), Estimate: fp(1.0),
				GuideFiscal: tag(domain.PeriodQ1, 2025), EstimateFiscal: tag(domain.PeriodQ2, 2025),
			},
			wantBasis: domain.BasisNone,
		},
		{
			name: "consensus wins over everything",
			in: SurpriseInput{
				Guide: fp(1.95), Estimate: fp(1.0), ConsensusPct: fp(-3.5),
				PrevMin: fp(1.0), PrevMax: fp(2.0),
				GuideFiscal: tag(domain.PeriodQ1, 2025), EstimateFiscal: tag(domain.PeriodQ1, 2025),
			},
			wantValue: fp(-3.5),
			wantBasis: domain.BasisConsensus,
		},
		{
			name:      "non-finite consensus is ignored",
			in:        SurpriseInput{ConsensusPct: fp(math.NaN()), Guide: fp(2.2), PrevMin: fp(1.9), PrevMax: fp(2.1)},
			wantValue: fp(10),
			wantBasis: domain.BasisPreviousMid,
		},
		{
			name: "method mismatch falls back to previous midpoint",
			in: SurpriseInput{
				Guide: fp(2.2), Estimate: fp(1.0), PrevMin: fp(1.9), PrevMax: fp(2.1),
				GuideFiscal: tag(domain.PeriodFY, 2025), EstimateFiscal: tag(domain.PeriodFY, 2025),
				GuideMethod: domain.MethodAdjusted, EstimateMethod: domain.MethodGAAP,
			},
			wantValue: fp(10),
			wantBasis: domain.BasisPreviousMid,
		},
		{
			name: "unknown method is compatible",
			in: SurpriseInput{
				Guide: fp(1.1), Estimate: fp(1.0),
				GuideFiscal: tag(domain.PeriodH1, 2025), EstimateFiscal: tag(domain.PeriodH1, 2025),
				GuideMethod: domain.MethodAdjusted,
			},
			wantValue: fp(10),
			wantBasis: domain.BasisEstimate,
		},
		{
			name: "zero estimate falls through to previous midpoint",
			in: SurpriseInput{
				Guide: fp(0.5), Estimate: fp(0), PrevMin: fp(0.4), PrevMax: fp(0.6),
				GuideFiscal: tag(domain.PeriodQ3, 2025), EstimateFiscal: tag(domain.PeriodQ3, 2025),
			},
			wantValue: fp(0),
			wantBasis: domain.BasisPreviousMid,
		},
		{
			name:      "previous midpoint needs both bounds",
			in:        SurpriseInput{Guide: fp(2.2), PrevMin: fp(1.9)},
			wantBasis: domain.BasisNone,
		},
		{
			name: "extreme estimate surprise is flagged, not suppressed",
			in: SurpriseInput{
				Guide: fp(50), Estimate: fp(10),
				GuideFiscal: tag(domain.PeriodQ4, 2024), EstimateFiscal: tag(domain.PeriodQ4, 2024),
			},
			wantValue: fp(400),
			wantBasis: domain.BasisEstimate,
			extreme:   true,
		},
		{
			name:      "extreme consensus is flagged",
			in:        SurpriseInput{ConsensusPct: fp(-300.5)},
			wantValue: fp(-300.5),
			wantBasis: domain.BasisConsensus,
			extreme:   true,
		},
		{
			name:      "exactly 300 is not extreme",
			in:        SurpriseInput{ConsensusPct: fp(300)},
			wantValue: fp(300),
			wantBasis: domain.BasisConsensus,
		},
		{
			name:      "nothing supplied",
			in:        SurpriseInput{},
			wantBasis: domain.BasisNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeSurprise(tt.in)
			assert.Equal(t, tt.wantBasis, got.Basis)
			assert.Equal(t, tt.extreme, got.Extreme)
			if tt.wantValue == nil {
				assert.Nil(t, got.Value)
				return
			}
			require.NotNil(t, got.Value)
			assert.InDelta(t, *tt.wantValue, *got.Value, 1e-9)
		})
	}
}

func TestComputeSurprise_ExtremeFlagMatchesMagnitude(t *testing.T) {
	for _, pct := range []float64{-1000, -300.01, -300, -12, 0, 12, 300, 300.01, 1000} {
		got := ComputeSurprise(SurpriseInput{ConsensusPct: fp(pct)})
		require.NotNil(t, got.Value)
		assert.Equal(t, math.Abs(pct) > 300, got.Extreme, "pct=%v", pct)
	}
}

func TestComputeActualSurprise(t *testing.T) {
	got := ComputeActualSurprise(fp(1.64), fp(1.60))
	require.NotNil(t, got.Value)
	assert.InDelta(t, 2.5, *got.Value, 1e-9)
	assert.Equal(t, domain.BasisEstimate, got.Basis)

	assert.Nil(t, ComputeActualSurprise(nil, fp(1.6)).Value)
	assert.Equal(t, domain.BasisNone, ComputeActualSurprise(fp(1), fp(0)).Basis)
}

func TestComputeRevenueSurprise(t *testing.T) {
	got := ComputeRevenueSurprise(ip(94_930_000_000), ip(94_500_000_000))
	require.NotNil(t, got.Value)
	assert.InDelta(t, 0.455026455, *got.Value, 1e-6)
	assert.Equal(t, domain.BasisEstimate, got.Basis)

	assert.Nil(t, ComputeRevenueSurprise(nil, ip(1)).Value)
	assert.Nil(t, ComputeRevenueSurprise(ip(1), ip(0)).Value)
}
