package domain

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFiscalPeriod(t *testing.T) {
	tests := []struct {
		input    string
		expected FiscalPeriod
		ok       bool
	}{
		{"Q1", PeriodQ1, true},
		{" q3 ", PeriodQ3, true},
		{"h2", PeriodH2, true},
		{"FY", PeriodFY, true},
		{"Y", PeriodFY, true},
		{"Q5", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, ok := ParseFiscalPeriod(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, p)
		})
	}
}

func TestFiscalPeriodFromQuarter(t *testing.T) {
	p, ok := FiscalPeriodFromQuarter(2)
	assert.True(t, ok)
	assert.Equal(t, PeriodQ2, p)

	_, ok = FiscalPeriodFromQuarter(0)
	assert.False(t, ok)
	_, ok = FiscalPeriodFromQuarter(5)
	assert.False(t, ok)
}

func TestFiscalTag(t *testing.T) {
	tag := FiscalTag{Period: PeriodQ1, Year: 2025}
	assert.True(t, tag.Defined())
	assert.Equal(t, "Q1 2025", tag.String())

	assert.False(t, FiscalTag{Period: PeriodQ1}.Defined())
	assert.False(t, FiscalTag{Year: 2025}.Defined())
	assert.Equal(t, "unknown", FiscalTag{}.String())
}

func TestParseAccountingMethod(t *testing.T) {
	tests := []struct {
		input    string
		expected AccountingMethod
		group    MethodGroup
	}{
		{"GAAP", MethodGAAP, GroupGAAP},
		{"reported", MethodReported, GroupGAAP},
		{"Reported GAAP", MethodReportedGAAP, GroupGAAP},
		{"Adj", MethodAdjusted, GroupNonGAAP},
		{"adjusted", MethodAdjusted, GroupNonGAAP},
		{"operating", MethodOperating, GroupNonGAAP},
		{"pro-forma", MethodProForma, GroupNonGAAP},
		{"Non-GAAP", MethodNonGAAP, GroupNonGAAP},
		{"FFO", MethodUnknown, GroupUnknown},
		{"", MethodUnknown, GroupUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m := ParseAccountingMethod(tt.input)
			assert.Equal(t, tt.expected, m)
			assert.Equal(t, tt.group, m.Group())
		})
	}
}

func TestBasisJSON(t *testing.T) {
	v := 12.5
	data, err := json.Marshal(SurpriseResult{Value: &v, Basis: BasisEstimate})
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":12.5,"basis":"estimate","extreme":false}`, string(data))

	data, err = json.Marshal(SurpriseResult{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":null,"basis":null,"extreme":false}`, string(data))

	var r SurpriseResult
	require.NoError(t, json.Unmarshal([]byte(`{"value":-4,"basis":"previous_mid","extreme":false}`), &r))
	assert.Equal(t, BasisPreviousMid, r.Basis)

	require.NoError(t, json.Unmarshal([]byte(`{"value":null,"basis":null}`), &r))
	assert.Equal(t, BasisNone, r.Basis)

	assert.Error(t, json.Unmarshal([]byte(`{"basis":"vibes"}`), &r))
}
