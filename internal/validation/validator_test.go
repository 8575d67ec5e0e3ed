package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRequest struct {
	Symbol string `json:"symbol" validate:"required,max=10"`
	Period string `json:"period" validate:"omitempty,oneof=Q1 Q2 Q3 Q4 H1 H2 FY"`
	Year   int    `json:"year" validate:"omitempty,gte=1900,lte=2200"`
}

func TestGetValidator_Singleton(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		req        testRequest
		wantFields []string
		wantMsg    string
	}{
		{"valid", testRequest{Symbol: "AAPL", Period: "Q1", Year: 2025}, nil, ""},
		{"missing symbol", testRequest{}, []string{"symbol"}, "symbol is required"},
		{"bad period", testRequest{Symbol: "AAPL", Period: "Q5"}, []string{"period"}, "period must be one of: Q1 Q2 Q3 Q4 H1 H2 FY"},
		{"long symbol", testRequest{Symbol: "ABCDEFGHIJKL"}, []string{"symbol"}, "symbol must be at most 10 characters"},
		{"multiple failures", testRequest{Period: "X", Year: 10}, []string{"symbol", "period", "year"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.req)
			if tt.wantFields == nil {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			var fields []string
			for _, f := range err.Fields {
				fields = append(fields, f.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
			}
		})
	}
}

func TestValidateVar(t *testing.T) {
	assert.Nil(t, ValidateVar("date", "2025-01-30", "datetime=2006-01-02"))

	err := ValidateVar("date", "30/01/2025", "datetime=2006-01-02")
	require.NotNil(t, err)
	assert.Equal(t, "date must be a date in the format 2006-01-02", err.Error())
	assert.Equal(t, "datetime", err.Fields[0].Tag)
}
