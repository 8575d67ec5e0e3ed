package benzinga

import (
	"strings"
	"time"

	"github.com/aristath/earnings/internal/domain"
	"github.com/aristath/earnings/internal/modules/earnings"
	"github.com/aristath/earnings/pkg/numeric"
)

type guidanceResponse struct {
	Guidance []guidanceEntry `json:"guidance"`
}

// Benzinga sends most figures as strings, sometimes empty.
type guidanceEntry struct {
	Date       string      `json:"date"`
	Time       string      `json:"time"`
	Ticker     string      `json:"ticker"`
	Period     string      `json:"period"`
	PeriodYear interface{} `json:"period_year"`
	IsPrimary  interface{} `json:"is_primary"`
	EPSType    string      `json:"eps_type"`

	EPSEstimate     interface{} `json:"eps_guidance_est"`
	EPSMin          interface{} `json:"eps_guidance_min"`
	EPSMax          interface{} `json:"eps_guidance_max"`
	EPSPriorMin     interface{} `json:"eps_guidance_prior_min"`
	EPSPriorMax     interface{} `json:"eps_guidance_prior_max"`
	RevenueEstimate interface{} `json:"revenue_guidance_est"`
	RevenueMin      interface{} `json:"revenue_guidance_min"`
	RevenueMax      interface{} `json:"revenue_guidance_max"`
	RevenuePriorMin interface{} `json:"revenue_guidance_prior_min"`
	RevenuePriorMax interface{} `json:"revenue_guidance_prior_max"`
}

func transformGuidance(resp guidanceResponse) []earnings.Guidance {
	out := make([]earnings.Guidance, 0, len(resp.Guidance))
	for _, e := range resp.Guidance {
		if e.Ticker == "" || !primary(e.IsPrimary) {
			continue
		}
		fiscal := fiscalTag(e.Period, e.PeriodYear)
		if !fiscal.Defined() {
			continue
		}
		method := domain.ParseAccountingMethod(e.EPSType)

		out = append(out, earnings.Guidance{
			AnnouncedAt:         announcedAt(e.Date, e.Time),
			Symbol:              strings.ToUpper(e.Ticker),
			Fiscal:              fiscal,
			Method:              method,
			EstimateFiscal:      fiscal,
			EstimateMethod:      method,
			EPSGuide:            midpoint(e.EPSMin, e.EPSMax),
			EPSGuidePrevMin:     numeric.NormalizeToBaseUnits(e.EPSPriorMin),
			EPSGuidePrevMax:     numeric.NormalizeToBaseUnits(e.EPSPriorMax),
			EPSEstimate:         numeric.NormalizeToBaseUnits(e.EPSEstimate),
			RevenueGuide:        midpoint(e.RevenueMin, e.RevenueMax),
			RevenueGuidePrevMin: numeric.NormalizeToBaseUnits(e.RevenuePriorMin),
			RevenueGuidePrevMax: numeric.NormalizeToBaseUnits(e.RevenuePriorMax),
			RevenueEstimate:     numeric.NormalizeToBaseUnits(e.RevenueEstimate),
		})
	}
	return out
}

func fiscalTag(period string, year interface{}) domain.FiscalTag {
	var tag domain.FiscalTag
	if p, ok := domain.ParseFiscalPeriod(period); ok {
		tag.Period = p
	}
	if y := numeric.ToInt64(year); y != nil {
		tag.Year = int(*y)
	}
	return tag
}

// midpoint of a guidance range; a one-sided range yields the bound given.
func midpoint(low, high interface{}) *float64 {
	lo := numeric.NormalizeToBaseUnits(low)
	hi := numeric.NormalizeToBaseUnits(high)
	switch {
	case lo != nil && hi != nil:
		v := (*lo + *hi) / 2
		return &v
	case lo != nil:
		return lo
	default:
		return hi
	}
}

// primary treats a missing flag as primary; secondary rows restate guidance
// on another basis.
func primary(v interface{}) bool {
	switch p := v.(type) {
	case nil:
		return true
	case bool:
		return p
	default:
		n := numeric.ToInt64(p)
		return n == nil || *n != 0
	}
}

func announcedAt(date, clock string) time.Time {
	if clock == "" {
		clock = "00:00:00"
	}
	t, err := time.Parse("2006-01-02 15:04:05", date+" "+clock)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
