// Package earnings reconciles reported and estimated earnings figures and
// computes surprise and guidance percentages for display.
package earnings

import (
	"time"

	"github.com/aristath/earnings/internal/domain"
	"github.com/aristath/earnings/internal/modules/market"
)

// Report is one earnings-calendar row as received from upstream. Values are
// stored raw; sanitization happens on read.
type Report struct {
	UpdatedAt       time.Time        `json:"updated_at"`
	Symbol          string           `json:"symbol"`
	ReportDate      string           `json:"report_date"` // YYYY-MM-DD
	Hour            string           `json:"hour"`        // bmo, amc, dmh or empty
	Source          string           `json:"source"`
	Fiscal          domain.FiscalTag `json:"fiscal"`
	EPSActual       *float64         `json:"eps_actual"`
	EPSEstimate     *float64         `json:"eps_estimate"`
	RevenueActual   *int64           `json:"revenue_actual"`
	RevenueEstimate *int64           `json:"revenue_estimate"`
}

// Guidance is a company-issued forward projection for one fiscal period.
type Guidance struct {
	AnnouncedAt         time.Time               `json:"announced_at"`
	Symbol              string                  `json:"symbol"`
	Fiscal              domain.FiscalTag        `json:"fiscal"`
	Method              domain.AccountingMethod `json:"method"`
	EstimateFiscal      domain.FiscalTag        `json:"estimate_fiscal"`
	EstimateMethod      domain.AccountingMethod `json:"estimate_method"`
	EPSGuide            *float64                `json:"eps_guide"`
	EPSGuidePrevMin     *float64                `json:"eps_guide_prev_min"`
	EPSGuidePrevMax     *float64                `json:"eps_guide_prev_max"`
	EPSConsensusPct     *float64                `json:"eps_consensus_pct"`
	EPSEstimate         *float64                `json:"eps_estimate"`
	RevenueGuide        *float64                `json:"revenue_guide"`
	RevenueGuidePrevMin *float64                `json:"revenue_guide_prev_min"`
	RevenueGuidePrevMax *float64                `json:"revenue_guide_prev_max"`
	RevenueConsensusPct *float64                `json:"revenue_consensus_pct"`
	RevenueEstimate     *float64                `json:"revenue_estimate"`
}

// EPSInput builds the surprise input for the EPS guidance figure.
func (g Guidance) EPSInput() SurpriseInput {
	return g.input(g.EPSGuide, g.EPSEstimate, g.EPSConsensusPct, g.EPSGuidePrevMin, g.EPSGuidePrevMax)
}

// RevenueInput builds the surprise input for the revenue guidance figure.
func (g Guidance) RevenueInput() SurpriseInput {
	return g.input(g.RevenueGuide, g.RevenueEstimate, g.RevenueConsensusPct, g.RevenueGuidePrevMin, g.RevenueGuidePrevMax)
}

func (g Guidance) input(guide, estimate, consensus, prevMin, prevMax *float64) SurpriseInput {
	guideFiscal := g.Fiscal
	estimateFiscal := g.EstimateFiscal
	return SurpriseInput{
		Guide:          guide,
		Estimate:       estimate,
		ConsensusPct:   consensus,
		PrevMin:        prevMin,
		PrevMax:        prevMax,
		GuideFiscal:    &guideFiscal,
		EstimateFiscal: &estimateFiscal,
		GuideMethod:    g.Method,
		EstimateMethod: g.EstimateMethod,
	}
}

// View is a fully reconciled earnings row ready for the API.
type View struct {
	Symbol          string           `json:"symbol"`
	ReportDate      string           `json:"report_date"`
	Hour            string           `json:"hour"`
	Fiscal          domain.FiscalTag `json:"fiscal"`
	EPSActual       *float64         `json:"eps_actual"`
	EPSEstimate     *float64         `json:"eps_estimate"`
	EPSSurprise     SurpriseDisplay  `json:"eps_surprise"`
	RevenueActual   *int64           `json:"revenue_actual"`
	RevenueEstimate *int64           `json:"revenue_estimate"`
	RevenueSurprise SurpriseDisplay  `json:"revenue_surprise"`
	RevenueLabel    string           `json:"revenue_label"`
	EPSGuidance     *SurpriseDisplay `json:"eps_guidance,omitempty"`
	RevenueGuidance *SurpriseDisplay `json:"revenue_guidance,omitempty"`
	Market          *MarketView      `json:"market,omitempty"`
}

// MarketView is the market context attached to an earnings row.
type MarketView struct {
	market.Change
	CurrentPrice  *float64 `json:"current_price"`
	PreviousClose *float64 `json:"previous_close"`
	MarketCap     *float64 `json:"market_cap"`
	ChangeLabel   string   `json:"change_label"`
	MarketCapText string   `json:"market_cap_text"`
}
