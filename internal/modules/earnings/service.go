package earnings

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/earnings/internal/domain"
	"github.com/aristath/earnings/internal/metrics"
	"github.com/aristath/earnings/internal/modules/market"
	"github.com/aristath/earnings/pkg/numeric"
)

// ReportStore is the read side of the earnings repository.
type ReportStore interface {
	GetReportsByDate(ctx context.Context, date string) ([]Report, error)
	GetReportsBySymbol(ctx context.Context, symbol string, limit int) ([]Report, error)
	GetLatestGuidance(ctx context.Context, symbol string) (*Guidance, error)
}

// QuoteStore provides stored market data keyed by symbol.
type QuoteStore interface {
	GetMany(ctx context.Context, symbols []string) (map[string]market.Quote, error)
}

// Service assembles reconciled earnings views from stored rows.
type Service struct {
	reports    ReportStore
	quotes     QuoteStore
	correction numeric.MagnitudeCorrection
	log        zerolog.Logger
}

// NewService creates an earnings service. quotes may be nil, in which case
// views carry no market context.
func NewService(reports ReportStore, quotes QuoteStore, correction numeric.MagnitudeCorrection, log zerolog.Logger) *Service {
	return &Service{
		reports:    reports,
		quotes:     quotes,
		correction: correction,
		log:        log.With().Str("service", "earnings").Logger(),
	}
}

// GetDay returns reconciled views for every report on date (YYYY-MM-DD).
func (s *Service) GetDay(ctx context.Context, date string) ([]View, error) {
	reports, err := s.reports.GetReportsByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports for %s: %w", date, err)
	}
	return s.buildViews(ctx, reports)
}

// GetSymbol returns up to limit reconciled views for symbol, newest first.
func (s *Service) GetSymbol(ctx context.Context, symbol string, limit int) ([]View, error) {
	reports, err := s.reports.GetReportsBySymbol(ctx, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports for %s: %w", symbol, err)
	}
	return s.buildViews(ctx, reports)
}

// GetStats summarizes EPS surprises for date.
func (s *Service) GetStats(ctx context.Context, date string) (Stats, error) {
	reports, err := s.reports.GetReportsByDate(ctx, date)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to load reports for %s: %w", date, err)
	}

	results := make([]domain.SurpriseResult, 0, len(reports))
	for _, rep := range reports {
		clean := s.sanitize(rep)
		results = append(results, ComputeActualSurprise(clean.EPSActual, clean.EPSEstimate))
	}
	return ComputeStats(results), nil
}

func (s *Service) buildViews(ctx context.Context, reports []Report) ([]View, error) {
	views := make([]View, 0, len(reports))
	if len(reports) == 0 {
		return views, nil
	}

	quotes := map[string]market.Quote{}
	if s.quotes != nil {
		symbols := make([]string, 0, len(reports))
		for _, rep := range reports {
			symbols = append(symbols, rep.Symbol)
		}
		q, err := s.quotes.GetMany(ctx, symbols)
		if err != nil {
			// Market context is optional; the earnings rows still render.
			s.log.Warn().Err(err).Msg("Failed to load market data for earnings views")
		} else {
			quotes = q
		}
	}

	guidance := map[string]*Guidance{}
	for _, rep := range reports {
		if _, seen := guidance[rep.Symbol]; seen {
			continue
		}
		g, err := s.reports.GetLatestGuidance(ctx, rep.Symbol)
		if err != nil {
			return nil, fmt.Errorf("failed to load guidance for %s: %w", rep.Symbol, err)
		}
		guidance[rep.Symbol] = g
	}

	for _, rep := range reports {
		view := s.buildView(rep, guidance[rep.Symbol])
		if q, ok := quotes[rep.Symbol]; ok {
			view.Market = NewMarketView(q)
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Service) buildView(rep Report, g *Guidance) View {
	clean := s.sanitize(rep)

	eps := record(ComputeActualSurprise(clean.EPSActual, clean.EPSEstimate))
	revenue := record(ComputeRevenueSurprise(clean.RevenueActual, clean.RevenueEstimate))

	view := View{
		Symbol:          clean.Symbol,
		ReportDate:      clean.ReportDate,
		Hour:            clean.Hour,
		Fiscal:          clean.Fiscal,
		EPSActual:       clean.EPSActual,
		EPSEstimate:     clean.EPSEstimate,
		EPSSurprise:     NewSurpriseDisplay(eps),
		RevenueActual:   clean.RevenueActual,
		RevenueEstimate: clean.RevenueEstimate,
		RevenueSurprise: NewSurpriseDisplay(revenue),
		RevenueLabel:    s.revenueLabel(clean),
	}

	if g != nil {
		if g.EPSGuide != nil {
			d := NewSurpriseDisplay(record(ComputeSurprise(g.EPSInput())))
			view.EPSGuidance = &d
		}
		if g.RevenueGuide != nil {
			d := NewSurpriseDisplay(record(ComputeSurprise(g.RevenueInput())))
			view.RevenueGuidance = &d
		}
	}

	return view
}

// sanitize nulls duplicated actuals and counts what it removed.
func (s *Service) sanitize(rep Report) Report {
	clean := SanitizeReport(rep)
	if rep.EPSActual != nil && clean.EPSActual == nil {
		metrics.RecordSanitized("eps")
		s.log.Debug().Str("symbol", rep.Symbol).Str("date", rep.ReportDate).Msg("EPS actual duplicates estimate, treating as unreported")
	}
	if rep.RevenueActual != nil && clean.RevenueActual == nil {
		metrics.RecordSanitized("revenue")
		s.log.Debug().Str("symbol", rep.Symbol).Str("date", rep.ReportDate).Msg("Revenue actual duplicates estimate, treating as unreported")
	}
	return clean
}

// revenueLabel formats the actual revenue, falling back to the estimate.
func (s *Service) revenueLabel(rep Report) string {
	v := rep.RevenueActual
	if v == nil {
		v = rep.RevenueEstimate
	}
	if v == nil {
		return numeric.Missing
	}
	f := float64(*v)
	return numeric.FormatRevenue(&f, s.correction)
}

// NewMarketView derives the market context for a stored quote.
func NewMarketView(q market.Quote) *MarketView {
	change := market.CalculateChange(q)
	mcap := q.EffectiveMarketCap()
	return &MarketView{
		Change:        change,
		CurrentPrice:  q.CurrentPrice,
		PreviousClose: q.PreviousClose,
		MarketCap:     mcap,
		ChangeLabel:   FormatPercent(change.PriceChangePercent),
		MarketCapText: numeric.FormatCompact(mcap, 2),
	}
}

func record(r domain.SurpriseResult) domain.SurpriseResult {
	metrics.RecordSurprise(string(r.Basis), r.Extreme)
	return r
}
