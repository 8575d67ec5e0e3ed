package earnings

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/earnings/internal/database"
	"github.com/aristath/earnings/internal/domain"
)

// Repository persists raw earnings rows and guidance in earnings.db.
// Values are written exactly as received so that duplicate detection can run
// against the original representation on read.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// reportColumns must match scanReport.
const reportColumns = `symbol, report_date, hour, fiscal_period, fiscal_year,
eps_actual, eps_estimate, revenue_actual, revenue_estimate, source, updated_at`

// guidanceColumns must match scanGuidance.
const guidanceColumns = `symbol, fiscal_period, fiscal_year, method,
eps_guide, eps_guide_prev_min, eps_guide_prev_max, eps_consensus_pct, eps_estimate,
revenue_guide, revenue_guide_prev_min, revenue_guide_prev_max, revenue_consensus_pct, revenue_estimate,
estimate_period, estimate_year, estimate_method, announced_at`

// NewRepository creates an earnings repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "earnings").Logger(),
	}
}

// UpsertReports writes calendar rows in a single transaction, replacing any
// existing row for the same symbol and date.
func (r *Repository) UpsertReports(ctx context.Context, reports []Report) error {
	if len(reports) == 0 {
		return nil
	}

	query := `
		INSERT INTO earnings_reports (` + reportColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, report_date) DO UPDATE SET
			hour = excluded.hour,
			fiscal_period = excluded.fiscal_period,
			fiscal_year = excluded.fiscal_year,
			eps_actual = excluded.eps_actual,
			eps_estimate = excluded.eps_estimate,
			revenue_actual = excluded.revenue_actual,
			revenue_estimate = excluded.revenue_estimate,
			source = excluded.source,
			updated_at = excluded.updated_at
	`

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare report upsert: %w", err)
		}
		defer stmt.Close()

		now := time.Now().Unix()
		for _, rep := range reports {
			if rep.Symbol == "" || rep.ReportDate == "" {
				return fmt.Errorf("report requires symbol and report_date")
			}
			updatedAt := now
			if !rep.UpdatedAt.IsZero() {
				updatedAt = rep.UpdatedAt.Unix()
			}
			_, err := stmt.ExecContext(ctx,
				strings.ToUpper(rep.Symbol),
				rep.ReportDate,
				rep.Hour,
				string(rep.Fiscal.Period),
				rep.Fiscal.Year,
				nullFloat(rep.EPSActual),
				nullFloat(rep.EPSEstimate),
				nullInt(rep.RevenueActual),
				nullInt(rep.RevenueEstimate),
				rep.Source,
				updatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert report %s %s: %w", rep.Symbol, rep.ReportDate, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Debug().Int("count", len(reports)).Msg("Earnings reports upserted")
	return nil
}

// GetReportsByDate returns all rows for a report date ordered by symbol.
func (r *Repository) GetReportsByDate(ctx context.Context, date string) ([]Report, error) {
	query := "SELECT " + reportColumns + " FROM earnings_reports WHERE report_date = ? ORDER BY symbol"
	return r.queryReports(ctx, query, date)
}

// GetReportsBySymbol returns the most recent rows for a symbol, newest first.
func (r *Repository) GetReportsBySymbol(ctx context.Context, symbol string, limit int) ([]Report, error) {
	if limit <= 0 {
		limit = 8
	}
	query := "SELECT " + reportColumns + " FROM earnings_reports WHERE symbol = ? ORDER BY report_date DESC LIMIT ?"
	return r.queryReports(ctx, query, strings.ToUpper(symbol), limit)
}

// SymbolsReportingBetween returns distinct symbols with a report date in
// [from, to], both YYYY-MM-DD.
func (r *Repository) SymbolsReportingBetween(ctx context.Context, from, to string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT symbol FROM earnings_reports WHERE report_date BETWEEN ? AND ? ORDER BY symbol",
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query reporting symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

func (r *Repository) queryReports(ctx context.Context, query string, args ...interface{}) ([]Report, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}
	return reports, nil
}

func scanReport(rows *sql.Rows) (Report, error) {
	var (
		rep                         Report
		period                      string
		epsActual, epsEstimate      sql.NullFloat64
		revenueActual, revenueEstim sql.NullInt64
		updatedAt                   int64
	)

	err := rows.Scan(
		&rep.Symbol, &rep.ReportDate, &rep.Hour, &period, &rep.Fiscal.Year,
		&epsActual, &epsEstimate, &revenueActual, &revenueEstim,
		&rep.Source, &updatedAt,
	)
	if err != nil {
		return Report{}, fmt.Errorf("failed to scan report: %w", err)
	}

	rep.Fiscal.Period = domain.FiscalPeriod(period)
	rep.EPSActual = floatPtr(epsActual)
	rep.EPSEstimate = floatPtr(epsEstimate)
	rep.RevenueActual = intPtr(revenueActual)
	rep.RevenueEstimate = intPtr(revenueEstim)
	rep.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return rep, nil
}

// UpsertGuidance writes guidance rows in a single transaction, keyed by
// symbol and fiscal period.
func (r *Repository) UpsertGuidance(ctx context.Context, items []Guidance) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT OR REPLACE INTO guidance (` + guidanceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare guidance upsert: %w", err)
		}
		defer stmt.Close()

		for _, g := range items {
			if g.Symbol == "" || !g.Fiscal.Defined() {
				return fmt.Errorf("guidance requires symbol and a defined fiscal period")
			}
			announced := g.AnnouncedAt
			if announced.IsZero() {
				announced = time.Now()
			}
			_, err := stmt.ExecContext(ctx,
				strings.ToUpper(g.Symbol),
				string(g.Fiscal.Period),
				g.Fiscal.Year,
				string(g.Method),
				nullFloat(g.EPSGuide),
				nullFloat(g.EPSGuidePrevMin),
				nullFloat(g.EPSGuidePrevMax),
				nullFloat(g.EPSConsensusPct),
				nullFloat(g.EPSEstimate),
				nullFloat(g.RevenueGuide),
				nullFloat(g.RevenueGuidePrevMin),
				nullFloat(g.RevenueGuidePrevMax),
				nullFloat(g.RevenueConsensusPct),
				nullFloat(g.RevenueEstimate),
				string(g.EstimateFiscal.Period),
				g.EstimateFiscal.Year,
				string(g.EstimateMethod),
				announced.Unix(),
			)
			if err != nil {
				return fmt.Errorf("failed to upsert guidance %s %s: %w", g.Symbol, g.Fiscal, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Debug().Int("count", len(items)).Msg("Guidance upserted")
	return nil
}

// GetLatestGuidance returns the most recently announced guidance for a
// symbol, or nil if there is none.
func (r *Repository) GetLatestGuidance(ctx context.Context, symbol string) (*Guidance, error) {
	query := "SELECT " + guidanceColumns + " FROM guidance WHERE symbol = ? ORDER BY announced_at DESC, fiscal_year DESC LIMIT 1"

	rows, err := r.db.QueryContext(ctx, query, strings.ToUpper(symbol))
	if err != nil {
		return nil, fmt.Errorf("failed to query guidance: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	g, err := scanGuidance(rows)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func scanGuidance(rows *sql.Rows) (Guidance, error) {
	var (
		g                                         Guidance
		period, method, estPeriod, estMethod      string
		epsGuide, epsMin, epsMax, epsCons, epsEst sql.NullFloat64
		revGuide, revMin, revMax, revCons, revEst sql.NullFloat64
		announced                                 int64
	)

	err := rows.Scan(
		&g.Symbol, &period, &g.Fiscal.Year, &method,
		&epsGuide, &epsMin, &epsMax, &epsCons, &epsEst,
		&revGuide, &revMin, &revMax, &revCons, &revEst,
		&estPeriod, &g.EstimateFiscal.Year, &estMethod, &announced,
	)
	if err != nil {
		return Guidance{}, fmt.Errorf("failed to scan guidance: %w", err)
	}

	g.Fiscal.Period = domain.FiscalPeriod(period)
	g.EstimateFiscal.Period = domain.FiscalPeriod(estPeriod)
	g.Method = domain.AccountingMethod(method)
	g.EstimateMethod = domain.AccountingMethod(estMethod)
	g.EPSGuide = floatPtr(epsGuide)
	g.EPSGuidePrevMin = floatPtr(epsMin)
	g.EPSGuidePrevMax = floatPtr(epsMax)
	g.EPSConsensusPct = floatPtr(epsCons)
	g.EPSEstimate = floatPtr(epsEst)
	g.RevenueGuide = floatPtr(revGuide)
	g.RevenueGuidePrevMin = floatPtr(revMin)
	g.RevenueGuidePrevMax = floatPtr(revMax)
	g.RevenueConsensusPct = floatPtr(revCons)
	g.RevenueEstimate = floatPtr(revEst)
	g.AnnouncedAt = time.Unix(announced, 0).UTC()

	return g, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}
