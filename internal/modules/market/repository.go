package market

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Repository stores the latest quote per symbol in earnings.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

const quoteColumns = `symbol, current_price, previous_close, market_cap, shares_outstanding, updated_at`

// NewRepository creates a market data repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "market").Logger(),
	}
}

// Upsert replaces the stored quote for q.Symbol.
func (r *Repository) Upsert(ctx context.Context, q Quote) error {
	if q.Symbol == "" {
		return fmt.Errorf("quote requires a symbol")
	}
	updatedAt := q.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO market_data ("+quoteColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		strings.ToUpper(q.Symbol),
		nullFloat(q.CurrentPrice),
		nullFloat(q.PreviousClose),
		nullFloat(q.MarketCap),
		nullFloat(q.SharesOutstanding),
		updatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert quote for %s: %w", q.Symbol, err)
	}
	return nil
}

// Get returns the stored quote, or nil if the symbol has none.
func (r *Repository) Get(ctx context.Context, symbol string) (*Quote, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+quoteColumns+" FROM market_data WHERE symbol = ?",
		strings.ToUpper(symbol),
	)
	q, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for %s: %w", symbol, err)
	}
	return &q, nil
}

// GetMany returns stored quotes keyed by symbol. Symbols without data are
// absent from the map.
func (r *Repository) GetMany(ctx context.Context, symbols []string) (map[string]Quote, error) {
	result := make(map[string]Quote, len(symbols))
	if len(symbols) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(symbols))
	args := make([]interface{}, len(symbols))
	for i, s := range symbols {
		placeholders[i] = "?"
		args[i] = strings.ToUpper(s)
	}

	query := "SELECT " + quoteColumns + " FROM market_data WHERE symbol IN (" + strings.Join(placeholders, ",") + ")"
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		result[q.Symbol] = q
	}
	return result, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanQuote(s scanner) (Quote, error) {
	var (
		q                              Quote
		price, prevClose, mcap, shares sql.NullFloat64
		updatedAt                      int64
	)
	if err := s.Scan(&q.Symbol, &price, &prevClose, &mcap, &shares, &updatedAt); err != nil {
		return Quote{}, err
	}
	q.CurrentPrice = floatPtr(price)
	q.PreviousClose = floatPtr(prevClose)
	q.MarketCap = floatPtr(mcap)
	q.SharesOutstanding = floatPtr(shares)
	q.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return q, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
