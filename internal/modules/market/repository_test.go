package market

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aristath/earnings/internal/database"
)

func setupMarketTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	schema, err := database.Schema("earnings")
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err)

	return db
}

func TestRepository_UpsertAndGet(t *testing.T) {
	repo := NewRepository(setupMarketTestDB(t), zerolog.Nop())
	ctx := context.Background()

	missing, err := repo.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.Nil(t, missing)

	updated := time.Date(2025, 1, 30, 21, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx, Quote{
		UpdatedAt:         updated,
		Symbol:            "aapl",
		CurrentPrice:      f(237.59),
		PreviousClose:     f(238.26),
		SharesOutstanding: f(15_037_900_000),
	}))

	got, err := repo.Get(ctx, "AAPL")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, 237.59, *got.CurrentPrice)
	assert.Nil(t, got.MarketCap)
	assert.Equal(t, updated, got.UpdatedAt)

	require.NoError(t, repo.Upsert(ctx, Quote{Symbol: "AAPL", MarketCap: f(3.5e12)}))
	got, err = repo.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.Nil(t, got.CurrentPrice, "upsert replaces the whole row")
	assert.Equal(t, 3.5e12, *got.MarketCap)

	assert.Error(t, repo.Upsert(ctx, Quote{}))
}

func TestRepository_GetMany(t *testing.T) {
	repo := NewRepository(setupMarketTestDB(t), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, Quote{Symbol: "MSFT", MarketCap: f(3.1e12)}))
	require.NoError(t, repo.Upsert(ctx, Quote{Symbol: "AMD", MarketCap: f(1.9e11)}))

	got, err := repo.GetMany(ctx, []string{"msft", "AMD", "TSLA"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Contains(t, got, "MSFT")
	assert.NotContains(t, got, "TSLA")

	empty, err := repo.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
