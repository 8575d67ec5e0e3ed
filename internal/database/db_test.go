package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, name string, profile DatabaseProfile) *DB {
	t.Helper()

	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: profile,
		Name:    name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBuildConnectionString(t *testing.T) {
	standard := buildConnectionString("/tmp/x.db", ProfileStandard)
	assert.True(t, strings.HasPrefix(standard, "/tmp/x.db?_pragma=journal_mode(WAL)"))
	assert.Contains(t, standard, "synchronous(NORMAL)")
	assert.Contains(t, standard, "busy_timeout(5000)")

	cache := buildConnectionString("/tmp/x.db", ProfileCache)
	assert.Contains(t, cache, "synchronous(OFF)")
	assert.Contains(t, cache, "auto_vacuum(FULL)")
}

func TestSchema(t *testing.T) {
	schema, err := Schema("earnings")
	require.NoError(t, err)
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS earnings_reports")
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS guidance")
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS market_data")

	schema, err = Schema("client_data")
	require.NoError(t, err)
	assert.Contains(t, schema, "finnhub_calendar")

	_, err = Schema("nope")
	assert.Error(t, err)
}

func TestNew_DefaultsToStandardProfile(t *testing.T) {
	db := newTestDB(t, "earnings", "")
	assert.Equal(t, ProfileStandard, db.Profile())
	assert.Equal(t, "earnings", db.Name())
	assert.True(t, filepath.IsAbs(db.Path()))
}

func TestMigrate_IsIdempotent(t *testing.T) {
	db := newTestDB(t, "earnings", ProfileStandard)

	require.NoError(t, db.Migrate())
	require.NoError(t, db.Migrate())

	var count int
	err := db.Conn().QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('earnings_reports','guidance','market_data')",
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMigrate_UnknownNameIsSkipped(t *testing.T) {
	db := newTestDB(t, "scratch", ProfileCache)
	assert.NoError(t, db.Migrate())
}

func TestWithTransaction(t *testing.T) {
	db := newTestDB(t, "client_data", ProfileCache)
	require.NoError(t, db.Migrate())

	insert := func(tx *sql.Tx, key string) error {
		_, err := tx.Exec("INSERT INTO finnhub_profile (key, data, expires_at) VALUES (?, '{}', 0)", key)
		return err
	}

	t.Run("commits on success", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error { return insert(tx, "AAPL") })
		require.NoError(t, err)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			if err := insert(tx, "MSFT"); err != nil {
				return err
			}
			return errors.New("boom")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			_ = insert(tx, "NVDA")
			panic("kaboom")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panic in transaction")
	})

	var keys []string
	rows, err := db.Conn().Query("SELECT key FROM finnhub_profile ORDER BY key")
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var k string
		require.NoError(t, rows.Scan(&k))
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"AAPL"}, keys)

	assert.Error(t, WithTransaction(nil, func(*sql.Tx) error { return nil }))
}

func TestHealthChecksAndStats(t *testing.T) {
	db := newTestDB(t, "earnings", ProfileStandard)
	require.NoError(t, db.Migrate())

	ctx := context.Background()
	assert.NoError(t, db.QuickCheck(ctx))
	assert.NoError(t, db.HealthCheck(ctx))

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Greater(t, stats.PageCount, int64(0))
	assert.Greater(t, stats.PageSize, int64(0))
}
