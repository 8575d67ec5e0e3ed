package clientdata

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupJobName(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())
	assert.Equal(t, "client_data_cleanup", job.Name())
}

func TestCleanupJobRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())

	now := time.Now()
	expiredAt := now.Add(-time.Hour).Unix()
	freshAt := now.Add(time.Hour).Unix()

	insertExpiredAndFresh(t, db, TableFinnhubCalendar, expiredAt, freshAt)
	insertExpiredAndFresh(t, db, TablePolygonPrevClose, expiredAt, freshAt)
	insertExpiredAndFresh(t, db, TableBenzingaGuidance, expiredAt, freshAt)

	assert.Equal(t, 6, countRows(t, db))

	require.NoError(t, job.Run())

	assert.Equal(t, 3, countRows(t, db), "only fresh entries remain")
}

func TestCleanupJobRun_EmptyTables(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())
	assert.NoError(t, job.Run())
}

func TestCleanupJobRun_MissingTableFails(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.Exec("DROP TABLE polygon_snapshot")
	require.NoError(t, err)

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())
	assert.Error(t, job.Run())
}

func insertExpiredAndFresh(t *testing.T, db *sql.DB, table string, expiredAt, freshAt int64) {
	t.Helper()

	ctx := context.Background()
	_, err := db.ExecContext(ctx, "INSERT INTO "+table+" (key, data, expires_at) VALUES (?, ?, ?)", "expired", "{}", expiredAt)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO "+table+" (key, data, expires_at) VALUES (?, ?, ?)", "fresh", "{}", freshAt)
	require.NoError(t, err)
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()

	total := 0
	for _, table := range AllTables {
		var n int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
		total += n
	}
	return total
}
