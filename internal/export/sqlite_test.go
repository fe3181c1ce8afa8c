package export

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSink(t *testing.T) *SQLiteSink {
	t.Helper()
	sink, err := NewSQLite(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })
	return sink
}

func TestSQLiteWrite(t *testing.T) {
	sink := openTestSink(t)
	result := testResult()

	require.NoError(t, sink.Write(context.Background(), result))

	var rates, monthly, daily, centroids int
	require.NoError(t, sink.db.QueryRow(`SELECT COUNT(*) FROM borough_rates WHERE run_id = ?`, result.RunID).Scan(&rates))
	require.NoError(t, sink.db.QueryRow(`SELECT COUNT(*) FROM monthly_counts WHERE run_id = ?`, result.RunID).Scan(&monthly))
	require.NoError(t, sink.db.QueryRow(`SELECT COUNT(*) FROM daily_occurrences WHERE run_id = ?`, result.RunID).Scan(&daily))
	require.NoError(t, sink.db.QueryRow(`SELECT COUNT(*) FROM centroids WHERE run_id = ?`, result.RunID).Scan(&centroids))

	assert.Equal(t, 2, rates)
	assert.Equal(t, 2, monthly)
	assert.Equal(t, 4, daily)
	assert.Equal(t, 2, centroids)

	var kept int
	var accuracy, specificity sql.NullFloat64
	require.NoError(t, sink.db.QueryRow(
		`SELECT rows_kept, accuracy, specificity FROM runs WHERE id = ?`, result.RunID,
	).Scan(&kept, &accuracy, &specificity))

	assert.Equal(t, 17, kept)
	require.True(t, accuracy.Valid)
	assert.InDelta(t, 0.75, accuracy.Float64, 1e-9)
	assert.False(t, specificity.Valid, "undefined ratio must persist as NULL")
}

func TestSQLiteWriteIdempotent(t *testing.T) {
	sink := openTestSink(t)
	result := testResult()

	require.NoError(t, sink.Write(context.Background(), result))
	require.NoError(t, sink.Write(context.Background(), result))

	var runs, rates int
	require.NoError(t, sink.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&runs))
	require.NoError(t, sink.db.QueryRow(`SELECT COUNT(*) FROM borough_rates`).Scan(&rates))
	assert.Equal(t, 1, runs)
	assert.Equal(t, 2, rates)
}

func TestSQLiteRateRoundTrip(t *testing.T) {
	sink := openTestSink(t)
	result := testResult()
	require.NoError(t, sink.Write(context.Background(), result))

	var count int
	var population int64
	var rate float64
	require.NoError(t, sink.db.QueryRow(
		`SELECT incident_count, population, rate_per_100k FROM borough_rates WHERE run_id = ? AND borough = ?`,
		result.RunID, "BRONX",
	).Scan(&count, &population, &rate))

	assert.Equal(t, 10, count)
	assert.Equal(t, int64(1472654), population)
	assert.InDelta(t, 0.679, rate, 1e-9)
}
