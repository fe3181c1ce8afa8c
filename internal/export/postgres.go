package export

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/boroughlab/incident-cli/internal/db"
	"github.com/boroughlab/incident-cli/internal/pipeline"
)

// PostgresSink persists runs to PostgreSQL. Summary tables go through
// BulkUpsert so a re-exported run replaces itself; the dense occurrence
// table goes through COPY after clearing the run's previous rows.
type PostgresSink struct {
	pool db.Pool
}

// NewPostgres connects to the database and applies the schema.
func NewPostgres(ctx context.Context, url string) (*PostgresSink, error) {
	pool, err := db.Connect(ctx, url)
	if err != nil {
		return nil, err
	}
	s := &PostgresSink{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresWithPool wraps an existing pool, for tests.
func NewPostgresWithPool(pool db.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id                      TEXT PRIMARY KEY,
	generated_at            TIMESTAMPTZ NOT NULL,
	rows_read               INTEGER NOT NULL,
	rows_kept               INTEGER NOT NULL,
	dropped_missing_date    INTEGER NOT NULL,
	dropped_missing_coords  INTEGER NOT NULL,
	dropped_unknown_borough INTEGER NOT NULL,
	train_size              INTEGER NOT NULL,
	test_size               INTEGER NOT NULL,
	true_positives          INTEGER NOT NULL,
	true_negatives          INTEGER NOT NULL,
	false_positives         INTEGER NOT NULL,
	false_negatives         INTEGER NOT NULL,
	accuracy                DOUBLE PRECISION,
	sensitivity             DOUBLE PRECISION,
	specificity             DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS borough_rates (
	run_id         TEXT NOT NULL REFERENCES runs(id),
	borough        TEXT NOT NULL,
	incident_count INTEGER NOT NULL,
	population     BIGINT NOT NULL,
	rate_per_100k  DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, borough)
);

CREATE TABLE IF NOT EXISTS monthly_counts (
	run_id         TEXT NOT NULL REFERENCES runs(id),
	month          TEXT NOT NULL,
	borough        TEXT NOT NULL,
	incident_count INTEGER NOT NULL,
	PRIMARY KEY (run_id, month, borough)
);

CREATE TABLE IF NOT EXISTS daily_occurrences (
	run_id   TEXT NOT NULL REFERENCES runs(id),
	day      DATE NOT NULL,
	borough  TEXT NOT NULL,
	occurred BOOLEAN NOT NULL,
	PRIMARY KEY (run_id, day, borough)
);

CREATE TABLE IF NOT EXISTS centroids (
	run_id  TEXT NOT NULL REFERENCES runs(id),
	borough TEXT NOT NULL,
	lon     DOUBLE PRECISION NOT NULL,
	lat     DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, borough)
);
`

func (s *PostgresSink) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return eris.Wrap(err, "export: postgres migrate")
	}
	return nil
}

// Write persists one run.
func (s *PostgresSink) Write(ctx context.Context, result *pipeline.Result) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO runs (
			id, generated_at, rows_read, rows_kept,
			dropped_missing_date, dropped_missing_coords, dropped_unknown_borough,
			train_size, test_size,
			true_positives, true_negatives, false_positives, false_negatives,
			accuracy, sensitivity, specificity
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET generated_at = EXCLUDED.generated_at`,
		result.RunID, result.GeneratedAt, result.Load.RowsRead, result.CleanCount,
		result.Drops.MissingDate, result.Drops.MissingCoords, result.Drops.UnknownBorough,
		result.Evaluation.TrainSize, result.Evaluation.TestSize,
		result.Evaluation.Matrix.TruePositives, result.Evaluation.Matrix.TrueNegatives,
		result.Evaluation.Matrix.FalsePositives, result.Evaluation.Matrix.FalseNegatives,
		ratioValue(result.Evaluation.Accuracy),
		ratioValue(result.Evaluation.Sensitivity),
		ratioValue(result.Evaluation.Specificity),
	)
	if err != nil {
		return eris.Wrap(err, "export: postgres insert run")
	}

	rateRows := make([][]any, 0, len(result.Rates))
	for _, r := range result.Rates {
		rateRows = append(rateRows, []any{result.RunID, r.Borough.String(), r.Count, r.Population, r.RatePer100k})
	}
	if _, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "borough_rates",
		Columns:      []string{"run_id", "borough", "incident_count", "population", "rate_per_100k"},
		ConflictKeys: []string{"run_id", "borough"},
	}, rateRows); err != nil {
		return err
	}

	monthlyRows := make([][]any, 0, len(result.Monthly))
	for _, m := range result.Monthly {
		monthlyRows = append(monthlyRows, []any{result.RunID, m.Month, m.Borough.String(), m.Count})
	}
	if _, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "monthly_counts",
		Columns:      []string{"run_id", "month", "borough", "incident_count"},
		ConflictKeys: []string{"run_id", "month", "borough"},
	}, monthlyRows); err != nil {
		return err
	}

	centroidRows := make([][]any, 0, len(result.Centroids))
	for _, c := range result.Centroids {
		centroidRows = append(centroidRows, []any{result.RunID, c.Borough.String(), c.Lon, c.Lat})
	}
	if _, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "centroids",
		Columns:      []string{"run_id", "borough", "lon", "lat"},
		ConflictKeys: []string{"run_id", "borough"},
	}, centroidRows); err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, `DELETE FROM daily_occurrences WHERE run_id = $1`, result.RunID); err != nil {
		return eris.Wrap(err, "export: postgres clear occurrences")
	}
	occurrenceRows := make([][]any, 0, len(result.Occurrences))
	for _, o := range result.Occurrences {
		occurrenceRows = append(occurrenceRows, []any{result.RunID, o.Date, o.Borough.String(), o.Occurred})
	}
	n, err := db.CopyFrom(ctx, s.pool, "daily_occurrences",
		[]string{"run_id", "day", "borough", "occurred"}, occurrenceRows)
	if err != nil {
		return err
	}

	zap.L().Info("export: postgres run written",
		zap.String("run_id", result.RunID),
		zap.Int("rates", len(rateRows)),
		zap.Int64("occurrences", n),
	)
	return nil
}

// Close releases the pool.
func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}
