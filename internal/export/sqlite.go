package export

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/boroughlab/incident-cli/internal/classify"
	"github.com/boroughlab/incident-cli/internal/pipeline"
)

// SQLiteSink persists runs to a local SQLite file via modernc.org/sqlite.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the SQLite database at path, configures WAL
// mode, and applies the schema.
func NewSQLite(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "export: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "export: sqlite exec %s", pragma)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "export: sqlite migrate")
	}
	return &SQLiteSink{db: db}, nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id                      TEXT PRIMARY KEY,
	generated_at            DATETIME NOT NULL,
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
	accuracy                REAL,
	sensitivity             REAL,
	specificity             REAL
);

CREATE TABLE IF NOT EXISTS borough_rates (
	run_id         TEXT NOT NULL REFERENCES runs(id),
	borough        TEXT NOT NULL,
	incident_count INTEGER NOT NULL,
	population     INTEGER NOT NULL,
	rate_per_100k  REAL NOT NULL,
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
	day      TEXT NOT NULL,
	borough  TEXT NOT NULL,
	occurred INTEGER NOT NULL,
	PRIMARY KEY (run_id, day, borough)
);

CREATE TABLE IF NOT EXISTS centroids (
	run_id  TEXT NOT NULL REFERENCES runs(id),
	borough TEXT NOT NULL,
	lon     REAL NOT NULL,
	lat     REAL NOT NULL,
	PRIMARY KEY (run_id, borough)
);

CREATE INDEX IF NOT EXISTS idx_daily_occurrences_day ON daily_occurrences(day);
CREATE INDEX IF NOT EXISTS idx_monthly_counts_month ON monthly_counts(month);
`

const sqliteDayLayout = "2006-01-02"

// Write persists one run inside a single transaction. Re-exporting the
// same run id replaces its rows.
func (s *SQLiteSink) Write(ctx context.Context, result *pipeline.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "export: sqlite begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (
			id, generated_at, rows_read, rows_kept,
			dropped_missing_date, dropped_missing_coords, dropped_unknown_borough,
			train_size, test_size,
			true_positives, true_negatives, false_positives, false_negatives,
			accuracy, sensitivity, specificity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
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
		return eris.Wrap(err, "export: sqlite insert run")
	}

	for _, r := range result.Rates {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO borough_rates (run_id, borough, incident_count, population, rate_per_100k) VALUES (?, ?, ?, ?, ?)`,
			result.RunID, r.Borough.String(), r.Count, r.Population, r.RatePer100k,
		); err != nil {
			return eris.Wrap(err, "export: sqlite insert rate")
		}
	}

	for _, m := range result.Monthly {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO monthly_counts (run_id, month, borough, incident_count) VALUES (?, ?, ?, ?)`,
			result.RunID, m.Month, m.Borough.String(), m.Count,
		); err != nil {
			return eris.Wrap(err, "export: sqlite insert monthly count")
		}
	}

	for _, o := range result.Occurrences {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO daily_occurrences (run_id, day, borough, occurred) VALUES (?, ?, ?, ?)`,
			result.RunID, o.Date.Format(sqliteDayLayout), o.Borough.String(), o.Occurred,
		); err != nil {
			return eris.Wrap(err, "export: sqlite insert occurrence")
		}
	}

	for _, c := range result.Centroids {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO centroids (run_id, borough, lon, lat) VALUES (?, ?, ?, ?)`,
			result.RunID, c.Borough.String(), c.Lon, c.Lat,
		); err != nil {
			return eris.Wrap(err, "export: sqlite insert centroid")
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "export: sqlite commit")
	}
	return nil
}

// Close closes the database handle.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// ratioValue maps an undefined ratio to SQL NULL, never to zero.
func ratioValue(r classify.Ratio) any {
	if !r.Defined {
		return nil
	}
	return r.Value
}
