package pipeline

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/boroughlab/incident-cli/internal/classify"
	"github.com/boroughlab/incident-cli/internal/config"
	"github.com/boroughlab/incident-cli/internal/fetcher"
	"github.com/boroughlab/incident-cli/internal/ingest"
	"github.com/boroughlab/incident-cli/internal/model"
)

// Pipeline runs one batch pass over a static incident snapshot: load,
// clean, aggregate, normalize, enrich, classify. Every step is a pure
// function over the previous step's table; nothing is recomputed
// incrementally or persisted between runs.
type Pipeline struct {
	cfg      *config.Config
	manifest *config.Manifest
}

// Result is the full output of one pipeline run, consumed by export
// sinks, the results server, and the narrative generator.
type Result struct {
	RunID       string                   `json:"run_id"`
	GeneratedAt time.Time                `json:"generated_at"`
	Load        ingest.LoadReport        `json:"load_report"`
	Drops       DropReport               `json:"drop_report"`
	CleanCount  int                      `json:"clean_count"`
	Totals      []model.AggregateCount   `json:"totals"`
	Monthly     []model.MonthlyCount     `json:"monthly"`
	Rates       []model.NormalizedRate   `json:"rates"`
	Unmatched   []string                 `json:"unmatched_boroughs,omitempty"`
	Centroids   []model.Centroid         `json:"centroids"`
	Choropleth  []model.ChoroplethRegion `json:"choropleth"`
	Occurrences []model.DailyOccurrence  `json:"-"`
	Model       *classify.Model          `json:"model"`
	Evaluation  *classify.Evaluation     `json:"evaluation"`
}

// New builds a Pipeline from configuration.
func New(cfg *config.Config) (*Pipeline, error) {
	manifest, err := cfg.Sources.ManifestFor()
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: resolve sources")
	}
	return &Pipeline{cfg: cfg, manifest: manifest}, nil
}

// Run executes the whole pipeline as one cancellable unit. The three
// sources are fetched concurrently, all-or-nothing; a failed source
// aborts the run naming the source that failed.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
	}
	log := zap.L().With(zap.String("run_id", result.RunID))
	log.Info("pipeline: starting batch run")

	var (
		records    []model.IncidentRecord
		shapes     []model.BoroughShape
		population []model.PopulationEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, result.Load, err = p.loadIncidents(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		shapes, err = p.loadBoroughs(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		population, err = p.loadPopulation(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cleaned, drops := Clean(records)
	result.Drops = drops
	result.CleanCount = len(cleaned)
	if len(cleaned) == 0 {
		return nil, eris.New("pipeline: no usable records after cleaning")
	}

	result.Totals = BoroughTotals(cleaned)
	result.Monthly = MonthlyCounts(cleaned)

	normalized := NormalizeRates(result.Totals, population)
	result.Rates = normalized.Rates
	result.Unmatched = normalized.UnmatchedBoroughs

	centroids, err := Centroids(shapes)
	if err != nil {
		return nil, err
	}
	result.Centroids = centroids
	result.Choropleth = ChoroplethJoin(shapes, result.Rates)

	occurrences, err := DailyOccurrences(cleaned, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	result.Occurrences = occurrences

	m, eval, err := classify.Run(occurrences, classify.Options{
		TrainFraction: p.cfg.Split.TrainFraction,
		Seed:          p.cfg.Split.Seed,
		Threshold:     p.cfg.Split.Threshold,
	})
	if err != nil {
		return nil, err
	}
	result.Model = m
	result.Evaluation = eval

	log.Info("pipeline: batch run complete",
		zap.Int("clean_records", result.CleanCount),
		zap.Int("rates", len(result.Rates)),
		zap.Int("occurrence_rows", len(result.Occurrences)),
	)

	return result, nil
}

func (p *Pipeline) loadIncidents(ctx context.Context) ([]model.IncidentRecord, ingest.LoadReport, error) {
	src := p.manifest.Incidents
	rc, err := fetcher.Open(ctx, src.URL)
	if err != nil {
		return nil, ingest.LoadReport{}, eris.Wrapf(err, "pipeline: fetch source %q", src.ID)
	}
	defer rc.Close()

	records, report, err := ingest.LoadIncidents(ctx, rc)
	if err != nil {
		return nil, report, eris.Wrapf(err, "pipeline: source %q", src.ID)
	}
	return records, report, nil
}

func (p *Pipeline) loadBoroughs(ctx context.Context) ([]model.BoroughShape, error) {
	src := p.manifest.Boroughs
	switch src.Format {
	case "geojson", "":
		rc, err := fetcher.Open(ctx, src.URL)
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: fetch source %q", src.ID)
		}
		defer rc.Close()
		shapes, err := ingest.LoadBoroughShapesGeoJSON(rc)
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: source %q", src.ID)
		}
		return shapes, nil

	case "shapefile":
		path, cleanup, err := localPath(ctx, src.URL, "boroughs.shp")
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: fetch source %q", src.ID)
		}
		defer cleanup()
		shapes, err := ingest.LoadBoroughShapesShapefile(path, src.Layer)
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: source %q", src.ID)
		}
		return shapes, nil

	default:
		return nil, eris.Errorf("pipeline: source %q has unsupported format %q", src.ID, src.Format)
	}
}

func (p *Pipeline) loadPopulation(ctx context.Context) ([]model.PopulationEntry, error) {
	src := p.manifest.Population
	switch src.Format {
	case "csv", "":
		rc, err := fetcher.Open(ctx, src.URL)
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: fetch source %q", src.ID)
		}
		defer rc.Close()
		entries, err := ingest.LoadPopulationCSV(ctx, rc)
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: source %q", src.ID)
		}
		return entries, nil

	case "xlsx":
		path, cleanup, err := localPath(ctx, src.URL, "population.xlsx")
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: fetch source %q", src.ID)
		}
		defer cleanup()
		entries, err := ingest.LoadPopulationXLSX(path, src.Sheet)
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: source %q", src.ID)
		}
		return entries, nil

	default:
		return nil, eris.Errorf("pipeline: source %q has unsupported format %q", src.ID, src.Format)
	}
}

// localPath resolves a source URL to a local file path, downloading remote
// sources to a temp file. Formats whose readers need seekable files
// (shapefile, xlsx) go through here.
func localPath(ctx context.Context, rawURL, name string) (string, func(), error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return rawURL, func() {}, nil
	}
	if u.Scheme == "file" {
		return u.Path, func() {}, nil
	}

	dir, err := os.MkdirTemp("", "incident-cli-")
	if err != nil {
		return "", nil, eris.Wrap(err, "pipeline: temp dir")
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	path := filepath.Join(dir, name)
	var f fetcher.Fetcher
	switch u.Scheme {
	case "http", "https":
		f = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	case "ftp":
		f = fetcher.NewFTPFetcher(fetcher.FTPOptions{})
	default:
		cleanup()
		return "", nil, eris.Errorf("pipeline: unsupported scheme %q", u.Scheme)
	}

	if _, err := f.DownloadToFile(ctx, rawURL, path); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}
