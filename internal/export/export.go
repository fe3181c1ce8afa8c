// Package export persists finished pipeline runs to downstream sinks.
// Sinks are a write-only boundary for the rendering and reporting tools
// that consume the tables; the pipeline itself never reads them back.
package export

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/boroughlab/incident-cli/internal/config"
	"github.com/boroughlab/incident-cli/internal/pipeline"
)

// Sink writes one run's result tables to a destination.
type Sink interface {
	Write(ctx context.Context, result *pipeline.Result) error
	Close() error
}

// ForConfig builds the sink named by the export driver.
func ForConfig(ctx context.Context, cfg config.ExportConfig) (Sink, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.SQLitePath)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	case "xlsx":
		return NewXLSX(cfg.XLSXPath), nil
	default:
		return nil, eris.Errorf("export: unknown driver %q", cfg.Driver)
	}
}
