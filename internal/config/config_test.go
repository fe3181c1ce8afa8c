package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Run from a directory with no config.yaml so defaults apply.
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.7, cfg.Split.TrainFraction, 1e-9)
	assert.Equal(t, int64(1), cfg.Split.Seed)
	assert.InDelta(t, 0.5, cfg.Split.Threshold, 1e-9)
	assert.Equal(t, "sqlite", cfg.Export.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	manifest := `
sources:
  defaults:
    format: csv
  incidents:
    id: incidents
    url: https://data.example.org/incidents.csv
  boroughs:
    id: boroughs
    url: ./testdata/boroughs.geojson
    format: geojson
  population:
    id: population
    url: ./testdata/population.xlsx
    format: xlsx
    sheet: Totals
`
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)

	// Default format applies only where omitted.
	assert.Equal(t, "csv", m.Incidents.Format)
	assert.Equal(t, "geojson", m.Boroughs.Format)
	assert.Equal(t, "xlsx", m.Population.Format)
	assert.Equal(t, "Totals", m.Population.Sheet)
	assert.Equal(t, "https://data.example.org/incidents.csv", m.Incidents.URL)
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestManifestForWithoutFile(t *testing.T) {
	c := SourcesConfig{
		Incidents:  "incidents.csv",
		Boroughs:   "boroughs.geojson",
		Population: "population.csv",
	}
	m, err := c.ManifestFor()
	require.NoError(t, err)
	assert.Equal(t, "csv", m.Incidents.Format)
	assert.Equal(t, "geojson", m.Boroughs.Format)
	assert.Equal(t, "csv", m.Population.Format)
}
