package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boroughlab/incident-cli/internal/config"
	"github.com/boroughlab/incident-cli/internal/model"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func geojsonSquare(name string, x0, y0 float64) string {
	return fmt.Sprintf(`{
		"type": "Feature",
		"properties": {"boro_name": %q},
		"geometry": {"type": "Polygon", "coordinates": [[[%f,%f],[%f,%f],[%f,%f],[%f,%f],[%f,%f]]]}
	}`, name, x0, y0, x0+1, y0, x0+1, y0+1, x0, y0+1, x0, y0)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	incidents := "OCCUR_DATE,BORO,Latitude,Longitude\n"
	for day := 1; day <= 10; day++ {
		incidents += fmt.Sprintf("01/%02d/2024,BRONX,40.84,-73.86\n", day)
		if day%2 == 0 {
			incidents += fmt.Sprintf("01/%02d/2024,BROOKLYN,40.67,-73.94\n", day)
		}
		if day%5 == 0 {
			incidents += fmt.Sprintf("01/%02d/2024,QUEENS,40.72,-73.79\n", day)
		}
	}
	// Row-level defects: an unparseable date and a missing coordinate.
	incidents += "not-a-date,BRONX,40.84,-73.86\n"
	incidents += "01/03/2024,QUEENS,,\n"

	boroughs := fmt.Sprintf(`{"type": "FeatureCollection", "features": [%s,%s,%s]}`,
		geojsonSquare("Bronx", 0, 0),
		geojsonSquare("Brooklyn", 2, 0),
		geojsonSquare("Queens", 4, 0),
	)

	population := "borough,population\nBronx,1472654\nBrooklyn,2736074\nQueens,2405464\n"

	return &config.Config{
		Sources: config.SourcesConfig{
			Incidents:  writeFixture(t, dir, "incidents.csv", incidents),
			Boroughs:   writeFixture(t, dir, "boroughs.geojson", boroughs),
			Population: writeFixture(t, dir, "population.csv", population),
		},
		Split: config.SplitConfig{TrainFraction: 0.7, Seed: 1, Threshold: 0.5},
	}
}

func TestPipelineRun(t *testing.T) {
	p, err := New(testConfig(t))
	require.NoError(t, err)

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.False(t, result.GeneratedAt.IsZero())

	// 10 Bronx + 5 Brooklyn + 2 Queens clean rows plus 2 defective ones.
	assert.Equal(t, 19, result.Load.RowsRead)
	assert.Equal(t, 1, result.Drops.MissingDate)
	assert.Equal(t, 1, result.Drops.MissingCoords)
	assert.Equal(t, 17, result.CleanCount)

	require.Len(t, result.Totals, 3)
	sum := 0
	for _, tc := range result.Totals {
		sum += tc.Count
	}
	assert.Equal(t, result.CleanCount, sum)

	require.Len(t, result.Rates, 3)
	assert.Empty(t, result.Unmatched)
	for _, r := range result.Rates {
		assert.Positive(t, r.RatePer100k)
	}

	assert.Len(t, result.Centroids, 3)
	assert.Len(t, result.Choropleth, 3)

	// 10 inferred days, dense across all five boroughs.
	assert.Len(t, result.Occurrences, 10*len(model.AllBoroughs()))

	require.NotNil(t, result.Model)
	require.NotNil(t, result.Evaluation)
	assert.Equal(t, len(result.Occurrences), result.Evaluation.TrainSize+result.Evaluation.TestSize)
	assert.Equal(t, result.Evaluation.TestSize, result.Evaluation.Matrix.Total())
}

func TestPipelineRunReproducible(t *testing.T) {
	cfg := testConfig(t)

	p1, err := New(cfg)
	require.NoError(t, err)
	r1, err := p1.Run(context.Background())
	require.NoError(t, err)

	p2, err := New(cfg)
	require.NoError(t, err)
	r2, err := p2.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, r1.Totals, r2.Totals)
	assert.Equal(t, r1.Rates, r2.Rates)
	assert.Equal(t, r1.Monthly, r2.Monthly)
	assert.Equal(t, r1.Evaluation.Matrix, r2.Evaluation.Matrix)
	assert.Equal(t, r1.Model.Coef, r2.Model.Coef)
}

func TestPipelineRunMissingSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sources.Incidents = filepath.Join(t.TempDir(), "absent.csv")

	p, err := New(cfg)
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incidents")
}
