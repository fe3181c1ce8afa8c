package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/boroughlab/incident-cli/internal/model"
)

func multiPolygon(t *testing.T, coords [][][]geom.Coord) *geom.MultiPolygon {
	t.Helper()
	mp, err := geom.NewMultiPolygon(geom.XY).SetCoords(coords)
	require.NoError(t, err)
	return mp
}

func square(t *testing.T, x0, y0, x1, y1 float64) *geom.MultiPolygon {
	t.Helper()
	return multiPolygon(t, [][][]geom.Coord{{
		{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}},
	}})
}

func TestCentroidsSquare(t *testing.T) {
	shapes := []model.BoroughShape{
		{Borough: model.Queens, Geometry: square(t, 0, 0, 4, 4)},
	}

	centroids, err := Centroids(shapes)
	require.NoError(t, err)

	require.Len(t, centroids, 1)
	assert.Equal(t, model.Queens, centroids[0].Borough)
	assert.InDelta(t, 2.0, centroids[0].Lon, 1e-9)
	assert.InDelta(t, 2.0, centroids[0].Lat, 1e-9)
}

func TestCentroidsMultiPart(t *testing.T) {
	// Two equal squares; centroid lands midway between their centers.
	mp := multiPolygon(t, [][][]geom.Coord{
		{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}},
		{{{10, 0}, {12, 0}, {12, 2}, {10, 2}, {10, 0}}},
	})
	shapes := []model.BoroughShape{{Borough: model.Bronx, Geometry: mp}}

	centroids, err := Centroids(shapes)
	require.NoError(t, err)

	require.Len(t, centroids, 1)
	assert.InDelta(t, 6.0, centroids[0].Lon, 1e-9)
	assert.InDelta(t, 1.0, centroids[0].Lat, 1e-9)
}

func TestCentroidsHoleSubtracted(t *testing.T) {
	// A 4×4 square with a unit hole near the lower-left corner pulls the
	// centroid toward the opposite corner.
	mp := multiPolygon(t, [][][]geom.Coord{{
		{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}},
		{{1, 1}, {2, 1}, {2, 2}, {1, 2}, {1, 1}},
	}})
	shapes := []model.BoroughShape{{Borough: model.Manhattan, Geometry: mp}}

	centroids, err := Centroids(shapes)
	require.NoError(t, err)

	require.Len(t, centroids, 1)
	want := (16*2.0 - 1*1.5) / 15.0
	assert.InDelta(t, want, centroids[0].Lon, 1e-9)
	assert.InDelta(t, want, centroids[0].Lat, 1e-9)
}

func TestCentroidsEmptyGeometry(t *testing.T) {
	shapes := []model.BoroughShape{{Borough: model.Bronx, Geometry: geom.NewMultiPolygon(geom.XY)}}

	_, err := Centroids(shapes)
	assert.Error(t, err)
}

func TestChoroplethJoin(t *testing.T) {
	shapes := []model.BoroughShape{
		{Borough: model.Bronx, Geometry: square(t, 0, 0, 1, 1)},
		{Borough: model.Queens, Geometry: square(t, 2, 2, 3, 3)},
	}
	rates := []model.NormalizedRate{
		{Borough: model.Bronx, Count: 42, Population: 100000, RatePer100k: 42},
	}

	regions := ChoroplethJoin(shapes, rates)

	// Queens has no rate row and is excluded, not zero-filled.
	require.Len(t, regions, 1)
	assert.Equal(t, model.Bronx, regions[0].Borough)
	assert.Equal(t, 42, regions[0].Count)
	assert.InDelta(t, 42.0, regions[0].RatePer100k, 1e-9)
	assert.Same(t, shapes[0].Geometry, regions[0].Geometry)
}
