package ingest

import (
	"path/filepath"
	"strings"
	"testing"

	shp "github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boroughlab/incident-cli/internal/model"
)

const boroughGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"boro_name": "Bronx"},
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[4,0],[4,4],[0,4],[0,0]]]}
    },
    {
      "type": "Feature",
      "properties": {"boro_name": "staten island"},
      "geometry": {"type": "MultiPolygon", "coordinates": [[[[10,10],[12,10],[12,12],[10,12],[10,10]]]]}
    }
  ]
}`

func TestLoadBoroughShapesGeoJSON(t *testing.T) {
	shapes, err := LoadBoroughShapesGeoJSON(strings.NewReader(boroughGeoJSON))
	require.NoError(t, err)
	require.Len(t, shapes, 2)

	assert.Equal(t, model.Bronx, shapes[0].Borough)
	require.NotNil(t, shapes[0].Geometry)
	assert.Equal(t, 1, shapes[0].Geometry.NumPolygons())

	assert.Equal(t, model.StatenIsland, shapes[1].Borough)
	assert.Equal(t, 1, shapes[1].Geometry.NumPolygons())
}

func TestLoadBoroughShapesGeoJSONDuplicate(t *testing.T) {
	dup := `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "QUEENS"}, "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}},
    {"type": "Feature", "properties": {"name": "Queens"}, "geometry": {"type": "Polygon", "coordinates": [[[2,2],[3,2],[3,3],[2,2]]]}}
  ]
}`
	_, err := LoadBoroughShapesGeoJSON(strings.NewReader(dup))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadBoroughShapesGeoJSONUnknownName(t *testing.T) {
	bad := `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "HOBOKEN"}, "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}}
  ]
}`
	_, err := LoadBoroughShapesGeoJSON(strings.NewReader(bad))
	assert.Error(t, err)
}

func writeTestShapefile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "boroughs.shp")
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)

	w.SetFields([]shp.Field{shp.StringField("BORO_NAME", 25)})

	square := func(x, y, size float64) *shp.Polygon {
		points := []shp.Point{
			{X: x, Y: y}, {X: x, Y: y + size}, {X: x + size, Y: y + size}, {X: x + size, Y: y}, {X: x, Y: y},
		}
		return &shp.Polygon{
			Box:       shp.Box{MinX: x, MinY: y, MaxX: x + size, MaxY: y + size},
			NumParts:  1,
			NumPoints: int32(len(points)),
			Parts:     []int32{0},
			Points:    points,
		}
	}

	n := w.Write(square(0, 0, 2))
	w.WriteAttribute(int(n), 0, "MANHATTAN")
	n = w.Write(square(5, 5, 3))
	w.WriteAttribute(int(n), 0, "Brooklyn")

	w.Close()
	return path
}

func TestLoadBoroughShapesShapefile(t *testing.T) {
	path := writeTestShapefile(t)

	shapes, err := LoadBoroughShapesShapefile(path, "")
	require.NoError(t, err)
	require.Len(t, shapes, 2)

	assert.Equal(t, model.Manhattan, shapes[0].Borough)
	assert.Equal(t, model.Brooklyn, shapes[1].Borough)
	assert.Equal(t, 1, shapes[0].Geometry.NumPolygons())
}

func TestLoadBoroughShapesShapefileBadAttr(t *testing.T) {
	path := writeTestShapefile(t)
	_, err := LoadBoroughShapesShapefile(path, "no_such_field")
	assert.Error(t, err)
}
