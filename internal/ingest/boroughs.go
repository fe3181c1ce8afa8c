package ingest

import (
	"encoding/json"
	"io"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/boroughlab/incident-cli/internal/model"
)

// boroughNameAttrs are the attribute names tried, in order, when locating
// the borough name field in a polygon source.
var boroughNameAttrs = []string{"boro_name", "boroname", "borough", "name"}

// LoadBoroughShapesGeoJSON parses a GeoJSON FeatureCollection of borough
// polygons. Each feature must carry a borough name property and a Polygon
// or MultiPolygon geometry.
func LoadBoroughShapesGeoJSON(r io.Reader) ([]model.BoroughShape, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read borough geojson")
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "ingest: parse borough geojson")
	}

	shapes := make([]model.BoroughShape, 0, len(fc.Features))
	seen := make(map[model.Borough]bool, 5)

	for i, feat := range fc.Features {
		name := nameProperty(feat.Properties)
		if name == "" {
			return nil, eris.Errorf("ingest: borough feature %d has no name property", i)
		}

		borough, err := model.ParseBorough(name)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: borough feature %d", i)
		}
		if seen[borough] {
			return nil, eris.Errorf("ingest: duplicate borough polygon for %s", borough)
		}
		seen[borough] = true

		mp, err := toMultiPolygon(feat.Geometry)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: borough %s geometry", borough)
		}

		shapes = append(shapes, model.BoroughShape{Borough: borough, Geometry: mp})
	}

	zap.L().Info("ingest: borough polygons loaded", zap.Int("count", len(shapes)))
	return shapes, nil
}

// LoadBoroughShapesShapefile reads borough polygons from a shapefile on
// disk. nameAttr overrides the attribute holding the borough name; when
// empty the conventional names are tried.
func LoadBoroughShapesShapefile(shpPath string, nameAttr string) ([]model.BoroughShape, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	// Build field name → index map.
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[normalizeCol(name)] = i
	}

	nameIdx := -1
	if nameAttr != "" {
		idx, ok := fieldIdx[normalizeCol(nameAttr)]
		if !ok {
			return nil, eris.Errorf("ingest: shapefile has no attribute %q", nameAttr)
		}
		nameIdx = idx
	} else {
		for _, attr := range boroughNameAttrs {
			if idx, ok := fieldIdx[normalizeCol(attr)]; ok {
				nameIdx = idx
				break
			}
		}
		if nameIdx < 0 {
			return nil, eris.New("ingest: shapefile has no recognizable borough name attribute")
		}
	}

	var shapes []model.BoroughShape
	seen := make(map[model.Borough]bool, 5)

	for reader.Next() {
		n, shape := reader.Shape()

		raw := strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00"))
		borough, err := model.ParseBorough(raw)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: shapefile record %d", n)
		}
		if seen[borough] {
			return nil, eris.Errorf("ingest: duplicate borough polygon for %s", borough)
		}
		seen[borough] = true

		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			return nil, eris.Errorf("ingest: shapefile record %d for %s is not a polygon", n, borough)
		}

		mp := polygonToMultiPolygon(poly)
		if mp == nil {
			return nil, eris.Errorf("ingest: shapefile record %d for %s has empty geometry", n, borough)
		}

		shapes = append(shapes, model.BoroughShape{Borough: borough, Geometry: mp})
	}

	zap.L().Info("ingest: borough polygons loaded", zap.Int("count", len(shapes)))
	return shapes, nil
}

// nameProperty extracts the borough name from GeoJSON feature properties.
func nameProperty(props map[string]interface{}) string {
	for key, val := range props {
		for _, attr := range boroughNameAttrs {
			if normalizeCol(key) == normalizeCol(attr) {
				if s, ok := val.(string); ok {
					return s
				}
			}
		}
	}
	return ""
}

// toMultiPolygon coerces a GeoJSON geometry to a MultiPolygon.
func toMultiPolygon(g geom.T) (*geom.MultiPolygon, error) {
	switch geometry := g.(type) {
	case *geom.MultiPolygon:
		return geometry, nil
	case *geom.Polygon:
		mp := geom.NewMultiPolygon(geom.XY)
		if err := mp.Push(geometry); err != nil {
			return nil, eris.Wrap(err, "ingest: push polygon")
		}
		return mp, nil
	default:
		return nil, eris.Errorf("ingest: unsupported geometry type %T", g)
	}
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("ingest: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}

		if err := mp.Push(poly); err != nil {
			zap.L().Debug("ingest: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
