package pipeline

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/boroughlab/incident-cli/internal/model"
)

// Centroids computes the representative label point of each borough
// polygon: the planar area-weighted centroid across the multipolygon's
// parts, holes subtracted. The result is deterministic for identical
// geometry; display exactness is not required.
func Centroids(shapes []model.BoroughShape) ([]model.Centroid, error) {
	centroids := make([]model.Centroid, 0, len(shapes))
	for _, s := range shapes {
		x, y, err := multiPolygonCentroid(s.Geometry)
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: centroid for %s", s.Borough)
		}
		centroids = append(centroids, model.Centroid{Borough: s.Borough, Lon: x, Lat: y})
	}
	return centroids, nil
}

// ChoroplethJoin joins borough polygons with their normalized rates on the
// canonical borough key. Polygons with no matching rate are excluded, not
// zero-filled: absence of population data is not a zero rate.
func ChoroplethJoin(shapes []model.BoroughShape, rates []model.NormalizedRate) []model.ChoroplethRegion {
	rateByKey := make(map[string]model.NormalizedRate, len(rates))
	for _, r := range rates {
		rateByKey[r.Borough.Key()] = r
	}

	var regions []model.ChoroplethRegion
	var misses []string

	for _, s := range shapes {
		r, ok := rateByKey[s.Borough.Key()]
		if !ok {
			misses = append(misses, s.Borough.String())
			continue
		}
		regions = append(regions, model.ChoroplethRegion{
			Borough:     s.Borough,
			Geometry:    s.Geometry,
			Count:       r.Count,
			Population:  r.Population,
			RatePer100k: r.RatePer100k,
		})
	}

	if len(misses) > 0 {
		zap.L().Warn("pipeline: boroughs excluded from choropleth join",
			zap.Strings("boroughs", misses),
		)
	}

	return regions
}

// multiPolygonCentroid accumulates the shoelace centroid over every part,
// subtracting interior rings.
func multiPolygonCentroid(mp *geom.MultiPolygon) (x, y float64, err error) {
	if mp == nil || mp.NumPolygons() == 0 {
		return 0, 0, eris.New("empty geometry")
	}

	var sumX, sumY, sumArea float64
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		for j := 0; j < poly.NumLinearRings(); j++ {
			cx, cy, area := ringCentroid(poly.LinearRing(j))
			if j > 0 {
				area = -area // hole
			}
			sumX += cx * area
			sumY += cy * area
			sumArea += area
		}
	}

	if math.Abs(sumArea) < 1e-12 {
		// Degenerate geometry; fall back to the vertex mean of the first
		// outer ring so the point is still deterministic.
		return vertexMean(mp.Polygon(0).LinearRing(0))
	}

	return sumX / sumArea, sumY / sumArea, nil
}

// ringCentroid computes the shoelace centroid and absolute area of one ring.
func ringCentroid(ring *geom.LinearRing) (cx, cy, area float64) {
	coords := ring.FlatCoords()
	stride := ring.Stride()
	n := len(coords) / stride
	if n < 3 {
		return 0, 0, 0
	}

	var a, sx, sy float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		x0, y0 := coords[i*stride], coords[i*stride+1]
		x1, y1 := coords[j*stride], coords[j*stride+1]
		cross := x0*y1 - x1*y0
		a += cross
		sx += (x0 + x1) * cross
		sy += (y0 + y1) * cross
	}
	a /= 2
	if math.Abs(a) < 1e-12 {
		return 0, 0, 0
	}

	return sx / (6 * a), sy / (6 * a), math.Abs(a)
}

func vertexMean(ring *geom.LinearRing) (x, y float64, err error) {
	coords := ring.FlatCoords()
	stride := ring.Stride()
	n := len(coords) / stride
	if n == 0 {
		return 0, 0, eris.New("empty ring")
	}
	for i := 0; i < n; i++ {
		x += coords[i*stride]
		y += coords[i*stride+1]
	}
	return x / float64(n), y / float64(n), nil
}
