package model

import (
	"time"

	"github.com/twpayne/go-geom"
)

// BoroughShape pairs a borough with its boundary geometry.
type BoroughShape struct {
	Borough  Borough
	Geometry *geom.MultiPolygon
}

// PopulationEntry is one row of the borough population reference table.
type PopulationEntry struct {
	Borough    Borough
	Population int64
}

// AggregateCount is a per-borough incident total.
type AggregateCount struct {
	Borough Borough `json:"borough"`
	Count   int     `json:"count"`
}

// MonthlyCount is a per-(month, borough) incident total.
type MonthlyCount struct {
	Bucket  TimeBucket `json:"-"`
	Month   string     `json:"month"`
	Borough Borough    `json:"borough"`
	Count   int        `json:"count"`
}

// NormalizedRate joins a borough total against its population.
type NormalizedRate struct {
	Borough     Borough `json:"borough"`
	Count       int     `json:"count"`
	Population  int64   `json:"population"`
	RatePer100k float64 `json:"rate_per_100k"`
}

// DailyOccurrence is one row of the dense (date, borough) occurrence table.
// Every date in the analysis range appears once per borough, including
// dates with no incidents.
type DailyOccurrence struct {
	Date     time.Time `json:"date"`
	Borough  Borough   `json:"borough"`
	Occurred bool      `json:"occurred"`
}

// Centroid is the representative interior point of a borough polygon,
// used for label placement.
type Centroid struct {
	Borough Borough `json:"borough"`
	Lon     float64 `json:"lon"`
	Lat     float64 `json:"lat"`
}

// ChoroplethRegion is a borough polygon annotated with its normalized rate,
// ready for choropleth rendering by an external consumer.
type ChoroplethRegion struct {
	Borough     Borough           `json:"borough"`
	Geometry    *geom.MultiPolygon `json:"-"`
	Count       int               `json:"count"`
	Population  int64             `json:"population"`
	RatePer100k float64           `json:"rate_per_100k"`
}
