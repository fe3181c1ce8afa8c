package model

import (
	"fmt"
	"time"
)

// IncidentRecord is one row of the raw incident table after typed parsing.
// OccurredOn, Latitude, and Longitude are nil when the source field was
// absent or failed to parse; such rows survive loading (so drops can be
// counted) and are removed by the cleaner.
type IncidentRecord struct {
	OccurredOn *time.Time
	Borough    Borough
	RawBorough string
	Latitude   *float64
	Longitude  *float64
}

// Geolocated reports whether both coordinates are present.
func (r IncidentRecord) Geolocated() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// TimeBucket is a (year, month) pair derived from an occurrence date.
type TimeBucket struct {
	Year  int
	Month time.Month
}

// BucketOf derives the time bucket for a date.
func BucketOf(t time.Time) TimeBucket {
	return TimeBucket{Year: t.Year(), Month: t.Month()}
}

// Before reports whether b is chronologically earlier than other.
func (b TimeBucket) Before(other TimeBucket) bool {
	if b.Year != other.Year {
		return b.Year < other.Year
	}
	return b.Month < other.Month
}

// String renders the bucket as "YYYY-MM".
func (b TimeBucket) String() string {
	return fmt.Sprintf("%04d-%02d", b.Year, int(b.Month))
}
