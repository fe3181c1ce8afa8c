package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/boroughlab/incident-cli/internal/model"
)

func record(day time.Time, b model.Borough) model.IncidentRecord {
	lat, lon := 40.7, -73.9
	return model.IncidentRecord{
		OccurredOn: &day,
		Borough:    b,
		RawBorough: string(b),
		Latitude:   &lat,
		Longitude:  &lon,
	}
}

func TestCleanDropReasons(t *testing.T) {
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	lat := 40.7

	good := record(day, model.Queens)

	noDate := record(day, model.Bronx)
	noDate.OccurredOn = nil

	noCoords := record(day, model.Brooklyn)
	noCoords.Longitude = nil

	noBorough := record(day, model.Manhattan)
	noBorough.Borough = ""
	noBorough.RawBorough = "UNKNOWN"

	// Missing date wins over the record's other defects.
	multiBad := model.IncidentRecord{Latitude: &lat}

	cleaned, report := Clean([]model.IncidentRecord{good, noDate, noCoords, noBorough, multiBad})

	assert.Len(t, cleaned, 1)
	assert.Equal(t, model.Queens, cleaned[0].Borough)
	assert.Equal(t, 2, report.MissingDate)
	assert.Equal(t, 1, report.MissingCoords)
	assert.Equal(t, 1, report.UnknownBorough)
	assert.Equal(t, 4, report.Total())
}

func TestCleanPreservesOrder(t *testing.T) {
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	in := []model.IncidentRecord{
		record(day, model.StatenIsland),
		record(day, model.Bronx),
		record(day, model.Queens),
	}

	cleaned, report := Clean(in)

	assert.Equal(t, 0, report.Total())
	assert.Equal(t, in, cleaned)
}

func TestCleanEmptyInput(t *testing.T) {
	cleaned, report := Clean(nil)
	assert.Empty(t, cleaned)
	assert.Equal(t, 0, report.Total())
}
