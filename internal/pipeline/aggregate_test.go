package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boroughlab/incident-cli/internal/model"
)

func TestBoroughTotals(t *testing.T) {
	day := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	records := []model.IncidentRecord{
		record(day, model.Queens),
		record(day, model.Bronx),
		record(day, model.Queens),
		record(day, model.Brooklyn),
		record(day, model.Queens),
	}

	totals := BoroughTotals(records)

	// Canonical order, empty boroughs omitted.
	require.Len(t, totals, 3)
	assert.Equal(t, model.AggregateCount{Borough: model.Bronx, Count: 1}, totals[0])
	assert.Equal(t, model.AggregateCount{Borough: model.Brooklyn, Count: 1}, totals[1])
	assert.Equal(t, model.AggregateCount{Borough: model.Queens, Count: 3}, totals[2])

	sum := 0
	for _, tc := range totals {
		sum += tc.Count
	}
	assert.Equal(t, len(records), sum)
}

func TestMonthlyCounts(t *testing.T) {
	jan := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	janLate := time.Date(2024, 1, 28, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	records := []model.IncidentRecord{
		record(mar, model.Bronx),
		record(jan, model.Queens),
		record(janLate, model.Queens),
		record(jan, model.Bronx),
	}

	monthly := MonthlyCounts(records)

	require.Len(t, monthly, 3)
	assert.Equal(t, "2024-01", monthly[0].Month)
	assert.Equal(t, model.Bronx, monthly[0].Borough)
	assert.Equal(t, 1, monthly[0].Count)
	assert.Equal(t, "2024-01", monthly[1].Month)
	assert.Equal(t, model.Queens, monthly[1].Borough)
	assert.Equal(t, 2, monthly[1].Count)
	assert.Equal(t, "2024-03", monthly[2].Month)
	assert.Equal(t, model.Bronx, monthly[2].Borough)
}

func TestDailyOccurrencesDense(t *testing.T) {
	d1 := time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC)
	d3 := time.Date(2024, 4, 3, 23, 0, 0, 0, time.UTC)

	records := []model.IncidentRecord{
		record(d1, model.Bronx),
		record(d1, model.Bronx), // duplicate day collapses to one true row
		record(d3, model.Queens),
	}

	rows, err := DailyOccurrences(records, time.Time{}, time.Time{})
	require.NoError(t, err)

	// 3 inferred days × 5 boroughs, including the incident-free middle day.
	boroughs := model.AllBoroughs()
	require.Len(t, rows, 3*len(boroughs))

	occurred := 0
	byKey := make(map[string]bool, len(rows))
	for _, r := range rows {
		if r.Occurred {
			occurred++
		}
		byKey[r.Date.Format("2006-01-02")+"/"+string(r.Borough)] = r.Occurred
	}

	assert.Equal(t, 2, occurred)
	assert.True(t, byKey["2024-04-01/"+string(model.Bronx)])
	assert.True(t, byKey["2024-04-03/"+string(model.Queens)])
	assert.False(t, byKey["2024-04-02/"+string(model.Bronx)])
	assert.False(t, byKey["2024-04-01/"+string(model.Manhattan)])
}

func TestDailyOccurrencesExplicitRange(t *testing.T) {
	d := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	records := []model.IncidentRecord{record(d, model.Bronx)}

	from := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC)

	rows, err := DailyOccurrences(records, from, to)
	require.NoError(t, err)
	assert.Len(t, rows, 5*len(model.AllBoroughs()))
}

func TestDailyOccurrencesErrors(t *testing.T) {
	_, err := DailyOccurrences(nil, time.Time{}, time.Time{})
	assert.Error(t, err)

	d := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	records := []model.IncidentRecord{record(d, model.Bronx)}
	_, err = DailyOccurrences(records, d, d.AddDate(0, 0, -3))
	assert.Error(t, err)
}
