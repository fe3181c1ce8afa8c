package pipeline

import (
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/boroughlab/incident-cli/internal/model"
)

// BoroughTotals groups cleaned records by borough. Output is sorted in
// canonical borough order; boroughs with no records are omitted.
func BoroughTotals(records []model.IncidentRecord) []model.AggregateCount {
	counts := make(map[model.Borough]int, 5)
	for _, rec := range records {
		counts[rec.Borough]++
	}

	totals := make([]model.AggregateCount, 0, len(counts))
	for _, b := range model.AllBoroughs() {
		if n, ok := counts[b]; ok {
			totals = append(totals, model.AggregateCount{Borough: b, Count: n})
		}
	}
	return totals
}

// MonthlyCounts groups cleaned records by (year-month, borough). Output is
// sorted by bucket then canonical borough order so fixtures and exports
// are reproducible.
func MonthlyCounts(records []model.IncidentRecord) []model.MonthlyCount {
	type key struct {
		bucket  model.TimeBucket
		borough model.Borough
	}

	counts := make(map[key]int)
	for _, rec := range records {
		counts[key{bucket: model.BucketOf(*rec.OccurredOn), borough: rec.Borough}]++
	}

	boroughOrder := make(map[model.Borough]int, 5)
	for i, b := range model.AllBoroughs() {
		boroughOrder[b] = i
	}

	monthly := make([]model.MonthlyCount, 0, len(counts))
	for k, n := range counts {
		monthly = append(monthly, model.MonthlyCount{
			Bucket:  k.bucket,
			Month:   k.bucket.String(),
			Borough: k.borough,
			Count:   n,
		})
	}
	sort.Slice(monthly, func(i, j int) bool {
		if monthly[i].Bucket != monthly[j].Bucket {
			return monthly[i].Bucket.Before(monthly[j].Bucket)
		}
		return boroughOrder[monthly[i].Borough] < boroughOrder[monthly[j].Borough]
	})

	return monthly
}

// DailyOccurrences builds the dense (date, borough) occurrence table over
// the inclusive range [from, to]: every calendar day appears once per
// borough, with Occurred true iff at least one record matches. Zero-valued
// from/to default to the earliest and latest occurrence dates in records.
// The sparse-to-dense expansion is the point: a day without incidents must
// become an explicit false row, not a missing one.
func DailyOccurrences(records []model.IncidentRecord, from, to time.Time) ([]model.DailyOccurrence, error) {
	if from.IsZero() || to.IsZero() {
		if len(records) == 0 {
			return nil, eris.New("pipeline: cannot infer date range from empty record set")
		}
		min, max := dateOnly(*records[0].OccurredOn), dateOnly(*records[0].OccurredOn)
		for _, rec := range records[1:] {
			d := dateOnly(*rec.OccurredOn)
			if d.Before(min) {
				min = d
			}
			if d.After(max) {
				max = d
			}
		}
		if from.IsZero() {
			from = min
		}
		if to.IsZero() {
			to = max
		}
	}

	from, to = dateOnly(from), dateOnly(to)
	if to.Before(from) {
		return nil, eris.Errorf("pipeline: daily range end %s precedes start %s",
			to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	type key struct {
		date    time.Time
		borough model.Borough
	}
	hit := make(map[key]bool, len(records))
	for _, rec := range records {
		hit[key{date: dateOnly(*rec.OccurredOn), borough: rec.Borough}] = true
	}

	boroughs := model.AllBoroughs()
	days := int(to.Sub(from).Hours()/24) + 1
	rows := make([]model.DailyOccurrence, 0, days*len(boroughs))

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		for _, b := range boroughs {
			rows = append(rows, model.DailyOccurrence{
				Date:     d,
				Borough:  b,
				Occurred: hit[key{date: d, borough: b}],
			})
		}
	}

	return rows, nil
}

// dateOnly truncates a timestamp to its UTC calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
