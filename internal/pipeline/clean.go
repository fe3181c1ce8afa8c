// Package pipeline implements the incident normalization-and-aggregation
// pipeline: clean, aggregate, normalize, and geospatially enrich a raw
// incident snapshot.
package pipeline

import (
	"go.uber.org/zap"

	"github.com/boroughlab/incident-cli/internal/model"
)

// DropReport counts records removed by the cleaner, by reason. A record
// missing several fields is counted once under the first failing check.
type DropReport struct {
	MissingDate    int `json:"missing_date"`
	MissingCoords  int `json:"missing_coords"`
	UnknownBorough int `json:"unknown_borough"`
}

// Total returns the number of dropped records.
func (d DropReport) Total() int {
	return d.MissingDate + d.MissingCoords + d.UnknownBorough
}

// Clean filters the raw records down to those usable by every downstream
// aggregate: a parsed occurrence date, both coordinates, and a recognized
// borough. The output is an order-preserving subset of the input; no
// record is synthesized.
func Clean(records []model.IncidentRecord) ([]model.IncidentRecord, DropReport) {
	var report DropReport
	cleaned := make([]model.IncidentRecord, 0, len(records))

	for _, rec := range records {
		switch {
		case rec.OccurredOn == nil:
			report.MissingDate++
		case !rec.Geolocated():
			report.MissingCoords++
		case rec.Borough == "":
			report.UnknownBorough++
		default:
			cleaned = append(cleaned, rec)
		}
	}

	zap.L().Info("pipeline: cleaned records",
		zap.Int("kept", len(cleaned)),
		zap.Int("dropped", report.Total()),
		zap.Int("missing_date", report.MissingDate),
		zap.Int("missing_coords", report.MissingCoords),
		zap.Int("unknown_borough", report.UnknownBorough),
	)

	return cleaned, report
}
