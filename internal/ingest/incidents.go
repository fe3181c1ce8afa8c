package ingest

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/boroughlab/incident-cli/internal/fetcher"
	"github.com/boroughlab/incident-cli/internal/model"
)

// occurDateLayout is the fixed month/day/year format of the incident feed.
const occurDateLayout = "01/02/2006"

// LoadReport counts rows whose fields failed row-level parsing. The rows
// themselves survive loading with nulled fields so the cleaner can drop
// and account for them.
type LoadReport struct {
	RowsRead        int `json:"rows_read"`
	BadDates        int `json:"bad_dates"`
	BadCoords       int `json:"bad_coords"`
	UnknownBoroughs int `json:"unknown_boroughs"`
}

// LoadIncidents reads the incident CSV from r and returns typed records.
// A row whose date fails to parse gets a nil OccurredOn; non-numeric or
// absent coordinates null the coordinate pair. Only a table-level failure
// (unreadable CSV, missing required columns) returns an error.
func LoadIncidents(ctx context.Context, r io.Reader) ([]model.IncidentRecord, LoadReport, error) {
	header, rows, err := fetcher.ReadCSV(ctx, r, fetcher.CSVOptions{HasHeader: true, LazyQuotes: true})
	if err != nil {
		return nil, LoadReport{}, eris.Wrap(err, "ingest: read incident csv")
	}

	colIdx := mapColumnsNormalized(header)
	for _, required := range []string{"occur_date", "boro"} {
		if _, ok := colIdx[normalizeCol(required)]; !ok {
			return nil, LoadReport{}, eris.Errorf("ingest: incident csv missing column %q", required)
		}
	}

	var report LoadReport
	records := make([]model.IncidentRecord, 0, len(rows))

	for _, row := range rows {
		report.RowsRead++

		rec := model.IncidentRecord{}

		rawDate := strings.TrimSpace(getCol(row, colIdx, "occur_date", "date"))
		if occurred, parseErr := time.Parse(occurDateLayout, rawDate); parseErr == nil {
			rec.OccurredOn = &occurred
		} else {
			report.BadDates++
		}

		rec.RawBorough = getCol(row, colIdx, "boro", "borough")
		if b, parseErr := model.ParseBorough(rec.RawBorough); parseErr == nil {
			rec.Borough = b
		} else {
			report.UnknownBoroughs++
		}

		lat := parseFloatPtr(getCol(row, colIdx, "latitude", "lat"))
		lon := parseFloatPtr(getCol(row, colIdx, "longitude", "lon", "lng"))
		if lat != nil && lon != nil {
			rec.Latitude = lat
			rec.Longitude = lon
		} else {
			report.BadCoords++
		}

		records = append(records, rec)
	}

	zap.L().Info("ingest: incidents loaded",
		zap.Int("rows", report.RowsRead),
		zap.Int("bad_dates", report.BadDates),
		zap.Int("bad_coords", report.BadCoords),
		zap.Int("unknown_boroughs", report.UnknownBoroughs),
	)

	return records, report, nil
}
