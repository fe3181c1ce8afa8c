package ingest

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/boroughlab/incident-cli/internal/fetcher"
	"github.com/boroughlab/incident-cli/internal/model"
)

// LoadPopulationCSV reads the borough population reference table from CSV.
// Reference data must be sane: an unknown borough name or non-positive
// population fails the whole table.
func LoadPopulationCSV(ctx context.Context, r io.Reader) ([]model.PopulationEntry, error) {
	header, rows, err := fetcher.ReadCSV(ctx, r, fetcher.CSVOptions{HasHeader: true, TrimSpace: true})
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read population csv")
	}

	colIdx := mapColumnsNormalized(header)
	raw := make([][2]string, 0, len(rows))
	for _, row := range rows {
		raw = append(raw, [2]string{
			getCol(row, colIdx, "borough", "boro", "boro_name"),
			getCol(row, colIdx, "population", "pop"),
		})
	}

	return populationFromPairs(raw)
}

// LoadPopulationXLSX reads the population reference from an XLSX sheet.
// The first row is the header; borough and population columns are located
// by name.
func LoadPopulationXLSX(path string, sheet string) ([]model.PopulationEntry, error) {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{SheetName: sheet})
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read population xlsx")
	}
	if len(rows) < 2 {
		return nil, eris.New("ingest: population xlsx has no data rows")
	}

	colIdx := mapColumnsNormalized(rows[0])
	raw := make([][2]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		raw = append(raw, [2]string{
			getCol(row, colIdx, "borough", "boro", "boro_name"),
			getCol(row, colIdx, "population", "pop"),
		})
	}

	return populationFromPairs(raw)
}

func populationFromPairs(raw [][2]string) ([]model.PopulationEntry, error) {
	entries := make([]model.PopulationEntry, 0, len(raw))
	seen := make(map[model.Borough]bool, 5)

	for i, pair := range raw {
		if pair[0] == "" && pair[1] == "" {
			continue // blank trailing row
		}

		borough, err := model.ParseBorough(pair[0])
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: population row %d", i+1)
		}
		if seen[borough] {
			return nil, eris.Errorf("ingest: duplicate population entry for %s", borough)
		}
		seen[borough] = true

		pop := parseInt64Or(pair[1], 0)
		if pop <= 0 {
			return nil, eris.Errorf("ingest: population row %d for %s: non-positive population %q", i+1, borough, pair[1])
		}

		entries = append(entries, model.PopulationEntry{Borough: borough, Population: pop})
	}

	if len(entries) == 0 {
		return nil, eris.New("ingest: population table is empty")
	}

	zap.L().Info("ingest: population reference loaded", zap.Int("boroughs", len(entries)))
	return entries, nil
}
