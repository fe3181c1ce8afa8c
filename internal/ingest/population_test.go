package ingest

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/boroughlab/incident-cli/internal/model"
)

func TestLoadPopulationCSV(t *testing.T) {
	csv := `Borough,Population
 bronx ,"1,472,654"
Brooklyn,2736074
MANHATTAN,1694251
Queens,2405464
Staten Island,495747
`
	entries, err := LoadPopulationCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, entries, 5)

	assert.Equal(t, model.Bronx, entries[0].Borough)
	assert.Equal(t, int64(1472654), entries[0].Population)
	assert.Equal(t, model.StatenIsland, entries[4].Borough)
	assert.Equal(t, int64(495747), entries[4].Population)
}

func TestLoadPopulationCSVNonPositive(t *testing.T) {
	csv := "borough,population\nBRONX,0\n"
	_, err := LoadPopulationCSV(context.Background(), strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-positive")
}

func TestLoadPopulationCSVUnknownBorough(t *testing.T) {
	csv := "borough,population\nALBANY,100000\n"
	_, err := LoadPopulationCSV(context.Background(), strings.NewReader(csv))
	assert.Error(t, err)
}

func TestLoadPopulationCSVDuplicate(t *testing.T) {
	csv := "borough,population\nQUEENS,100\nqueens,200\n"
	_, err := LoadPopulationCSV(context.Background(), strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadPopulationXLSX(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Population")
	require.NoError(t, err)
	for _, row := range [][]string{
		{"Borough", "Population"},
		{"Bronx", "1472654"},
		{"Queens", "2405464"},
	} {
		r := sheet.AddRow()
		for _, val := range row {
			r.AddCell().Value = val
		}
	}
	path := filepath.Join(t.TempDir(), "pop.xlsx")
	require.NoError(t, f.Save(path))

	entries, err := LoadPopulationXLSX(path, "Population")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1472654), entries[0].Population)
	assert.Equal(t, model.Queens, entries[1].Borough)
}
