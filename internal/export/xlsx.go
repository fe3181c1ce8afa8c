package export

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/boroughlab/incident-cli/internal/classify"
	"github.com/boroughlab/incident-cli/internal/pipeline"
)

// XLSXSink writes a run to a spreadsheet workbook, one sheet per result
// table. Each Write replaces the whole file.
type XLSXSink struct {
	path string
}

// NewXLSX builds a sink targeting the given workbook path.
func NewXLSX(path string) *XLSXSink {
	return &XLSXSink{path: path}
}

// Write renders the workbook and saves it.
func (s *XLSXSink) Write(ctx context.Context, result *pipeline.Result) error {
	file := xlsx.NewFile()

	if err := writeSummarySheet(file, result); err != nil {
		return err
	}
	if err := writeRatesSheet(file, result); err != nil {
		return err
	}
	if err := writeMonthlySheet(file, result); err != nil {
		return err
	}
	if err := writeDailySheet(file, result); err != nil {
		return err
	}

	if err := file.Save(s.path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", s.path)
	}
	return nil
}

// Close is a no-op; the workbook is written atomically per run.
func (s *XLSXSink) Close() error {
	return nil
}

func writeSummarySheet(file *xlsx.File, result *pipeline.Result) error {
	sheet, err := file.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	addStringRow := func(label, value string) {
		row := sheet.AddRow()
		row.AddCell().Value = label
		row.AddCell().Value = value
	}
	addIntRow := func(label string, value int) {
		row := sheet.AddRow()
		row.AddCell().Value = label
		row.AddCell().SetInt(value)
	}
	addRatioRow := func(label string, r classify.Ratio) {
		row := sheet.AddRow()
		row.AddCell().Value = label
		if r.Defined {
			row.AddCell().SetFloat(r.Value)
		} else {
			row.AddCell().Value = "undefined"
		}
	}

	addStringRow("Run", result.RunID)
	addStringRow("Generated", result.GeneratedAt.Format("2006-01-02 15:04:05"))
	addIntRow("Rows read", result.Load.RowsRead)
	addIntRow("Rows kept", result.CleanCount)
	addIntRow("Dropped: missing date", result.Drops.MissingDate)
	addIntRow("Dropped: missing coordinates", result.Drops.MissingCoords)
	addIntRow("Dropped: unknown borough", result.Drops.UnknownBorough)
	addIntRow("Train size", result.Evaluation.TrainSize)
	addIntRow("Test size", result.Evaluation.TestSize)
	addIntRow("True positives", result.Evaluation.Matrix.TruePositives)
	addIntRow("True negatives", result.Evaluation.Matrix.TrueNegatives)
	addIntRow("False positives", result.Evaluation.Matrix.FalsePositives)
	addIntRow("False negatives", result.Evaluation.Matrix.FalseNegatives)
	addRatioRow("Accuracy", result.Evaluation.Accuracy)
	addRatioRow("Sensitivity", result.Evaluation.Sensitivity)
	addRatioRow("Specificity", result.Evaluation.Specificity)

	return nil
}

func writeRatesSheet(file *xlsx.File, result *pipeline.Result) error {
	sheet, err := file.AddSheet("Rates")
	if err != nil {
		return eris.Wrap(err, "export: add rates sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Borough", "Incidents", "Population", "Rate per 100k"} {
		header.AddCell().Value = h
	}
	for _, r := range result.Rates {
		row := sheet.AddRow()
		row.AddCell().Value = r.Borough.String()
		row.AddCell().SetInt(r.Count)
		row.AddCell().SetInt64(r.Population)
		row.AddCell().SetFloat(r.RatePer100k)
	}
	return nil
}

func writeMonthlySheet(file *xlsx.File, result *pipeline.Result) error {
	sheet, err := file.AddSheet("Monthly")
	if err != nil {
		return eris.Wrap(err, "export: add monthly sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Month", "Borough", "Incidents"} {
		header.AddCell().Value = h
	}
	for _, m := range result.Monthly {
		row := sheet.AddRow()
		row.AddCell().Value = m.Month
		row.AddCell().Value = m.Borough.String()
		row.AddCell().SetInt(m.Count)
	}
	return nil
}

func writeDailySheet(file *xlsx.File, result *pipeline.Result) error {
	sheet, err := file.AddSheet("Daily")
	if err != nil {
		return eris.Wrap(err, "export: add daily sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Day", "Borough", "Occurred"} {
		header.AddCell().Value = h
	}
	for _, o := range result.Occurrences {
		row := sheet.AddRow()
		row.AddCell().Value = o.Date.Format(sqliteDayLayout)
		row.AddCell().Value = o.Borough.String()
		row.AddCell().SetBool(o.Occurred)
	}
	return nil
}
