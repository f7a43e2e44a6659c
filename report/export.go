package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/cafsi-mindset/portal/model"
)

var exportHeader = []string{"Quiz", "Score", "Total", "Pourcentage", "Date"}

// exportDate renders the fr-FR calendar date.
func exportDate(r model.QuizResult) string {
	return r.CompletedAt.Format("02/01/2006")
}

// ExportCSV renders one row per result under the fixed report header.
// Percentage is the rounded integer followed by '%'.
func ExportCSV(results []model.QuizResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write(exportHeader)
	for _, r := range results {
		rec := []string{
			r.QuizTitle,
			strconv.Itoa(r.Score),
			strconv.Itoa(r.TotalQuestions),
			strconv.Itoa(r.Percentage()) + "%",
			exportDate(r),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportXLSX renders the same report as a spreadsheet.
func ExportXLSX(results []model.QuizResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			r.QuizTitle,
			r.Score,
			r.TotalQuestions,
			strconv.Itoa(r.Percentage()) + "%",
			exportDate(r),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
