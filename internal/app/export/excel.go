package export

import (
	"fmt"
	"time"

	"github.com/tealeg/xlsx"

	"podbrief/internal/app/model"
	"podbrief/internal/app/repository"
)

const sheetName = "Transcriptions"

var header = []string{"ID", "File", "Created", "Duration (s)", "Language", "Cost", "Transcript"}

// ToExcel writes rows to a single-sheet workbook at outputPath. bar may be nil.
func ToExcel(rows []repository.ExportRow, outputPath string, bar *Bar) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range header {
		headerRow.AddCell().Value = h
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().Value = r.TranscriptionID
		row.AddCell().Value = r.OriginalFilename.String
		row.AddCell().Value = r.CreatedAt.UTC().Format(time.RFC3339)
		duration := row.AddCell()
		if r.DurationSeconds.Valid {
			duration.Value = fmt.Sprintf("%.2f", r.DurationSeconds.Float64)
		}
		row.AddCell().Value = r.Language.String
		row.AddCell().Value = model.DecimalFromCents(r.CostCents).StringFixed(2)
		row.AddCell().Value = r.Text
		bar.Increment()
	}
	bar.Done()

	if err := file.Save(outputPath); err != nil {
		return fmt.Errorf("save %s: %w", outputPath, err)
	}
	return nil
}
