package export

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"podbrief/internal/app/repository"
)

func TestToExcel(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []repository.ExportRow{
		{
			TranscriptionID:  "t-1",
			OriginalFilename: sql.NullString{String: "episode-1.mp3", Valid: true},
			DurationSeconds:  sql.NullFloat64{Float64: 125.5, Valid: true},
			CostCents:        210,
			Language:         sql.NullString{String: "en", Valid: true},
			Text:             "hello world",
			CreatedAt:        created,
		},
		{
			// audio already purged by retention
			TranscriptionID: "t-2",
			CostCents:       100,
			Text:            "second",
			CreatedAt:       created.Add(time.Hour),
		},
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, ToExcel(rows, path, nil))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := file.Sheet[sheetName]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)

	cells := func(i int) []string {
		var out []string
		for _, c := range sheet.Rows[i].Cells {
			out = append(out, c.Value)
		}
		return out
	}
	assert.Equal(t, header, cells(0))
	assert.Equal(t, []string{"t-1", "episode-1.mp3", "2026-03-01T12:00:00Z", "125.50", "en", "2.10", "hello world"}, cells(1))
	assert.Equal(t, "", cells(2)[1])
	assert.Equal(t, "", cells(2)[3])
	assert.Equal(t, "1.00", cells(2)[5])
}

func TestToExcel_WithProgress(t *testing.T) {
	var out bytes.Buffer
	progress := NewProgress(true, &out)
	bar := progress.Bar(1, "Exporting")

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, ToExcel([]repository.ExportRow{{TranscriptionID: "t-1", Text: "x"}}, path, bar))
	progress.Wait()
	assert.FileExists(t, path)
}

func TestDisabledProgressIsNoop(t *testing.T) {
	progress := NewProgress(false, nil)
	bar := progress.Bar(10, "noop")
	assert.Nil(t, bar)
	bar.Increment()
	bar.Done()
	progress.Wait()
	assert.True(t, Interactive(true))
}
