package reports

import (
	"time"

	"github.com/xuri/excelize/v2"

	"callcoach-backend/internal/analyses"
)

const sheetName = "Call Scores"

var headers = []string{
	"Filename",
	"Uploaded At",
	"Call Opening",
	"Issue Capture",
	"Sentiment",
	"CSAT",
	"Resolution Quality",
	"Model",
	"Analyzed At",
}

// BuildWorkbook renders one spreadsheet row per analyzed call. Audios
// without an analysis are skipped.
func BuildWorkbook(items []analyses.Combined) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetName)

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, item := range items {
		if item.Analysis == nil {
			continue
		}
		scores := item.Analysis.QualityScores
		values := []any{
			item.Audio.Filename,
			item.Audio.UploadedAt.Format(time.RFC3339),
			scores.CallOpening,
			scores.IssueCapture,
			scores.Sentiment,
			scores.Csat,
			scores.ResolutionQuality,
			item.Analysis.Metadata.Model,
			item.Analysis.AnalyzedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, err
			}
		}
		row++
	}
	return f, nil
}
