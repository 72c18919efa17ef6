package reports

import (
	"testing"
	"time"

	"callcoach-backend/internal/analyses"
	"callcoach-backend/internal/audios"
)

func TestBuildWorkbookOneRowPerAnalyzedCall(t *testing.T) {
	now := time.Now().UTC()
	transcript := "hello"
	items := []analyses.Combined{
		{
			Audio: audios.Audio{ID: "a1", Filename: "first.wav", UploadedAt: now, Transcript: &transcript},
			Analysis: &analyses.Analysis{
				AudioID: "a1",
				QualityScores: analyses.QualityScores{
					CallOpening: 7, IssueCapture: 8, Sentiment: 6, Csat: 7, ResolutionQuality: 9,
				},
				Metadata:   analyses.Metadata{Model: "gemini-1.5-flash", GeneratedAt: now},
				AnalyzedAt: now,
			},
		},
		{
			// Never analyzed, must not produce a row.
			Audio: audios.Audio{ID: "a2", Filename: "second.wav", UploadedAt: now},
		},
	}

	f, err := BuildWorkbook(items)
	if err != nil {
		t.Fatalf("BuildWorkbook: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one data row, got %d rows", len(rows))
	}
	if rows[0][0] != "Filename" {
		t.Fatalf("unexpected header row: %v", rows[0])
	}
	data := rows[1]
	if data[0] != "first.wav" {
		t.Fatalf("expected first.wav, got %q", data[0])
	}
	if data[2] != "7" || data[6] != "9" {
		t.Fatalf("unexpected score cells: %v", data)
	}
	if data[7] != "gemini-1.5-flash" {
		t.Fatalf("expected model column, got %q", data[7])
	}
}

func TestBuildWorkbookEmpty(t *testing.T) {
	f, err := BuildWorkbook(nil)
	if err != nil {
		t.Fatalf("BuildWorkbook: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected only the header row, got %d", len(rows))
	}
}
