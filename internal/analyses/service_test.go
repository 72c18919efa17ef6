package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"callcoach-backend/internal/audios"
)

type analyzerFunc func(ctx context.Context, transcript string) map[string]any

func (f analyzerFunc) Analyze(ctx context.Context, transcript string) map[string]any {
	return f(ctx, transcript)
}

func fixedAnalyzer(t *testing.T, body string) analyzerFunc {
	t.Helper()
	return func(ctx context.Context, transcript string) map[string]any {
		var raw map[string]any
		if err := json.Unmarshal([]byte(body), &raw); err != nil {
			t.Fatalf("unmarshal fixture: %v", err)
		}
		return raw
	}
}

func seedAudio(t *testing.T, repo audios.Repo, userID string, transcript string) audios.Audio {
	t.Helper()
	audio := audios.Audio{
		ID:         "audio-" + userID + "-" + transcript,
		UserID:     userID,
		Filename:   "call.wav",
		StorageKey: "key",
		UploadedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), audio); err != nil {
		t.Fatalf("seed audio: %v", err)
	}
	if transcript != "" {
		at := time.Now().UTC()
		if err := repo.UpdateTranscript(context.Background(), userID, audio.ID, transcript, at); err != nil {
			t.Fatalf("seed transcript: %v", err)
		}
		audio.Transcript = &transcript
		audio.TranscribedAt = &at
	}
	return audio
}

func TestAnalyzeOwnershipIsolation(t *testing.T) {
	audioRepo := audios.NewMemoryRepo()
	audio := seedAudio(t, audioRepo, "owner", "some transcript")
	svc := &Service{Audios: audioRepo, Repo: NewMemoryRepo(), Gateway: fixedAnalyzer(t, `{}`)}

	_, _, err := svc.Analyze(context.Background(), "intruder", audio.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
}

func TestAnalyzeMissingAudio(t *testing.T) {
	svc := &Service{Audios: audios.NewMemoryRepo(), Repo: NewMemoryRepo(), Gateway: fixedAnalyzer(t, `{}`)}
	_, _, err := svc.Analyze(context.Background(), "owner", "no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAnalyzePreconditionTranscriptMissing(t *testing.T) {
	audioRepo := audios.NewMemoryRepo()
	audio := seedAudio(t, audioRepo, "owner", "")
	svc := &Service{Audios: audioRepo, Repo: NewMemoryRepo(), Gateway: fixedAnalyzer(t, `{}`)}

	_, _, err := svc.Analyze(context.Background(), "owner", audio.ID)
	if !errors.Is(err, ErrTranscriptMissing) {
		t.Fatalf("expected ErrTranscriptMissing, got %v", err)
	}
}

func TestAnalyzePersistsNormalizedRecord(t *testing.T) {
	audioRepo := audios.NewMemoryRepo()
	audio := seedAudio(t, audioRepo, "owner", "agent: hello")
	repo := NewMemoryRepo()
	svc := &Service{Audios: audioRepo, Repo: repo, Gateway: fixedAnalyzer(t, `{
		"model": "gemini-1.5-flash",
		"qualityScores": {"callOpening": 7, "issueCapture": 8, "sentiment": 6, "csat": 7, "resolutionQuality": 8},
		"coachingPlanText": "do better openings",
		"quiz": [{"question":"q","options":["a","b"],"answerIndex":5,"explanation":"e"}]
	}`)}

	gotAudio, analysis, err := svc.Analyze(context.Background(), "owner", audio.ID)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if gotAudio.ID != audio.ID {
		t.Fatalf("expected the analyzed audio back, got %+v", gotAudio)
	}
	if analysis.AudioID != audio.ID {
		t.Fatalf("analysis must reference its audio, got %q", analysis.AudioID)
	}
	if analysis.Metadata.Model != "gemini-1.5-flash" {
		t.Fatalf("expected provider model recorded, got %q", analysis.Metadata.Model)
	}
	if analysis.QualityScores.IssueCapture != 8 {
		t.Fatalf("unexpected scores: %+v", analysis.QualityScores)
	}
	if len(analysis.Quiz) != 0 {
		t.Fatalf("invalid quiz entry must be dropped, got %+v", analysis.Quiz)
	}

	stored, err := repo.ListByAudioIDs(context.Background(), []string{audio.ID})
	if err != nil {
		t.Fatalf("ListByAudioIDs: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != analysis.ID {
		t.Fatalf("expected persisted record, got %+v", stored)
	}
}

func TestAnalyzeTwiceKeepsHistory(t *testing.T) {
	audioRepo := audios.NewMemoryRepo()
	audio := seedAudio(t, audioRepo, "owner", "transcript")
	repo := NewMemoryRepo()
	svc := &Service{Audios: audioRepo, Repo: repo, Gateway: fixedAnalyzer(t, `{
		"model": "gpt-3.5-turbo",
		"qualityScores": {"callOpening": 5, "issueCapture": 5, "sentiment": 5, "csat": 5, "resolutionQuality": 5},
		"coachingPlanText": "plan"
	}`)}

	_, first, err := svc.Analyze(context.Background(), "owner", audio.ID)
	if err != nil {
		t.Fatalf("first Analyze: %v", err)
	}
	_, second, err := svc.Analyze(context.Background(), "owner", audio.ID)
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}

	if first.ID == second.ID {
		t.Fatal("re-analysis must create a new record")
	}
	if first.QualityScores != second.QualityScores {
		t.Fatalf("scores differ: %+v vs %+v", first.QualityScores, second.QualityScores)
	}
	if first.CoachingPlanText != second.CoachingPlanText || first.Metadata.Model != second.Metadata.Model {
		t.Fatal("field values must be identical apart from ids and timestamps")
	}

	stored, err := repo.ListByAudioIDs(context.Background(), []string{audio.ID})
	if err != nil {
		t.Fatalf("ListByAudioIDs: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected both records retained, got %d", len(stored))
	}
}

func TestListWithAudiosMostRecentWins(t *testing.T) {
	audioRepo := audios.NewMemoryRepo()
	audio := seedAudio(t, audioRepo, "owner", "transcript")
	other := seedAudio(t, audioRepo, "owner", "")
	repo := NewMemoryRepo()

	old := Analysis{ID: "old", AudioID: audio.ID, Metadata: Metadata{Model: "gpt-3.5-turbo"}, AnalyzedAt: time.Now().Add(-time.Hour)}
	recent := Analysis{ID: "recent", AudioID: audio.ID, Metadata: Metadata{Model: "gemini-1.5-flash"}, AnalyzedAt: time.Now()}
	for _, a := range []Analysis{old, recent} {
		if err := repo.Create(context.Background(), a); err != nil {
			t.Fatalf("seed analysis: %v", err)
		}
	}

	svc := &Service{Audios: audioRepo, Repo: repo, Gateway: fixedAnalyzer(t, `{}`)}
	combined, err := svc.ListWithAudios(context.Background(), "owner")
	if err != nil {
		t.Fatalf("ListWithAudios: %v", err)
	}
	if len(combined) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(combined))
	}
	for _, item := range combined {
		switch item.Audio.ID {
		case audio.ID:
			if item.Analysis == nil || item.Analysis.ID != "recent" {
				t.Fatalf("expected most recent analysis, got %+v", item.Analysis)
			}
		case other.ID:
			if item.Analysis != nil {
				t.Fatalf("expected nil analysis for unanalyzed audio, got %+v", item.Analysis)
			}
		}
	}
}

func TestAnalyzeDegradedResultStillPersisted(t *testing.T) {
	audioRepo := audios.NewMemoryRepo()
	audio := seedAudio(t, audioRepo, "owner", "transcript")
	repo := NewMemoryRepo()
	svc := &Service{Audios: audioRepo, Repo: repo, Gateway: fixedAnalyzer(t, `{"model":"none"}`)}

	_, analysis, err := svc.Analyze(context.Background(), "owner", audio.ID)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if analysis.Metadata.Model != "none" {
		t.Fatalf("expected degraded sentinel, got %q", analysis.Metadata.Model)
	}
	if analysis.QualityScores != (QualityScores{}) {
		t.Fatalf("expected all-zero scores, got %+v", analysis.QualityScores)
	}
}
