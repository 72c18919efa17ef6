package analyses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"callcoach-backend/internal/audios"
	"callcoach-backend/internal/shared/metrics"
	"callcoach-backend/internal/shared/telemetry"
)

// Analyzer is the LLM dependency of the analysis service, satisfied by
// llm.Gateway. It never fails; a fully degraded result comes back as a
// renderable object with model "none".
type Analyzer interface {
	Analyze(ctx context.Context, transcript string) map[string]any
}

// Service orchestrates single-transcript analysis and the combined
// audio + analysis listing.
type Service struct {
	Audios  audios.Repo
	Repo    Repo
	Gateway Analyzer
}

// Combined pairs an audio with its most recent analysis, or nil when the
// audio was never analyzed.
type Combined struct {
	Audio    audios.Audio `json:"audio"`
	Analysis *Analysis    `json:"analysis"`
}

// Analyze looks up and authorizes the audio, runs the gateway exactly
// once, and persists a new immutable record. Ownership failures and
// missing audios both map to ErrNotFound.
func (s *Service) Analyze(ctx context.Context, userID, audioID string) (audios.Audio, Analysis, error) {
	audio, err := s.Audios.GetByID(ctx, userID, audioID)
	if err != nil {
		if errors.Is(err, audios.ErrNotFound) {
			return audios.Audio{}, Analysis{}, ErrNotFound
		}
		return audios.Audio{}, Analysis{}, err
	}
	if audio.Transcript == nil || *audio.Transcript == "" {
		return audios.Audio{}, Analysis{}, ErrTranscriptMissing
	}

	started := time.Now()
	raw := s.Gateway.Analyze(ctx, *audio.Transcript)
	metrics.ObserveAnalysisDurationMs(float64(time.Since(started).Milliseconds()))

	analysis := FromRaw(raw, time.Now().UTC())
	analysis.ID = uuid.NewString()
	analysis.AudioID = audio.ID

	if analysis.Metadata.Model == "none" {
		metrics.IncAnalysisDegraded()
	} else {
		metrics.IncAnalysisCompleted()
	}

	if err := s.Repo.Create(ctx, analysis); err != nil {
		return audios.Audio{}, Analysis{}, fmt.Errorf("persist analysis: %w", err)
	}
	telemetry.Info("analyses.created", map[string]any{
		"analysisId": analysis.ID,
		"audioId":    audio.ID,
		"model":      analysis.Metadata.Model,
	})
	return audio, analysis, nil
}

// ListWithAudios returns every audio of the owner paired with its most
// recent analysis.
func (s *Service) ListWithAudios(ctx context.Context, userID string) ([]Combined, error) {
	items, err := s.Audios.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(items))
	for i, a := range items {
		ids[i] = a.ID
	}
	all, err := s.Repo.ListByAudioIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Rows arrive newest first, so the first hit per audio wins.
	latest := make(map[string]*Analysis, len(items))
	for i := range all {
		if _, ok := latest[all[i].AudioID]; !ok {
			latest[all[i].AudioID] = &all[i]
		}
	}

	combined := make([]Combined, len(items))
	for i, audio := range items {
		combined[i] = Combined{Audio: audio, Analysis: latest[audio.ID]}
	}
	return combined, nil
}
