package audios

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"callcoach-backend/internal/shared/metrics"
	"callcoach-backend/internal/shared/storage/object"
	"callcoach-backend/internal/shared/telemetry"
)

// Transcriber is the transcription dependency of the upload service,
// satisfied by stt.Gateway.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, fileName string) (string, error)
}

// ErrNoFiles is returned when an upload batch is empty.
var ErrNoFiles = errors.New("no files uploaded")

// Service drives upload batches through storage and transcription.
type Service struct {
	Store object.ObjectStore
	Repo  Repo
	STT   Transcriber
	// Concurrency caps in-flight files per batch; 0 means unbounded.
	Concurrency int
}

// UploadFile is one file of an upload batch.
type UploadFile struct {
	Name string
	Data []byte
}

// UploadFailure describes one file that failed within a batch.
type UploadFailure struct {
	FileName string `json:"fileName"`
	Error    string `json:"error"`
}

// BatchResult partitions a settled batch into successes and failures,
// each preserving the input order of its files.
type BatchResult struct {
	Audios []Audio         `json:"audios"`
	Errors []UploadFailure `json:"errors"`
}

// UploadBatch stores, records, and transcribes every file concurrently.
// Each file is an independent task: a failure is reported in the result
// and never aborts its siblings. The call returns only after every task
// has settled.
func (s *Service) UploadBatch(ctx context.Context, userID string, files []UploadFile) (BatchResult, error) {
	if userID == "" {
		return BatchResult{}, errors.New("owner id required")
	}
	if len(files) == 0 {
		return BatchResult{}, ErrNoFiles
	}

	type outcome struct {
		audio Audio
		err   error
	}
	outcomes := make([]outcome, len(files))

	var sem chan struct{}
	if s.Concurrency > 0 {
		sem = make(chan struct{}, s.Concurrency)
	}

	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(i int, file UploadFile) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			audio, err := s.processFile(ctx, userID, file)
			outcomes[i] = outcome{audio: audio, err: err}
		}(i, file)
	}
	wg.Wait()

	result := BatchResult{
		Audios: []Audio{},
		Errors: []UploadFailure{},
	}
	for i, out := range outcomes {
		if out.err != nil {
			result.Errors = append(result.Errors, UploadFailure{
				FileName: files[i].Name,
				Error:    out.err.Error(),
			})
			continue
		}
		result.Audios = append(result.Audios, out.audio)
	}
	return result, nil
}

// processFile runs the save, record, transcribe, update sequence for a
// single file. The audio record is created before the transcription
// attempt so the upload is durable even when transcription fails; a
// failed file keeps a null transcript permanently.
func (s *Service) processFile(ctx context.Context, userID string, file UploadFile) (Audio, error) {
	metrics.IncUploads()

	storageKey, _, _, err := s.Store.Save(ctx, userID, file.Name, bytes.NewReader(file.Data))
	if err != nil {
		return Audio{}, fmt.Errorf("store audio: %w", err)
	}

	audio := Audio{
		ID:         uuid.NewString(),
		UserID:     userID,
		Filename:   file.Name,
		StorageKey: storageKey,
		UploadedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, audio); err != nil {
		return Audio{}, fmt.Errorf("create audio record: %w", err)
	}

	started := time.Now()
	transcript, err := s.STT.Transcribe(ctx, file.Data, file.Name)
	metrics.ObserveTranscriptionDurationMs(float64(time.Since(started).Milliseconds()))
	if err != nil {
		metrics.IncTranscriptionFailed()
		telemetry.Error("audios.transcribe.failed", map[string]any{
			"audioId":  audio.ID,
			"fileName": file.Name,
			"err":      err.Error(),
		})
		return Audio{}, err
	}
	metrics.IncTranscriptionSucceeded()

	transcribedAt := time.Now().UTC()
	if err := s.Repo.UpdateTranscript(ctx, userID, audio.ID, transcript, transcribedAt); err != nil {
		return Audio{}, fmt.Errorf("update transcript: %w", err)
	}
	audio.Transcript = &transcript
	audio.TranscribedAt = &transcribedAt
	return audio, nil
}
