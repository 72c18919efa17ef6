package stt

import (
	"context"
	"fmt"
	"time"

	"callcoach-backend/internal/shared/telemetry"
)

// Backend is a single speech-to-text service.
type Backend interface {
	Name() string
	Transcribe(ctx context.Context, audio []byte, fileName string) (string, error)
}

// TranscriptionError is returned when every configured backend failed.
// It carries the last backend tried and its failure.
type TranscriptionError struct {
	Backend string
	Cause   error
}

func (e *TranscriptionError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("transcription failed (backend %s)", e.Backend)
	}
	return fmt.Sprintf("transcription failed (backend %s): %v", e.Backend, e.Cause)
}

func (e *TranscriptionError) Unwrap() error { return e.Cause }

// Gateway tries backends in order and returns the first transcript.
type Gateway struct {
	backends []Backend
	timeout  time.Duration
}

// NewGateway builds a Gateway over the given backends. Each backend call
// gets its own timeout.
func NewGateway(timeout time.Duration, backends ...Backend) *Gateway {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Gateway{backends: backends, timeout: timeout}
}

// Transcribe runs the ordered fallback chain. A backend failure advances
// to the next backend; only full exhaustion returns an error.
func (g *Gateway) Transcribe(ctx context.Context, audio []byte, fileName string) (string, error) {
	if len(g.backends) == 0 {
		return "", &TranscriptionError{Backend: "none", Cause: fmt.Errorf("no transcription backend configured")}
	}

	var lastErr *TranscriptionError
	for _, backend := range g.backends {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		text, err := backend.Transcribe(callCtx, audio, fileName)
		cancel()
		if err == nil && text != "" {
			return text, nil
		}
		if err == nil {
			err = fmt.Errorf("backend returned no text")
		}
		telemetry.Error("stt.backend.failed", map[string]any{
			"backend":  backend.Name(),
			"fileName": fileName,
			"err":      err.Error(),
		})
		lastErr = &TranscriptionError{Backend: backend.Name(), Cause: err}
	}
	return "", lastErr
}
