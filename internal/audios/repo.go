package audios

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when an audio does not exist for the given owner.
var ErrNotFound = errors.New("audio not found")

// Repo persists audio records. Lookups are always scoped to an owner.
type Repo interface {
	Create(ctx context.Context, audio Audio) error
	// UpdateTranscript sets the transcript and transcription timestamp in
	// one write. Transcripts are written at most once per audio.
	UpdateTranscript(ctx context.Context, userID, audioID, transcript string, transcribedAt time.Time) error
	GetByID(ctx context.Context, userID, audioID string) (Audio, error)
	ListByUser(ctx context.Context, userID string) ([]Audio, error)
}
