package analyses

import "context"

// Repo persists analysis records. Records are insert-only; re-analysis
// adds a row instead of replacing one.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	// ListByAudioIDs returns every analysis of the given audios, newest
	// first per audio.
	ListByAudioIDs(ctx context.Context, audioIDs []string) ([]Analysis, error)
}
