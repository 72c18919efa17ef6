package audios

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Audio // userID -> audios
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Audio)}
}

// Create stores a new audio record.
func (r *MemoryRepo) Create(ctx context.Context, audio Audio) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[audio.UserID] = append(r.data[audio.UserID], audio)
	return nil
}

// UpdateTranscript sets transcript and transcribedAt together.
func (r *MemoryRepo) UpdateTranscript(ctx context.Context, userID, audioID, transcript string, transcribedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.data[userID]
	for i := range items {
		if items[i].ID == audioID {
			t := transcript
			at := transcribedAt
			items[i].Transcript = &t
			items[i].TranscribedAt = &at
			r.data[userID] = items
			return nil
		}
	}
	return ErrNotFound
}

// GetByID returns an audio owned by userID.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, audioID string) (Audio, error) {
	if err := ctx.Err(); err != nil {
		return Audio{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.data[userID] {
		if a.ID == audioID {
			return a, nil
		}
	}
	return Audio{}, ErrNotFound
}

// ListByUser returns all audios for a user, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Audio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := append([]Audio(nil), r.data[userID]...)
	sort.Slice(items, func(i, j int) bool {
		return items[i].UploadedAt.After(items[j].UploadedAt)
	})
	return items, nil
}
