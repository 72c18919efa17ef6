package audios

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new audio record.
func (r *PGRepo) Create(ctx context.Context, audio Audio) error {
	const query = `
INSERT INTO audios (id, user_id, filename, storage_key, uploaded_at, transcript, transcribed_at)
VALUES ($1, $2, $3, $4, $5, NULL, NULL)`
	_, err := r.DB.ExecContext(ctx, query, audio.ID, audio.UserID, audio.Filename, audio.StorageKey, audio.UploadedAt)
	return err
}

// UpdateTranscript sets transcript and transcribed_at in one statement.
func (r *PGRepo) UpdateTranscript(ctx context.Context, userID, audioID, transcript string, transcribedAt time.Time) error {
	const query = `
UPDATE audios
SET transcript = $1, transcribed_at = $2
WHERE id = $3 AND user_id = $4 AND transcript IS NULL`
	res, err := r.DB.ExecContext(ctx, query, transcript, transcribedAt, audioID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns an audio owned by userID.
func (r *PGRepo) GetByID(ctx context.Context, userID, audioID string) (Audio, error) {
	const query = `
SELECT id, user_id, filename, storage_key, uploaded_at, transcript, transcribed_at
FROM audios
WHERE id = $1 AND user_id = $2`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, audioID, userID))
}

// ListByUser returns all audios for a user, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Audio, error) {
	const query = `
SELECT id, user_id, filename, storage_key, uploaded_at, transcript, transcribed_at
FROM audios
WHERE user_id = $1
ORDER BY uploaded_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Audio
	for rows.Next() {
		audio, err := scanAudio(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, audio)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row rowScanner) (Audio, error) {
	audio, err := scanAudio(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Audio{}, ErrNotFound
		}
		return Audio{}, err
	}
	return audio, nil
}

func scanAudio(row rowScanner) (Audio, error) {
	var audio Audio
	var transcript sql.NullString
	var transcribedAt sql.NullTime
	err := row.Scan(
		&audio.ID,
		&audio.UserID,
		&audio.Filename,
		&audio.StorageKey,
		&audio.UploadedAt,
		&transcript,
		&transcribedAt,
	)
	if err != nil {
		return Audio{}, err
	}
	if transcript.Valid {
		audio.Transcript = &transcript.String
	}
	if transcribedAt.Valid {
		audio.TranscribedAt = &transcribedAt.Time
	}
	return audio, nil
}
