package audios

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	audio := Audio{
		ID:         "audio-1",
		UserID:     "user-1",
		Filename:   "call.wav",
		StorageKey: "recordings/u/abc-call.wav",
		UploadedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO audios").
		WithArgs(audio.ID, audio.UserID, audio.Filename, audio.StorageKey, audio.UploadedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), audio); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateTranscript(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	at := time.Now().UTC()

	mock.ExpectExec("UPDATE audios").
		WithArgs("hello world", at, "audio-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateTranscript(context.Background(), "user-1", "audio-1", "hello world", at); err != nil {
		t.Fatalf("UpdateTranscript: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateTranscriptNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	at := time.Now().UTC()

	mock.ExpectExec("UPDATE audios").
		WithArgs("text", at, "missing", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateTranscript(context.Background(), "user-1", "missing", "text", at)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoGetByIDScansNullTranscript(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	uploadedAt := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "filename", "storage_key", "uploaded_at", "transcript", "transcribed_at"}).
		AddRow("audio-1", "user-1", "call.wav", "key", uploadedAt, nil, nil)

	mock.ExpectQuery("SELECT id, user_id, filename").
		WithArgs("audio-1", "user-1").
		WillReturnRows(rows)

	audio, err := repo.GetByID(context.Background(), "user-1", "audio-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if audio.Transcript != nil || audio.TranscribedAt != nil {
		t.Fatalf("expected null transcript fields, got %+v", audio)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	rows := sqlmock.NewRows([]string{"id", "user_id", "filename", "storage_key", "uploaded_at", "transcript", "transcribed_at"})

	mock.ExpectQuery("SELECT id, user_id, filename").
		WithArgs("missing", "user-1").
		WillReturnRows(rows)

	if _, err := repo.GetByID(context.Background(), "user-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
