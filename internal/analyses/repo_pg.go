package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// PGRepo implements Repo using Postgres. The full record is stored as a
// jsonb payload; model and timestamps are duplicated into columns for
// indexing.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new analysis row.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis payload: %w", err)
	}
	const query = `
INSERT INTO analyses (id, audio_id, payload, model, generated_at, analyzed_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = r.DB.ExecContext(
		ctx,
		query,
		analysis.ID,
		analysis.AudioID,
		payload,
		analysis.Metadata.Model,
		analysis.Metadata.GeneratedAt,
		analysis.AnalyzedAt,
	)
	return err
}

// ListByAudioIDs returns analyses of the given audios, newest first.
func (r *PGRepo) ListByAudioIDs(ctx context.Context, audioIDs []string) ([]Analysis, error) {
	if len(audioIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(audioIDs))
	args := make([]any, len(audioIDs))
	for i, id := range audioIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`
SELECT payload
FROM analyses
WHERE audio_id IN (%s)
ORDER BY analyzed_at DESC`, strings.Join(placeholders, ", "))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var analysis Analysis
		if err := json.Unmarshal(payload, &analysis); err != nil {
			return nil, fmt.Errorf("unmarshal analysis payload: %w", err)
		}
		out = append(out, analysis)
	}
	return out, rows.Err()
}
