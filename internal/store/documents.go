package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clipdocs/clipdocs/internal/transcript"
)

// ErrNotFound is returned when a document id is unknown.
var ErrNotFound = errors.New("document not found")

// DocumentRecord is one archived pipeline result.
type DocumentRecord struct {
	ID        uuid.UUID           `json:"id"`
	VideoID   string              `json:"video_id,omitempty"`
	SourceURL string              `json:"source_url,omitempty"`
	Document  transcript.Document `json:"document"`
	CreatedAt time.Time           `json:"created_at"`
}

// DocumentSummary is the listing view, without the payload.
type DocumentSummary struct {
	ID        uuid.UUID `json:"id"`
	VideoID   string    `json:"video_id,omitempty"`
	SourceURL string    `json:"source_url,omitempty"`
	Sections  int       `json:"sections"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveDocument archives a generated document and returns its id.
// Table: documents (id uuid pk, video_id text, source_url text,
// payload jsonb, created_at timestamptz).
func (s *Store) SaveDocument(ctx context.Context, videoID, sourceURL string, doc transcript.Document) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (id, video_id, source_url, payload, created_at)
		VALUES ($1, $2, $3, $4, now())`,
		id, videoID, sourceURL, doc,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert document: %w", err)
	}
	return id, nil
}

// GetDocument loads one archived document by id.
func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (*DocumentRecord, error) {
	var rec DocumentRecord
	err := s.pool.QueryRow(ctx, `
		SELECT id, video_id, source_url, payload, created_at
		FROM documents WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.VideoID, &rec.SourceURL, &rec.Document, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select document: %w", err)
	}
	return &rec, nil
}

// ListDocuments returns the most recent archived documents, newest first.
func (s *Store) ListDocuments(ctx context.Context, limit int) ([]DocumentSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, video_id, source_url, jsonb_array_length(payload->'documentation'), created_at
		FROM documents ORDER BY created_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentSummary
	for rows.Next() {
		var d DocumentSummary
		if err := rows.Scan(&d.ID, &d.VideoID, &d.SourceURL, &d.Sections, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
