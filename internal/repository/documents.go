// internal/repository/documents.go
package repository

import (
	"context"
	"database/sql"
	"time"

	"vc-assistant/internal/models"

	"github.com/google/uuid"
)

type DocumentRepository struct {
	db *sql.DB
}

func (r *DocumentRepository) Create(ctx context.Context, d *models.Document) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (id, deal_id, name, type, url, size_bytes, mime_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, nullString(d.DealID), d.Name, d.Type, d.URL, d.SizeBytes, d.MimeType, d.CreatedAt)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	var (
		d          models.Document
		dealID     sql.NullString
		sizeBytes  sql.NullInt64
		mimeType   sql.NullString
		analysis   sql.NullString
		analyzedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, deal_id, name, type, url, size_bytes, mime_type, ai_analysis, analyzed_at, created_at
		FROM documents WHERE id = $1`, id,
	).Scan(&d.ID, &dealID, &d.Name, &d.Type, &d.URL, &sizeBytes, &mimeType, &analysis, &analyzedAt, &d.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	d.DealID = stringPtr(dealID)
	d.SizeBytes = sizeBytes.Int64
	d.MimeType = mimeType.String
	d.AIAnalysis = stringPtr(analysis)
	if analyzedAt.Valid {
		t := analyzedAt.Time
		d.AnalyzedAt = &t
	}
	return &d, nil
}

// SaveAnalysis stores the serialized analysis and its timestamp.
func (r *DocumentRepository) SaveAnalysis(ctx context.Context, id, analysis string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET ai_analysis = $1, analyzed_at = $2 WHERE id = $3`, analysis, at, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
