// internal/repository/chat_messages.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"vc-assistant/internal/models"

	"github.com/google/uuid"
)

type ChatMessageRepository struct {
	db *sql.DB
}

func (r *ChatMessageRepository) Create(ctx context.Context, m *models.ChatMessage) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = time.Now().UTC()

	var metadata []byte
	if m.Metadata != nil {
		b, err := json.Marshal(m.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		metadata = b
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, user_id, deal_id, role, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, sql.NullString{String: m.UserID, Valid: m.UserID != ""}, nullString(m.DealID),
		m.Role, m.Content, metadata, m.CreatedAt)
	return err
}
