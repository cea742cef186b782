// internal/repository/emails.go
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

type EmailRepository struct {
	db *sql.DB
}

// Save upserts by Gmail message id. A re-sync refreshes the classification
// and keeps any existing deal/contact link. e.ID is set to the stored id.
func (r *EmailRepository) Save(ctx context.Context, e *models.Email) error {
	extracted, err := json.Marshal(e.ExtractedData)
	if err != nil {
		return fmt.Errorf("encode extracted data: %w", err)
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var dealID, contactID sql.NullString
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO emails (id, gmail_message_id, gmail_thread_id, "from", "to", subject, snippet, body,
			received_at, is_founder_email, is_priority, classification, extracted_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (gmail_message_id) DO UPDATE SET
			is_founder_email = EXCLUDED.is_founder_email,
			is_priority = EXCLUDED.is_priority,
			classification = EXCLUDED.classification,
			extracted_data = EXCLUDED.extracted_data
		RETURNING id, deal_id, contact_id`,
		e.ID, e.GmailMessageID, e.GmailThreadID, e.From, e.To, e.Subject, e.Snippet, e.Body,
		e.ReceivedAt, e.IsFounderEmail, e.IsPriority, string(e.Classification), extracted, e.CreatedAt,
	).Scan(&e.ID, &dealID, &contactID)
	if err != nil {
		return fmt.Errorf("save email: %w", err)
	}
	e.DealID = stringPtr(dealID)
	e.ContactID = stringPtr(contactID)
	return nil
}

// LinkDeal points the email at dealID.
func (r *EmailRepository) LinkDeal(ctx context.Context, emailID, dealID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE emails SET deal_id = $1 WHERE id = $2`, dealID, emailID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// LinkContact sets contact_id when it is still empty.
func (r *EmailRepository) LinkContact(ctx context.Context, emailID, contactID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE emails SET contact_id = $1 WHERE id = $2 AND contact_id IS NULL`, contactID, emailID)
	return err
}
