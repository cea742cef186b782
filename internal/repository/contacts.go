// internal/repository/contacts.go
package repository

import (
	"context"
	"database/sql"
	"time"

	"vc-assistant/internal/models"

	"github.com/google/uuid"
)

type ContactRepository struct {
	db *sql.DB
}

func (r *ContactRepository) FindByEmail(ctx context.Context, email string) (*models.Contact, error) {
	var (
		c    models.Contact
		name sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, created_at FROM contacts WHERE email = $1`, email,
	).Scan(&c.ID, &c.Email, &name, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	c.Name = name.String
	return &c, nil
}

// Create inserts a contact. When the address already exists the stored row
// wins and c.ID is set to its id.
func (r *ContactRepository) Create(ctx context.Context, c *models.Contact) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now().UTC()
	return r.db.QueryRowContext(ctx, `
		INSERT INTO contacts (id, email, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id`,
		c.ID, c.Email, c.Name, c.CreatedAt,
	).Scan(&c.ID)
}
