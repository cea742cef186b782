// internal/repository/deals.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vc-assistant/internal/models"

	"github.com/google/uuid"
)

type DealRepository struct {
	db *sql.DB
}

const dealColumns = `id, company_name, website, stage, sector, check_size, priority, status, pass_reason, created_at, updated_at`

func scanDeal(row rowScanner) (*models.Deal, error) {
	var (
		d          models.Deal
		website    sql.NullString
		sector     sql.NullString
		checkSize  sql.NullFloat64
		passReason sql.NullString
	)
	if err := row.Scan(&d.ID, &d.CompanyName, &website, &d.Stage, &sector, &checkSize,
		&d.Priority, &d.Status, &passReason, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Website = stringPtr(website)
	d.Sector = stringPtr(sector)
	d.PassReason = stringPtr(passReason)
	if checkSize.Valid {
		v := checkSize.Float64
		d.CheckSize = &v
	}
	return &d, nil
}

// GetByID returns ErrNotFound when no deal has id.
func (r *DealRepository) GetByID(ctx context.Context, id string) (*models.Deal, error) {
	d, err := scanDeal(r.db.QueryRowContext(ctx,
		`SELECT `+dealColumns+` FROM deals WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

// FindActiveByCompanyName matches company_name exactly (case-sensitive).
func (r *DealRepository) FindActiveByCompanyName(ctx context.Context, companyName string) (*models.Deal, error) {
	d, err := scanDeal(r.db.QueryRowContext(ctx,
		`SELECT `+dealColumns+` FROM deals WHERE company_name = $1 AND status = 'active' LIMIT 1`,
		companyName))
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

// FindByWebsite returns the oldest deal whose website equals website.
func (r *DealRepository) FindByWebsite(ctx context.Context, website string) (*models.Deal, error) {
	d, err := scanDeal(r.db.QueryRowContext(ctx,
		`SELECT `+dealColumns+` FROM deals WHERE website = $1 ORDER BY created_at LIMIT 1`,
		website))
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

// ListActive returns every active deal, oldest first.
func (r *DealRepository) ListActive(ctx context.Context) ([]*models.Deal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+dealColumns+` FROM deals WHERE status = 'active' ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []*models.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

// CreateIfAbsent inserts d unless an active deal with the same company name
// exists, in which case that deal is returned with created=false.
func (r *DealRepository) CreateIfAbsent(ctx context.Context, d *models.Deal) (*models.Deal, bool, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	var checkSize sql.NullFloat64
	if d.CheckSize != nil {
		checkSize = sql.NullFloat64{Float64: *d.CheckSize, Valid: true}
	}

	created, err := scanDeal(r.db.QueryRowContext(ctx, `
		INSERT INTO deals (id, company_name, website, stage, sector, check_size, priority, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (company_name) WHERE status = 'active' DO NOTHING
		RETURNING `+dealColumns,
		d.ID, d.CompanyName, nullString(d.Website), d.Stage, nullString(d.Sector), checkSize,
		d.Priority, d.Status, now,
	))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("insert deal: %w", err)
	}

	existing, err := r.FindActiveByCompanyName(ctx, d.CompanyName)
	if err != nil {
		return nil, false, fmt.Errorf("reload conflicting deal: %w", err)
	}
	return existing, false, nil
}
