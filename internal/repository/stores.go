// internal/repository/stores.go
package repository

import (
	"context"
	"time"

	"vc-assistant/internal/models"
)

// DealStore is the deal half of the record store.
type DealStore interface {
	GetByID(ctx context.Context, id string) (*models.Deal, error)
	FindActiveByCompanyName(ctx context.Context, companyName string) (*models.Deal, error)
	FindByWebsite(ctx context.Context, website string) (*models.Deal, error)
	ListActive(ctx context.Context) ([]*models.Deal, error)
	CreateIfAbsent(ctx context.Context, d *models.Deal) (*models.Deal, bool, error)
}

type ContactStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Contact, error)
	Create(ctx context.Context, c *models.Contact) error
}

type EmailStore interface {
	Save(ctx context.Context, e *models.Email) error
	LinkDeal(ctx context.Context, emailID, dealID string) error
	LinkContact(ctx context.Context, emailID, contactID string) error
}

type MeetingStore interface {
	GetByID(ctx context.Context, id string) (*models.Meeting, error)
	FindByEventID(ctx context.Context, eventID string) (*models.Meeting, error)
	Create(ctx context.Context, m *models.Meeting) error
	Update(ctx context.Context, m *models.Meeting) error
}

type DocumentStore interface {
	Create(ctx context.Context, d *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	SaveAnalysis(ctx context.Context, id, analysis string, at time.Time) error
}

type ChatMessageStore interface {
	Create(ctx context.Context, m *models.ChatMessage) error
}

// DealSearcher finds deals by free text and facets.
type DealSearcher interface {
	Search(ctx context.Context, filter models.DealFilter) (*DealSearchResult, error)
}

// DealIndexer keeps the search index in step with the deals table.
type DealIndexer interface {
	Index(ctx context.Context, d *models.Deal) error
}

var (
	_ DealStore        = (*DealRepository)(nil)
	_ ContactStore     = (*ContactRepository)(nil)
	_ EmailStore       = (*EmailRepository)(nil)
	_ MeetingStore     = (*MeetingRepository)(nil)
	_ DocumentStore    = (*DocumentRepository)(nil)
	_ ChatMessageStore = (*ChatMessageRepository)(nil)
	_ DealSearcher     = (*DealIndex)(nil)
	_ DealIndexer      = (*DealIndex)(nil)
)
