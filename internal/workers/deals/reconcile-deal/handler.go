// internal/workers/deals/reconcile-deal/handler.go
package reconciledeal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"vc-assistant/internal/common/camunda"
	apperrors "vc-assistant/internal/common/errors"
	"vc-assistant/internal/common/logger"
	"vc-assistant/internal/common/metrics"
	"vc-assistant/internal/models"
	"vc-assistant/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "reconcile-deal"
)

var (
	ErrMissingCompanyName = errors.New("MISSING_COMPANY_NAME")
	ErrDealLookupFailed   = errors.New("DEAL_LOOKUP_FAILED")
	ErrDealCreateFailed   = errors.New("DEAL_CREATE_FAILED")
	ErrEmailLinkFailed    = errors.New("EMAIL_LINK_FAILED")
)

type Handler struct {
	config   *Config
	deals    repository.DealStore
	contacts repository.ContactStore
	emails   repository.EmailStore
	index    repository.DealIndexer
	logger   logger.Logger
}

// NewHandler wires the reconciler. index may be nil.
func NewHandler(config *Config, deals repository.DealStore, contacts repository.ContactStore,
	emails repository.EmailStore, index repository.DealIndexer, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		deals:    deals,
		contacts: contacts,
		emails:   emails,
		index:    index,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		camunda.FailJob(ctx, client, job, apperrors.NewInvalidInputError(err.Error()), h.logger)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		camunda.FailJob(ctx, client, job, toStandardError(err), h.logger)
		return
	}

	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.CompanyName == "" {
		return nil, ErrMissingCompanyName
	}

	deal, created, err := h.reconcile(ctx, input.CompanyName, input.ExtractedData, input.SenderEmail, input.EmailID)
	if err != nil {
		return nil, err
	}
	return &Output{Deal: deal, Created: created}, nil
}

// ReconcileDeal links the email to the active deal named companyName. When
// none exists the deal is created and the sender recorded as a contact.
func (h *Handler) ReconcileDeal(ctx context.Context, companyName string, extracted models.ExtractedData,
	senderEmail, emailID string) (*models.Deal, error) {
	if companyName == "" {
		return nil, ErrMissingCompanyName
	}
	deal, _, err := h.reconcile(ctx, companyName, extracted, senderEmail, emailID)
	return deal, err
}

func (h *Handler) reconcile(ctx context.Context, companyName string, extracted models.ExtractedData,
	senderEmail, emailID string) (*models.Deal, bool, error) {
	deal, err := h.deals.FindActiveByCompanyName(ctx, companyName)
	created := false

	switch {
	case err == nil:
		metrics.Reconciliations.WithLabelValues("matched").Inc()
	case errors.Is(err, repository.ErrNotFound):
		deal, created, err = h.deals.CreateIfAbsent(ctx, newDeal(companyName, extracted))
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrDealCreateFailed, err)
		}
		if created {
			metrics.Reconciliations.WithLabelValues("created").Inc()
			h.indexDeal(ctx, deal)
		} else {
			metrics.Reconciliations.WithLabelValues("matched").Inc()
		}
	default:
		return nil, false, fmt.Errorf("%w: %v", ErrDealLookupFailed, err)
	}

	if emailID != "" {
		if err := h.emails.LinkDeal(ctx, emailID, deal.ID); err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrEmailLinkFailed, err)
		}
	}

	// A founder contact is only recorded alongside a newly created deal.
	if created {
		h.ensureContact(ctx, senderEmail, emailID)
	}

	h.logger.Info("deal reconciled", map[string]interface{}{
		"dealId":      deal.ID,
		"companyName": companyName,
		"created":     created,
	})
	return deal, created, nil
}

func newDeal(companyName string, extracted models.ExtractedData) *models.Deal {
	sector := models.DefaultDealSector
	if extracted.Sector != nil {
		sector = *extracted.Sector
	}

	d := &models.Deal{
		CompanyName: companyName,
		Stage:       models.StageInbox,
		Sector:      &sector,
		Priority:    models.DefaultDealPriority,
		Status:      models.DealStatusActive,
	}
	if extracted.AskAmount != nil {
		size := ParseCheckSize(*extracted.AskAmount)
		d.CheckSize = &size
	}
	return d
}

// ensureContact is best effort; failures are logged and do not undo the
// deal link.
func (h *Handler) ensureContact(ctx context.Context, senderEmail, emailID string) {
	if senderEmail == "" {
		return
	}
	address := EmailAddress(senderEmail)

	contact, err := h.contacts.FindByEmail(ctx, address)
	if errors.Is(err, repository.ErrNotFound) {
		contact = &models.Contact{Email: address, Name: ExtractEmailName(senderEmail)}
		err = h.contacts.Create(ctx, contact)
	}
	if err != nil {
		h.logger.Warn("failed to ensure contact", map[string]interface{}{
			"email": address,
			"error": err.Error(),
		})
		return
	}

	if emailID != "" {
		if err := h.emails.LinkContact(ctx, emailID, contact.ID); err != nil {
			h.logger.Warn("failed to link contact", map[string]interface{}{
				"emailId": emailID,
				"error":   err.Error(),
			})
		}
	}
}

func (h *Handler) indexDeal(ctx context.Context, deal *models.Deal) {
	if h.index == nil {
		return
	}
	if err := h.index.Index(ctx, deal); err != nil {
		h.logger.Warn("failed to index deal", map[string]interface{}{
			"dealId": deal.ID,
			"error":  err.Error(),
		})
	}
}

func toStandardError(err error) error {
	switch {
	case errors.Is(err, ErrMissingCompanyName):
		return apperrors.NewMissingIdentifierError("companyName")
	case errors.Is(err, ErrDealLookupFailed):
		return apperrors.NewQueryExecutionFailedError("deal_lookup", err)
	case errors.Is(err, ErrDealCreateFailed), errors.Is(err, ErrEmailLinkFailed):
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
