// internal/workers/inbox/sync-inbox/handler.go
package syncinbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"vc-assistant/internal/common/camunda"
	apperrors "vc-assistant/internal/common/errors"
	"vc-assistant/internal/common/google"
	"vc-assistant/internal/common/logger"
	"vc-assistant/internal/models"
	"vc-assistant/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "sync-inbox"
)

var (
	ErrMissingTokens   = errors.New("MISSING_TOKENS")
	ErrMailFetchFailed = errors.New("MAIL_FETCH_FAILED")
	ErrEmailSaveFailed = errors.New("EMAIL_SAVE_FAILED")
	ErrReconcileFailed = errors.New("RECONCILE_FAILED")
)

// Classifier labels a fetched email. It never fails.
type Classifier interface {
	Classify(ctx context.Context, raw models.RawEmail) models.Classification
}

// Reconciler links an email to its deal, creating the deal when needed.
type Reconciler interface {
	ReconcileDeal(ctx context.Context, companyName string, extracted models.ExtractedData,
		senderEmail, emailID string) (*models.Deal, error)
}

// Alerter publishes a short notification.
type Alerter interface {
	Publish(ctx context.Context, subject, message string) error
}

type Handler struct {
	config     *Config
	connector  google.Connector
	classifier Classifier
	reconciler Reconciler
	emails     repository.EmailStore
	alerter    Alerter
	logger     logger.Logger
}

// NewHandler wires inbox sync. alerter may be nil.
func NewHandler(config *Config, connector google.Connector, classifier Classifier, reconciler Reconciler,
	emails repository.EmailStore, alerter Alerter, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		connector:  connector,
		classifier: classifier,
		reconciler: reconciler,
		emails:     emails,
		alerter:    alerter,
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		camunda.FailJob(ctx, client, job, ToStandardError(err), h.logger)
		return
	}

	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

// execute handles messages one at a time in list order; the first failure
// aborts the batch.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if !input.Tokens.Valid() {
		return nil, ErrMissingTokens
	}

	source, err := h.connector.Mail(ctx, input.Tokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMailFetchFailed, err)
	}

	query := input.Query
	if query == "" {
		query = h.config.DefaultQuery
	}
	maxResults := input.MaxResults
	if maxResults <= 0 {
		maxResults = h.config.MaxResults
	}

	messages, err := source.FetchMessages(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMailFetchFailed, err)
	}

	synced := make([]models.Email, 0, len(messages))
	for _, raw := range messages {
		email, err := h.processMessage(ctx, raw)
		if err != nil {
			return nil, err
		}
		synced = append(synced, *email)
	}

	h.logger.Info("inbox synced", map[string]interface{}{
		"query": query,
		"count": len(synced),
	})
	return &Output{Success: true, Count: len(synced), Emails: synced}, nil
}

func (h *Handler) processMessage(ctx context.Context, raw models.RawEmail) (*models.Email, error) {
	c := h.classifier.Classify(ctx, raw)

	email := &models.Email{
		GmailMessageID: raw.MessageID,
		GmailThreadID:  raw.ThreadID,
		From:           raw.From,
		To:             raw.To,
		Subject:        raw.Subject,
		Snippet:        raw.Snippet,
		Body:           raw.Body,
		ReceivedAt:     raw.ReceivedAt,
		IsFounderEmail: c.IsTargetEntity,
		IsPriority:     c.IsPriority,
		Classification: c.Category,
		ExtractedData:  c.Extracted,
	}
	if err := h.emails.Save(ctx, email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmailSaveFailed, err)
	}

	if c.IsTargetEntity && c.CompanyName() != "" {
		deal, err := h.reconciler.ReconcileDeal(ctx, c.CompanyName(), c.Extracted, raw.From, email.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReconcileFailed, err)
		}
		email.DealID = &deal.ID

		if c.IsPriority {
			h.alert(ctx, email, deal)
		}
	}
	return email, nil
}

func (h *Handler) alert(ctx context.Context, email *models.Email, deal *models.Deal) {
	if h.alerter == nil || !h.config.AlertPriority {
		return
	}
	subject := fmt.Sprintf("Priority founder email: %s", deal.CompanyName)
	message := fmt.Sprintf("From: %s\nSubject: %s\n\n%s", email.From, email.Subject, email.Snippet)
	if err := h.alerter.Publish(ctx, subject, message); err != nil {
		h.logger.Warn("priority alert failed", map[string]interface{}{
			"emailId": email.ID,
			"error":   err.Error(),
		})
	}
}

// ToStandardError maps the worker's sentinels onto API and BPMN error codes.
func ToStandardError(err error) error {
	switch {
	case errors.Is(err, ErrMissingTokens):
		return apperrors.NewMissingTokenError()
	case errors.Is(err, ErrMailFetchFailed):
		return apperrors.NewMailSyncFailedError(err)
	case errors.Is(err, ErrEmailSaveFailed), errors.Is(err, ErrReconcileFailed):
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
