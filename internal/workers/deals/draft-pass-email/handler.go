// internal/workers/deals/draft-pass-email/handler.go
package draftpassemail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"vc-assistant/internal/common/camunda"
	apperrors "vc-assistant/internal/common/errors"
	"vc-assistant/internal/common/llm"
	"vc-assistant/internal/common/logger"
	"vc-assistant/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "draft-pass-email"
)

var (
	ErrMissingDealID      = errors.New("MISSING_DEAL_ID")
	ErrInvalidDetailLevel = errors.New("INVALID_DETAIL_LEVEL")
	ErrMissingRecipient   = errors.New("MISSING_RECIPIENT")
	ErrDealNotFound       = errors.New("DEAL_NOT_FOUND")
	ErrLookupFailed       = errors.New("LOOKUP_FAILED")
	ErrSendFailed         = errors.New("SEND_FAILED")
)

// MailSender delivers plain-text mail and returns the provider message id.
type MailSender interface {
	SendText(ctx context.Context, to, subject, body string) (string, error)
}

type Handler struct {
	config    *Config
	deals     repository.DealStore
	completer llm.Completer
	sender    MailSender
	logger    logger.Logger
}

// NewHandler builds the handler. sender may be nil, in which case drafts are
// never sent.
func NewHandler(config *Config, deals repository.DealStore, completer llm.Completer, sender MailSender, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		deals:     deals,
		completer: completer,
		sender:    sender,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		camunda.FailJob(ctx, client, job, ToStandardError(err, input.DealID), h.logger)
		return
	}

	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.DealID == "" {
		return nil, ErrMissingDealID
	}
	detail := input.DetailLevel
	if detail == "" {
		detail = DetailBrief
	}
	if detail != DetailBrief && detail != DetailDetailed {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDetailLevel, detail)
	}
	if input.Send && strings.TrimSpace(input.To) == "" {
		return nil, ErrMissingRecipient
	}

	deal, err := h.deals.GetByID(ctx, input.DealID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	draft, err := h.completer.Complete(ctx, []llm.Turn{{Role: llm.RoleUser, Text: buildPrompt(deal, input.Reason, detail)}}, nil)
	if err != nil {
		return nil, err
	}

	out := &Output{Draft: draft}
	if !input.Send {
		return out, nil
	}
	if h.sender == nil {
		h.logger.Warn("mail sender not configured, draft not sent", map[string]interface{}{"dealId": deal.ID})
		return out, nil
	}

	id, err := h.sender.SendText(ctx, input.To, fmt.Sprintf(h.config.SubjectFormat, deal.CompanyName), draft)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	out.Sent, out.MessageID = true, id

	h.logger.Info("pass email sent", map[string]interface{}{
		"dealId":    deal.ID,
		"messageId": id,
	})
	return out, nil
}

func ToStandardError(err error, dealID string) error {
	switch {
	case errors.Is(err, ErrMissingDealID):
		return apperrors.NewMissingIdentifierError("dealId")
	case errors.Is(err, ErrInvalidDetailLevel), errors.Is(err, ErrMissingRecipient):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.Is(err, ErrDealNotFound):
		return apperrors.NewRecordNotFoundError("Deal", dealID)
	case errors.Is(err, ErrLookupFailed):
		return apperrors.NewQueryExecutionFailedError("deal_lookup", err)
	case errors.Is(err, ErrSendFailed):
		return apperrors.NewNotificationSendFailedError("ses", err)
	case errors.Is(err, llm.ErrCompletionTimeout):
		return apperrors.NewCompletionTimeoutError()
	case errors.Is(err, llm.ErrCompletionFailed):
		return apperrors.NewCompletionFailedError(err)
	}
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
