// internal/workers/documents/analyze-deck/handler.go
package analyzedeck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vc-assistant/internal/common/camunda"
	apperrors "vc-assistant/internal/common/errors"
	"vc-assistant/internal/common/llm"
	"vc-assistant/internal/common/logger"
	"vc-assistant/internal/models"
	"vc-assistant/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "analyze-deck"
)

var (
	ErrMissingDocumentID = errors.New("MISSING_DOCUMENT_ID")
	ErrDocumentNotFound  = errors.New("DOCUMENT_NOT_FOUND")
	ErrLookupFailed      = errors.New("LOOKUP_FAILED")
	ErrUnparseable       = errors.New("ANALYSIS_UNPARSEABLE")
	ErrSaveFailed        = errors.New("SAVE_FAILED")
)

type Handler struct {
	config    *Config
	completer llm.Completer
	documents repository.DocumentStore
	logger    logger.Logger
	now       func() time.Time
}

func NewHandler(config *Config, completer llm.Completer, documents repository.DocumentStore, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		completer: completer,
		documents: documents,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:       func() time.Time { return time.Now().UTC() },
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
		camunda.FailJob(ctx, client, job, ToStandardError(err, input.DocumentID), h.logger)
		return
	}

	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.DocumentID == "" {
		return nil, ErrMissingDocumentID
	}

	if _, err := h.documents.GetByID(ctx, input.DocumentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	text := input.Text
	if text == "" {
		text = h.config.PlaceholderText
	}

	analysis, err := h.Analyze(ctx, input.DocumentID, text)
	if err != nil {
		return nil, err
	}
	return &Output{Success: true, Analysis: analysis}, nil
}

// Analyze reviews deck content and stores the result on the document.
func (h *Handler) Analyze(ctx context.Context, documentID, content string) (*models.DeckAnalysis, error) {
	text, err := h.completer.Complete(ctx, []llm.Turn{{Role: llm.RoleUser, Text: buildPrompt(content)}}, nil)
	if err != nil {
		return nil, err
	}

	completion := llm.ExtractObject(text)
	if !completion.HasPayload() {
		return nil, ErrUnparseable
	}
	var analysis models.DeckAnalysis
	if err := completion.Decode(&analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	encoded, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	if err := h.documents.SaveAnalysis(ctx, documentID, string(encoded), h.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	h.logger.Info("deck analyzed", map[string]interface{}{
		"documentId":     documentID,
		"recommendation": analysis.Recommendation,
	})
	return &analysis, nil
}

func ToStandardError(err error, documentID string) error {
	switch {
	case errors.Is(err, ErrMissingDocumentID):
		return apperrors.NewMissingIdentifierError("documentId")
	case errors.Is(err, ErrDocumentNotFound):
		return apperrors.NewRecordNotFoundError("Document", documentID)
	case errors.Is(err, ErrLookupFailed):
		return apperrors.NewQueryExecutionFailedError("document_lookup", err)
	case errors.Is(err, ErrUnparseable):
		return apperrors.NewAnalysisFailedError(err.Error())
	case errors.Is(err, ErrSaveFailed):
		return apperrors.NewDatabaseInsertFailedError(err)
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
