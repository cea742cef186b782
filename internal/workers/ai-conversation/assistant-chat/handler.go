// internal/workers/ai-conversation/assistant-chat/handler.go
package assistantchat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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
	TaskType = "assistant-chat"

	roleSystem = "system"
)

var (
	ErrInvalidMessages = errors.New("INVALID_MESSAGES")
	ErrPersistFailed   = errors.New("PERSIST_FAILED")
)

type Handler struct {
	config    *Config
	completer llm.Completer
	messages  repository.ChatMessageStore
	logger    logger.Logger
}

func NewHandler(config *Config, completer llm.Completer, messages repository.ChatMessageStore, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		completer: completer,
		messages:  messages,
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
		camunda.FailJob(ctx, client, job, ToStandardError(err), h.logger)
		return
	}

	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	conversation, err := toConversation(input.Messages)
	if err != nil {
		return nil, err
	}

	var chatContext map[string]interface{}
	if input.DealID != "" {
		chatContext = map[string]interface{}{"dealId": input.DealID}
	}

	text, err := h.completer.Complete(ctx, conversation, chatContext)
	if err != nil {
		return nil, err
	}
	completion := llm.Extract(text)
	metadata := payloadMetadata(completion)

	userID := input.UserID
	if userID == "" {
		userID = h.config.DefaultUserID
	}
	var dealID *string
	if input.DealID != "" {
		dealID = &input.DealID
	}

	if last := input.Messages[len(input.Messages)-1]; last.Role == string(llm.RoleUser) {
		if err := h.messages.Create(ctx, &models.ChatMessage{
			UserID:  userID,
			DealID:  dealID,
			Role:    last.Role,
			Content: last.Content,
		}); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistFailed, err)
		}
	}

	if err := h.messages.Create(ctx, &models.ChatMessage{
		UserID:   userID,
		DealID:   dealID,
		Role:     string(llm.RoleAssistant),
		Content:  completion.Text,
		Metadata: metadata,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	out := &Output{Message: completion.Text, Metadata: make(map[string]interface{}, len(metadata)+1)}
	for k, v := range metadata {
		out.Metadata[k] = v
	}
	out.Metadata["suggestedActions"] = Suggest(completion.Text)
	return out, nil
}

// toConversation drops system turns and rejects unknown roles.
func toConversation(messages []Message) ([]llm.Turn, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: no messages", ErrInvalidMessages)
	}

	turns := make([]llm.Turn, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case roleSystem:
			continue
		case string(llm.RoleUser), string(llm.RoleAssistant):
			turns = append(turns, llm.Turn{Role: llm.Role(m.Role), Text: m.Content})
		default:
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidMessages, m.Role)
		}
	}
	if len(turns) == 0 {
		return nil, fmt.Errorf("%w: only system messages", ErrInvalidMessages)
	}
	return turns, nil
}

// payloadMetadata returns the fenced payload as a map. Non-object payloads
// are kept under "data".
func payloadMetadata(c llm.Completion) map[string]interface{} {
	if !c.HasPayload() {
		return map[string]interface{}{}
	}
	if m, ok := c.Payload.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{"data": c.Payload}
}

func ToStandardError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidMessages):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.Is(err, llm.ErrCompletionTimeout):
		return apperrors.NewCompletionTimeoutError()
	case errors.Is(err, llm.ErrCompletionFailed):
		return apperrors.NewCompletionFailedError(err)
	case errors.Is(err, ErrPersistFailed):
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
