// internal/workers/inbox/classify-email/handler.go
package classifyemail

import (
	"context"
	"encoding/json"
	"errors"

	"vc-assistant/internal/common/camunda"
	apperrors "vc-assistant/internal/common/errors"
	"vc-assistant/internal/common/llm"
	"vc-assistant/internal/common/logger"
	"vc-assistant/internal/common/metrics"
	"vc-assistant/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "classify-email"

	cacheKeyPrefix = "classification:"
)

var (
	ErrInvalidInput = errors.New("INVALID_INPUT")
)

type Handler struct {
	config    *Config
	completer llm.Completer
	redis     *redis.Client
	logger    logger.Logger
}

// NewHandler wires the classifier. redis may be nil to disable caching.
func NewHandler(config *Config, completer llm.Completer, redis *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		completer: completer,
		redis:     redis,
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
		camunda.FailJob(ctx, client, job, apperrors.NewInvalidInputError(err.Error()), h.logger)
		return
	}

	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

// execute never fails on model trouble: unusable output and provider errors
// both produce the fallback classification.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrInvalidInput
	}

	if cached, ok := h.fromCache(ctx, input.MessageID); ok {
		metrics.Classifications.WithLabelValues(string(cached.Category), SourceCache).Inc()
		return &Output{Classification: cached, Source: SourceCache}, nil
	}

	classification, source := h.classify(ctx, input)
	metrics.Classifications.WithLabelValues(string(classification.Category), source).Inc()

	if source == SourceModel {
		h.toCache(ctx, input.MessageID, classification)
	}

	h.logger.Info("email classified", map[string]interface{}{
		"messageId":      input.MessageID,
		"category":       string(classification.Category),
		"isFounderEmail": classification.IsTargetEntity,
		"isPriority":     classification.IsPriority,
		"source":         source,
	})
	return &Output{Classification: classification, Source: source}, nil
}

func (h *Handler) classify(ctx context.Context, input *Input) (models.Classification, string) {
	text, err := h.completer.Complete(ctx, []llm.Turn{{Role: llm.RoleUser, Text: buildPrompt(input)}}, nil)
	if err != nil {
		h.logger.Warn("classification completion failed", map[string]interface{}{
			"messageId": input.MessageID,
			"error":     err.Error(),
		})
		return models.FallbackClassification(), SourceFallback
	}

	c, ok := ParseClassification(text)
	if !ok {
		h.logger.Warn("classification output unusable", map[string]interface{}{
			"messageId": input.MessageID,
		})
		return c, SourceFallback
	}
	return c, SourceModel
}

// ParseClassification reads a fenced json block, or failing that the outer
// JSON object, from text. ok is false when neither decodes, in which case
// the fallback classification is returned.
func ParseClassification(text string) (models.Classification, bool) {
	completion := llm.Extract(text)
	if !completion.HasPayload() {
		completion = llm.ExtractObject(text)
	}
	if !completion.HasPayload() {
		return models.FallbackClassification(), false
	}

	c := models.FallbackClassification()
	if err := completion.Decode(&c); err != nil {
		return models.FallbackClassification(), false
	}
	return c, true
}

// Classify is the in-process entry point used by inbox sync.
func (h *Handler) Classify(ctx context.Context, raw models.RawEmail) models.Classification {
	out, _ := h.execute(ctx, &Input{
		MessageID: raw.MessageID,
		From:      raw.From,
		Subject:   raw.Subject,
		Snippet:   raw.Snippet,
		Body:      raw.Body,
	})
	return out.Classification
}

func (h *Handler) fromCache(ctx context.Context, messageID string) (models.Classification, bool) {
	if h.redis == nil || messageID == "" {
		return models.Classification{}, false
	}
	val, err := h.redis.Get(ctx, cacheKeyPrefix+messageID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			h.logger.Debug("classification cache read failed", map[string]interface{}{"error": err.Error()})
		}
		return models.Classification{}, false
	}
	var c models.Classification
	if err := json.Unmarshal([]byte(val), &c); err != nil {
		return models.Classification{}, false
	}
	return c, true
}

func (h *Handler) toCache(ctx context.Context, messageID string, c models.Classification) {
	if h.redis == nil || messageID == "" {
		return
	}
	data, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := h.redis.Set(ctx, cacheKeyPrefix+messageID, data, h.config.CacheTTL).Err(); err != nil {
		h.logger.Debug("classification cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
