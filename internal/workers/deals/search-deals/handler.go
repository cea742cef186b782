// internal/workers/deals/search-deals/handler.go
package searchdeals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"vc-assistant/internal/common/camunda"
	apperrors "vc-assistant/internal/common/errors"
	"vc-assistant/internal/common/logger"
	"vc-assistant/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "search-deals"
)

var (
	ErrInvalidFilter     = errors.New("INVALID_FILTER")
	ErrSearchQueryFailed = errors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout     = errors.New("SEARCH_TIMEOUT")
)

type Handler struct {
	config   *Config
	searcher repository.DealSearcher
	logger   logger.Logger
}

func NewHandler(config *Config, searcher repository.DealSearcher, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		searcher: searcher,
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
		camunda.FailJob(ctx, client, job, ToStandardError(err), h.logger)
		return
	}

	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Priority < 0 || input.Priority > 5 {
		return nil, fmt.Errorf("%w: priority must be between 1 and 5", ErrInvalidFilter)
	}
	if input.Limit < 0 || input.Limit > h.config.MaxLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidFilter, h.config.MaxLimit)
	}

	result, err := h.searcher.Search(ctx, input.filter())
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrSearchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}

	return &Output{
		Deals:     result.Deals,
		TotalHits: result.TotalHits,
		Took:      result.Took,
	}, nil
}

func ToStandardError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidFilter):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.Is(err, ErrSearchTimeout), errors.Is(err, ErrSearchQueryFailed):
		return apperrors.NewSearchQueryFailedError(err)
	}
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
