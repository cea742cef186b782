// internal/workers/calendar/prepare-call/handler.go
package preparecall

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
	TaskType = "prepare-call"
)

var (
	ErrMissingMeetingID = errors.New("MISSING_MEETING_ID")
	ErrMeetingNotFound  = errors.New("MEETING_NOT_FOUND")
	ErrLookupFailed     = errors.New("LOOKUP_FAILED")
)

type Handler struct {
	config   *Config
	meetings repository.MeetingStore
	deals    repository.DealStore
	logger   logger.Logger
}

func NewHandler(config *Config, meetings repository.MeetingStore, deals repository.DealStore, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		meetings: meetings,
		deals:    deals,
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
		camunda.FailJob(ctx, client, job, ToStandardError(err, input.MeetingID), h.logger)
		return
	}

	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.MeetingID == "" {
		return nil, ErrMissingMeetingID
	}

	meeting, err := h.meetings.GetByID(ctx, input.MeetingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMeetingNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	attendees := meeting.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	out := &Output{
		Meeting: MeetingSummary{
			Title:     meeting.Title,
			StartTime: meeting.StartTime,
			Attendees: attendees,
		},
	}

	if meeting.DealID == nil {
		return out, nil
	}

	deal, err := h.deals.GetByID(ctx, *meeting.DealID)
	switch {
	case err == nil:
		out.Company = &CompanySummary{Name: deal.CompanyName}
		if deal.Website != nil {
			out.Company.Website = *deal.Website
		}
		if deal.Sector != nil {
			out.Company.Sector = *deal.Sector
		}
	case errors.Is(err, repository.ErrNotFound):
		h.logger.Warn("meeting references missing deal", map[string]interface{}{
			"meetingId": meeting.ID,
			"dealId":    *meeting.DealID,
		})
	default:
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	return out, nil
}

func ToStandardError(err error, meetingID string) error {
	switch {
	case errors.Is(err, ErrMissingMeetingID):
		return apperrors.NewMissingIdentifierError("meetingId")
	case errors.Is(err, ErrMeetingNotFound):
		return apperrors.NewRecordNotFoundError("Meeting", meetingID)
	case errors.Is(err, ErrLookupFailed):
		return apperrors.NewQueryExecutionFailedError("call_prep", err)
	}
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
