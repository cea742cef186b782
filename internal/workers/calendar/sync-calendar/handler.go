// internal/workers/calendar/sync-calendar/handler.go
package synccalendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vc-assistant/internal/common/camunda"
	apperrors "vc-assistant/internal/common/errors"
	"vc-assistant/internal/common/google"
	"vc-assistant/internal/common/logger"
	"vc-assistant/internal/models"
	"vc-assistant/internal/repository"
	reconciledeal "vc-assistant/internal/workers/deals/reconcile-deal"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "sync-calendar"
)

var (
	ErrMissingTokens      = errors.New("MISSING_TOKENS")
	ErrInvalidWindow      = errors.New("INVALID_WINDOW")
	ErrEventFetchFailed   = errors.New("EVENT_FETCH_FAILED")
	ErrMeetingMatchFailed = errors.New("MEETING_MATCH_FAILED")
	ErrMeetingSaveFailed  = errors.New("MEETING_SAVE_FAILED")
)

// DealMatcher links an event to a deal; nil means no match.
type DealMatcher interface {
	MatchMeeting(ctx context.Context, attendees []string, title string) (*models.Deal, error)
}

type Handler struct {
	config    *Config
	connector google.Connector
	matcher   DealMatcher
	meetings  repository.MeetingStore
	now       func() time.Time
	logger    logger.Logger
}

func NewHandler(config *Config, connector google.Connector, matcher DealMatcher,
	meetings repository.MeetingStore, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		connector: connector,
		matcher:   matcher,
		meetings:  meetings,
		now:       time.Now,
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
	if !input.Tokens.Valid() {
		return nil, ErrMissingTokens
	}

	start := h.now().UTC()
	if input.StartDate != nil {
		start = *input.StartDate
	}
	end := start.Add(h.config.DefaultWindow)
	if input.EndDate != nil {
		end = *input.EndDate
	}
	if !end.After(start) {
		return nil, ErrInvalidWindow
	}

	source, err := h.connector.Calendar(ctx, input.Tokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEventFetchFailed, err)
	}
	events, err := source.FetchEvents(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEventFetchFailed, err)
	}

	saved := make([]models.Meeting, 0, len(events))
	for _, ev := range events {
		if ev.Start == nil || ev.End == nil {
			continue
		}
		m, err := h.syncEvent(ctx, ev)
		if err != nil {
			return nil, err
		}
		saved = append(saved, *m)
	}

	h.logger.Info("calendar synced", map[string]interface{}{
		"events": len(events),
		"count":  len(saved),
	})
	return &Output{Success: true, Count: len(saved), Meetings: saved}, nil
}

// syncEvent upserts by Google event id. On update a missing match keeps the
// stored deal link; the meeting type is only inferred on insert.
func (h *Handler) syncEvent(ctx context.Context, ev models.CalendarEvent) (*models.Meeting, error) {
	deal, err := h.matcher.MatchMeeting(ctx, ev.Attendees, ev.Summary)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMeetingMatchFailed, err)
	}

	existing, err := h.meetings.FindByEventID(ctx, ev.EventID)
	switch {
	case err == nil:
		return h.updateMeeting(ctx, existing, ev, deal)

	case errors.Is(err, repository.ErrNotFound):
		m := &models.Meeting{
			GoogleEventID: ev.EventID,
			Title:         ev.Summary,
			Description:   ev.Description,
			StartTime:     *ev.Start,
			EndTime:       *ev.End,
			Attendees:     ev.Attendees,
			MeetingType:   reconciledeal.InferMeetingType(ev.Summary, deal),
		}
		if deal != nil {
			m.DealID = &deal.ID
		}
		err := h.meetings.Create(ctx, m)
		if errors.Is(err, repository.ErrDuplicate) {
			// A concurrent sync inserted the event first.
			if existing, err = h.meetings.FindByEventID(ctx, ev.EventID); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMeetingSaveFailed, err)
			}
			return h.updateMeeting(ctx, existing, ev, deal)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMeetingSaveFailed, err)
		}
		return m, nil

	default:
		return nil, fmt.Errorf("%w: %v", ErrMeetingSaveFailed, err)
	}
}

func (h *Handler) updateMeeting(ctx context.Context, existing *models.Meeting, ev models.CalendarEvent, deal *models.Deal) (*models.Meeting, error) {
	existing.Title = ev.Summary
	existing.Description = ev.Description
	existing.StartTime = *ev.Start
	existing.EndTime = *ev.End
	existing.Attendees = ev.Attendees
	if deal != nil {
		existing.DealID = &deal.ID
	}
	if err := h.meetings.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMeetingSaveFailed, err)
	}
	return existing, nil
}

func ToStandardError(err error) error {
	switch {
	case errors.Is(err, ErrMissingTokens):
		return apperrors.NewMissingTokenError()
	case errors.Is(err, ErrInvalidWindow):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.Is(err, ErrEventFetchFailed):
		return apperrors.NewCalendarSyncFailedError(err)
	case errors.Is(err, ErrMeetingMatchFailed):
		return apperrors.NewQueryExecutionFailedError("meeting_match", err)
	case errors.Is(err, ErrMeetingSaveFailed):
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
