// internal/common/google/calendar.go
package google

import (
	"context"
	"fmt"
	"time"

	"vc-assistant/internal/models"

	"google.golang.org/api/calendar/v3"
)

const primaryCalendar = "primary"

type calendarSource struct {
	svc *calendar.Service
}

func (c *OAuthConnector) Calendar(ctx context.Context, tokens Tokens) (CalendarSource, error) {
	opts, err := c.clientOptions(ctx, tokens)
	if err != nil {
		return nil, err
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &calendarSource{svc: svc}, nil
}

// FetchEvents expands recurring events and orders them by start time.
func (s *calendarSource) FetchEvents(ctx context.Context, start, end time.Time) ([]models.CalendarEvent, error) {
	resp, err := s.svc.Events.List(primaryCalendar).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	out := make([]models.CalendarEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, ToCalendarEvent(item))
	}
	return out, nil
}

// ToCalendarEvent leaves Start/End nil for all-day events and unparseable times.
func ToCalendarEvent(e *calendar.Event) models.CalendarEvent {
	ev := models.CalendarEvent{
		EventID:     e.Id,
		Summary:     e.Summary,
		Description: e.Description,
		Start:       eventTime(e.Start),
		End:         eventTime(e.End),
		Attendees:   []string{},
	}
	for _, a := range e.Attendees {
		if a != nil && a.Email != "" {
			ev.Attendees = append(ev.Attendees, a.Email)
		}
	}
	return ev
}

func eventTime(dt *calendar.EventDateTime) *time.Time {
	if dt == nil || dt.DateTime == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, dt.DateTime)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
