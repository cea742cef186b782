// internal/workers/calendar/sync-calendar/handler_test.go
package synccalendar

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "vc-assistant/internal/common/errors"
	"vc-assistant/internal/common/google"
	"vc-assistant/internal/common/logger"
	"vc-assistant/internal/models"
	"vc-assistant/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Doubles
// ==========================

type fakeCalendar struct {
	events   []models.CalendarEvent
	err      error
	gotStart time.Time
	gotEnd   time.Time
}

func (f *fakeCalendar) FetchEvents(_ context.Context, start, end time.Time) ([]models.CalendarEvent, error) {
	f.gotStart, f.gotEnd = start, end
	return f.events, f.err
}

type fakeConnector struct {
	cal *fakeCalendar
}

func (f *fakeConnector) Mail(context.Context, google.Tokens) (google.MailSource, error) {
	return nil, errors.New("not used")
}

func (f *fakeConnector) Calendar(context.Context, google.Tokens) (google.CalendarSource, error) {
	return f.cal, nil
}

type fakeMatcher struct {
	byTitle map[string]*models.Deal
	err     error
}

func (f *fakeMatcher) MatchMeeting(_ context.Context, _ []string, title string) (*models.Deal, error) {
	return f.byTitle[title], f.err
}

type fakeMeetings struct {
	byEvent map[string]*models.Meeting
	// racing rows appear only once Create has been attempted.
	racing  map[string]*models.Meeting
	created []*models.Meeting
	updated []*models.Meeting
}

func (f *fakeMeetings) GetByID(context.Context, string) (*models.Meeting, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeMeetings) FindByEventID(_ context.Context, id string) (*models.Meeting, error) {
	if m, ok := f.byEvent[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMeetings) Create(_ context.Context, m *models.Meeting) error {
	if existing, ok := f.racing[m.GoogleEventID]; ok {
		if f.byEvent == nil {
			f.byEvent = map[string]*models.Meeting{}
		}
		f.byEvent[m.GoogleEventID] = existing
		return repository.ErrDuplicate
	}
	m.ID = "mtg-" + m.GoogleEventID
	f.created = append(f.created, m)
	return nil
}

func (f *fakeMeetings) Update(_ context.Context, m *models.Meeting) error {
	f.updated = append(f.updated, m)
	return nil
}

// ==========================
// Test Helper Functions
// ==========================

var (
	validTokens = google.Tokens{AccessToken: "a", RefreshToken: "r"}
	fixedNow    = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second, DefaultWindow: 30 * 24 * time.Hour}
}

func createTestHandler(t *testing.T, cal *fakeCalendar, matcher *fakeMatcher, meetings *fakeMeetings) *Handler {
	h := NewHandler(createTestConfig(), &fakeConnector{cal: cal}, matcher, meetings, logger.NewTestLogger(t))
	h.now = func() time.Time { return fixedNow }
	return h
}

func event(id, title string, timed bool) models.CalendarEvent {
	ev := models.CalendarEvent{EventID: id, Summary: title, Attendees: []string{"jane@acme.io"}}
	if timed {
		start := fixedNow.Add(24 * time.Hour)
		end := start.Add(time.Hour)
		ev.Start, ev.End = &start, &end
	}
	return ev
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_CreatesAndUpdates(t *testing.T) {
	acme := &models.Deal{ID: "deal-acme", CompanyName: "Acme", Stage: models.StageDD}
	oldDeal := "deal-old"
	cal := &fakeCalendar{events: []models.CalendarEvent{
		event("e1", "Acme deep dive", true),
		event("e2", "Offsite", false),
		event("e3", "Weekly sync", true),
	}}
	meetings := &fakeMeetings{byEvent: map[string]*models.Meeting{
		"e3": {ID: "mtg-e3", GoogleEventID: "e3", DealID: &oldDeal, Title: "Old title"},
	}}
	matcher := &fakeMatcher{byTitle: map[string]*models.Deal{"Acme deep dive": acme}}

	output, err := createTestHandler(t, cal, matcher, meetings).Execute(context.Background(), &Input{Tokens: validTokens})

	require.NoError(t, err)
	assert.True(t, output.Success)
	assert.Equal(t, 2, output.Count, "all-day events are skipped")
	assert.Equal(t, fixedNow, cal.gotStart)
	assert.Equal(t, fixedNow.Add(30*24*time.Hour), cal.gotEnd)

	require.Len(t, meetings.created, 1)
	created := meetings.created[0]
	require.NotNil(t, created.DealID)
	assert.Equal(t, "deal-acme", *created.DealID)
	require.NotNil(t, created.MeetingType)
	assert.Equal(t, models.MeetingDeepDive, *created.MeetingType)

	require.Len(t, meetings.updated, 1)
	updated := meetings.updated[0]
	assert.Equal(t, "Weekly sync", updated.Title)
	require.NotNil(t, updated.DealID)
	assert.Equal(t, "deal-old", *updated.DealID, "existing link kept when nothing matches")
}

func TestHandler_Execute_ConcurrentInsertFallsBackToUpdate(t *testing.T) {
	cal := &fakeCalendar{events: []models.CalendarEvent{event("e1", "Acme deep dive", true)}}
	meetings := &fakeMeetings{racing: map[string]*models.Meeting{
		"e1": {ID: "mtg-other", GoogleEventID: "e1", Title: "Stale"},
	}}

	output, err := createTestHandler(t, cal, &fakeMatcher{}, meetings).Execute(context.Background(), &Input{Tokens: validTokens})

	require.NoError(t, err)
	assert.Equal(t, 1, output.Count)
	assert.Empty(t, meetings.created)
	require.Len(t, meetings.updated, 1)
	assert.Equal(t, "mtg-other", meetings.updated[0].ID)
	assert.Equal(t, "Acme deep dive", meetings.updated[0].Title)
}

func TestHandler_Execute_UsesGivenWindow(t *testing.T) {
	cal := &fakeCalendar{}
	start := fixedNow.Add(-48 * time.Hour)
	end := fixedNow

	_, err := createTestHandler(t, cal, &fakeMatcher{}, &fakeMeetings{}).
		Execute(context.Background(), &Input{Tokens: validTokens, StartDate: &start, EndDate: &end})

	require.NoError(t, err)
	assert.Equal(t, start, cal.gotStart)
	assert.Equal(t, end, cal.gotEnd)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	backwards := fixedNow.Add(-time.Hour)

	tests := []struct {
		name         string
		input        *Input
		cal          *fakeCalendar
		matcher      *fakeMatcher
		expectedErr  error
		expectedCode apperrors.ErrorCode
	}{
		{"missing tokens", &Input{}, &fakeCalendar{}, &fakeMatcher{},
			ErrMissingTokens, apperrors.ErrCodeMissingToken},
		{"end before start", &Input{Tokens: validTokens, EndDate: &backwards}, &fakeCalendar{}, &fakeMatcher{},
			ErrInvalidWindow, apperrors.ErrCodeInvalidInput},
		{"fetch failure", &Input{Tokens: validTokens}, &fakeCalendar{err: errors.New("401")}, &fakeMatcher{},
			ErrEventFetchFailed, apperrors.ErrCodeCalendarSyncFailed},
		{"match failure", &Input{Tokens: validTokens},
			&fakeCalendar{events: []models.CalendarEvent{event("e1", "x", true)}},
			&fakeMatcher{err: errors.New("db down")},
			ErrMeetingMatchFailed, apperrors.ErrCodeQueryExecutionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := createTestHandler(t, tt.cal, tt.matcher, &fakeMeetings{}).
				Execute(context.Background(), tt.input)

			assert.Nil(t, output)
			assert.True(t, errors.Is(err, tt.expectedErr), "got %v", err)
			assert.Equal(t, tt.expectedCode, apperrors.Normalize(ToStandardError(err)).Code)
		})
	}
}
