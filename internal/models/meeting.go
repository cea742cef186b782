// internal/models/meeting.go
package models

import "time"

// MeetingType is inferred from the title and the matched deal's stage.
type MeetingType string

const (
	MeetingIntroCall      MeetingType = "intro_call"
	MeetingDeepDive       MeetingType = "deep_dive"
	MeetingPartnerMeeting MeetingType = "partner_meeting"
)

// Meeting is a calendar event, optionally linked to a deal.
type Meeting struct {
	ID            string       `json:"id"`
	GoogleEventID string       `json:"googleEventId"`
	DealID        *string      `json:"dealId,omitempty"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	StartTime     time.Time    `json:"startTime"`
	EndTime       time.Time    `json:"endTime"`
	Attendees     []string     `json:"attendees"`
	MeetingType   *MeetingType `json:"meetingType,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// CalendarEvent is an event as fetched from the calendar source. Start and
// End are nil for all-day events.
type CalendarEvent struct {
	EventID     string     `json:"eventId"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	Attendees   []string   `json:"attendees"`
}
