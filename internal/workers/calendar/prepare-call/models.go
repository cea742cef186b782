// internal/workers/calendar/prepare-call/models.go
package preparecall

import "time"

type Input struct {
	MeetingID string `json:"meetingId"`
}

// Output is the call-prep card. Company is nil when the meeting has no deal.
type Output struct {
	Meeting MeetingSummary  `json:"meeting"`
	Company *CompanySummary `json:"company"`
}

type MeetingSummary struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"startTime"`
	Attendees []string  `json:"attendees"`
}

type CompanySummary struct {
	Name    string `json:"name"`
	Website string `json:"website"`
	Sector  string `json:"sector"`
}
