// internal/workers/calendar/sync-calendar/models.go
package synccalendar

import (
	"time"

	"vc-assistant/internal/common/google"
	"vc-assistant/internal/models"
)

type Input struct {
	Tokens    google.Tokens `json:"tokens"`
	StartDate *time.Time    `json:"startDate,omitempty"`
	EndDate   *time.Time    `json:"endDate,omitempty"`
}

type Output struct {
	Success  bool             `json:"success"`
	Count    int              `json:"count"`
	Meetings []models.Meeting `json:"meetings"`
}
