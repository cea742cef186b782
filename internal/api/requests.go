// internal/api/requests.go
package api

import (
	"time"

	"vc-assistant/internal/common/google"
)

type chatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages" validate:"required,min=1,dive"`
	DealID   string        `json:"dealId,omitempty"`
	UserID   string        `json:"userId,omitempty"`
}

type gmailSyncRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Query        string `json:"query,omitempty"`
	MaxResults   int64  `json:"maxResults,omitempty" validate:"omitempty,min=1,max=500"`
}

func (r gmailSyncRequest) tokens() google.Tokens {
	return google.Tokens{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
}

type calendarSyncRequest struct {
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
}

type analyzeRequest struct {
	DocumentID string `json:"documentId" validate:"required"`
}

type passEmailRequest struct {
	Reason      string `json:"reason"`
	DetailLevel string `json:"detailLevel,omitempty" validate:"omitempty,oneof=brief detailed"`
	Send        bool   `json:"send,omitempty"`
	To          string `json:"to,omitempty" validate:"omitempty,email"`
}
