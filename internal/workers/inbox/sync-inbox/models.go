// internal/workers/inbox/sync-inbox/models.go
package syncinbox

import (
	"vc-assistant/internal/common/google"
	"vc-assistant/internal/models"
)

type Input struct {
	Tokens     google.Tokens `json:"tokens"`
	Query      string        `json:"query,omitempty"`
	MaxResults int64         `json:"maxResults,omitempty"`
}

type Output struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Emails  []models.Email `json:"emails"`
}
