// internal/workers/inbox/classify-email/models.go
package classifyemail

import "vc-assistant/internal/models"

type Input struct {
	MessageID string `json:"messageId"`
	From      string `json:"from"`
	Subject   string `json:"subject"`
	Snippet   string `json:"snippet"`
	Body      string `json:"body"`
}

// Source values record where a classification came from.
const (
	SourceModel    = "model"
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

type Output struct {
	Classification models.Classification `json:"classification"`
	Source         string                `json:"source"`
}
