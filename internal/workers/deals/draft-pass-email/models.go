// internal/workers/deals/draft-pass-email/models.go
package draftpassemail

const (
	DetailBrief    = "brief"
	DetailDetailed = "detailed"
)

type Input struct {
	DealID      string `json:"dealId"`
	Reason      string `json:"reason"`
	DetailLevel string `json:"detailLevel,omitempty"`
	// Send delivers the draft to To when a mail sender is configured.
	Send bool   `json:"send,omitempty"`
	To   string `json:"to,omitempty"`
}

type Output struct {
	Draft     string `json:"draft"`
	Sent      bool   `json:"sent"`
	MessageID string `json:"messageId,omitempty"`
}
