// internal/workers/ai-conversation/assistant-chat/models.go
package assistantchat

// Message is a chat turn as sent by the client. Role "system" is accepted
// and dropped.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Input struct {
	Messages []Message `json:"messages"`
	DealID   string    `json:"dealId,omitempty"`
	UserID   string    `json:"userId,omitempty"`
}

// Output carries the reply text and, in Metadata, the structured payload the
// model emitted plus suggestedActions.
type Output struct {
	Message  string                 `json:"message"`
	Metadata map[string]interface{} `json:"metadata"`
}
