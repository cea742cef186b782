// internal/models/chat.go
package models

import "time"

// ChatMessage is a persisted turn of the assistant conversation.
type ChatMessage struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId,omitempty"`
	DealID    *string                `json:"dealId,omitempty"`
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}
