// internal/models/email.go
package models

import "time"

// Email is an ingested Gmail message and its classification.
type Email struct {
	ID             string        `json:"id"`
	GmailMessageID string        `json:"gmailMessageId"`
	GmailThreadID  string        `json:"gmailThreadId"`
	DealID         *string       `json:"dealId,omitempty"`
	ContactID      *string       `json:"contactId,omitempty"`
	From           string        `json:"from"`
	To             string        `json:"to"`
	Subject        string        `json:"subject"`
	Snippet        string        `json:"snippet"`
	Body           string        `json:"body"`
	ReceivedAt     time.Time     `json:"receivedAt"`
	IsFounderEmail bool          `json:"isFounderEmail"`
	IsPriority     bool          `json:"isPriority"`
	Classification EmailCategory `json:"classification"`
	ExtractedData  ExtractedData `json:"extractedData"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// RawEmail is a message as fetched from the mail source.
type RawEmail struct {
	MessageID  string    `json:"messageId"`
	ThreadID   string    `json:"threadId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Subject    string    `json:"subject"`
	Snippet    string    `json:"snippet"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"receivedAt"`
}
