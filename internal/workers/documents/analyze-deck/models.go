// internal/workers/documents/analyze-deck/models.go
package analyzedeck

import "vc-assistant/internal/models"

type Input struct {
	DocumentID string `json:"documentId"`
	Text       string `json:"text,omitempty"`
}

type Output struct {
	Success  bool                 `json:"success"`
	Analysis *models.DeckAnalysis `json:"analysis"`
}
