// internal/models/document.go
package models

import "time"

const DocumentTypeDeck = "deck"

// Document is an uploaded file attached to a deal.
type Document struct {
	ID         string     `json:"id"`
	DealID     *string    `json:"dealId,omitempty"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	URL        string     `json:"url"`
	SizeBytes  int64      `json:"sizeBytes"`
	MimeType   string     `json:"mimeType"`
	AIAnalysis *string    `json:"aiAnalysis,omitempty"`
	AnalyzedAt *time.Time `json:"analyzedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Recommendation is the deck verdict, from least to most enthusiastic.
type Recommendation string

const (
	RecommendStrongPass Recommendation = "strong_pass"
	RecommendPass       Recommendation = "pass"
	RecommendMaybe      Recommendation = "maybe"
	RecommendInterested Recommendation = "interested"
	RecommendExcited    Recommendation = "excited"
)

// DeckAnalysis is the structured review of a pitch deck.
type DeckAnalysis struct {
	Summary              string            `json:"summary"`
	Highlights           []string          `json:"highlights"`
	Concerns             []string          `json:"concerns"`
	KeyMetrics           map[string]string `json:"keyMetrics"`
	MarketOpportunity    string            `json:"marketOpportunity"`
	CompetitiveLandscape string            `json:"competitiveLandscape"`
	Team                 string            `json:"team"`
	Recommendation       Recommendation    `json:"recommendation"`
}
