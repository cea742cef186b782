// internal/workers/deals/search-deals/models.go
package searchdeals

import "vc-assistant/internal/models"

type Input struct {
	Query    string `json:"query,omitempty"`
	Stage    string `json:"stage,omitempty"`
	Sector   string `json:"sector,omitempty"`
	Priority int    `json:"priority,omitempty"`
	Status   string `json:"status,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

func (in Input) filter() models.DealFilter {
	return models.DealFilter{
		Query:    in.Query,
		Stage:    in.Stage,
		Sector:   in.Sector,
		Priority: in.Priority,
		Status:   in.Status,
		Limit:    in.Limit,
	}
}

type Output struct {
	Deals     []models.Deal `json:"deals"`
	TotalHits int64         `json:"totalHits"`
	Took      int           `json:"took"` // milliseconds
}
