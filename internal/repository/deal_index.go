// internal/repository/deal_index.go
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"vc-assistant/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const defaultSearchSize = 20

var ErrMissingIndex = errors.New("index name is required")

// DealIndex mirrors deals into Elasticsearch for faceted search.
type DealIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewDealIndex(client *elasticsearch.Client, index string) *DealIndex {
	return &DealIndex{client: client, index: index}
}

type DealSearchResult struct {
	Deals     []models.Deal `json:"deals"`
	TotalHits int64         `json:"totalHits"`
	Took      int           `json:"took"`
}

// Index writes d under its id, replacing any earlier version.
func (x *DealIndex) Index(ctx context.Context, d *models.Deal) error {
	if x.index == "" {
		return ErrMissingIndex
	}
	body, err := json.Marshal(d)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      x.index,
		DocumentID: d.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, x.client)
	if err != nil {
		return fmt.Errorf("index deal: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index deal: %s", res.Status())
	}
	return nil
}

func (x *DealIndex) Search(ctx context.Context, filter models.DealFilter) (*DealSearchResult, error) {
	if x.index == "" {
		return nil, ErrMissingIndex
	}

	body, err := json.Marshal(BuildDealQuery(filter))
	if err != nil {
		return nil, err
	}

	size := filter.Limit
	if size <= 0 {
		size = defaultSearchSize
	}

	req := esapi.SearchRequest{
		Index: []string{x.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}
	res, err := req.Do(ctx, x.client)
	if err != nil {
		return nil, fmt.Errorf("search deals: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search deals: %s", res.Status())
	}

	var parsed struct {
		Took int `json:"took"`
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Deal `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	result := &DealSearchResult{
		Deals:     make([]models.Deal, 0, len(parsed.Hits.Hits)),
		TotalHits: parsed.Hits.Total.Value,
		Took:      parsed.Took,
	}
	for _, hit := range parsed.Hits.Hits {
		result.Deals = append(result.Deals, hit.Source)
	}
	return result, nil
}

// BuildDealQuery turns a filter into a bool query. Free text goes to must,
// facets to filter; an empty filter matches everything.
func BuildDealQuery(filter models.DealFilter) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if filter.Query != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  filter.Query,
				"fields": []string{"companyName^3", "sector", "website"},
				"type":   "best_fields",
			},
		})
	}

	terms := map[string]string{
		"stage.keyword":  filter.Stage,
		"sector.keyword": filter.Sector,
		"status.keyword": filter.Status,
	}
	for _, field := range []string{"stage.keyword", "sector.keyword", "status.keyword"} {
		if v := terms[field]; v != "" {
			filterClauses = append(filterClauses, map[string]interface{}{
				"term": map[string]interface{}{field: v},
			})
		}
	}
	if filter.Priority > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"priority": filter.Priority},
		})
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery := map[string]interface{}{"must": mustClauses}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{"_score": "desc"},
			map[string]interface{}{"priority": "asc"},
		},
	}
}
