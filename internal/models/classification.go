// internal/models/classification.go
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// EmailCategory is the closed set of labels an inbound email can carry.
type EmailCategory string

const (
	CategoryPitch    EmailCategory = "pitch"
	CategoryFollowUp EmailCategory = "follow_up"
	CategoryQuestion EmailCategory = "question"
	CategoryUpdate   EmailCategory = "update"
	CategoryPass     EmailCategory = "pass"
	CategoryOther    EmailCategory = "other"
)

// EmailCategories lists every category in prompt order.
var EmailCategories = []EmailCategory{
	CategoryPitch, CategoryFollowUp, CategoryQuestion, CategoryUpdate, CategoryPass, CategoryOther,
}

// ParseEmailCategory maps unknown labels to CategoryOther.
func ParseEmailCategory(s string) EmailCategory {
	for _, c := range EmailCategories {
		if string(c) == s {
			return c
		}
	}
	return CategoryOther
}

func (c *EmailCategory) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		*c = CategoryOther
		return nil
	}
	if s == nil {
		*c = CategoryOther
		return nil
	}
	*c = ParseEmailCategory(*s)
	return nil
}

// ExtractedData holds attributes pulled out of an email. Keys the model
// returns beyond the four known ones are kept in Extra.
type ExtractedData struct {
	CompanyName *string
	Stage       *string
	Sector      *string
	AskAmount   *string
	Extra       map[string]interface{}
}

var extractedKeys = []string{"companyName", "stage", "sector", "askAmount"}

func (d *ExtractedData) field(key string) **string {
	switch key {
	case "companyName":
		return &d.CompanyName
	case "stage":
		return &d.Stage
	case "sector":
		return &d.Sector
	case "askAmount":
		return &d.AskAmount
	}
	return nil
}

func (d ExtractedData) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(d.Extra)+len(extractedKeys))
	for k, v := range d.Extra {
		out[k] = v
	}
	for _, k := range extractedKeys {
		if v := *d.field(k); v != nil {
			out[k] = *v
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts null and non-string values for known keys; only
// non-empty strings are kept.
func (d *ExtractedData) UnmarshalJSON(b []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("extracted data: %w", err)
	}

	*d = ExtractedData{}
	for k, v := range raw {
		if f := d.field(k); f != nil {
			switch val := v.(type) {
			case string:
				if val != "" {
					s := val
					*f = &s
				}
			case float64:
				s := strconv.FormatFloat(val, 'f', -1, 64)
				*f = &s
			}
			continue
		}
		if d.Extra == nil {
			d.Extra = make(map[string]interface{})
		}
		d.Extra[k] = v
	}
	return nil
}

// Classification is the verdict for one email derived from one completion.
type Classification struct {
	IsTargetEntity bool          `json:"isFounderEmail"`
	IsPriority     bool          `json:"isPriority"`
	Category       EmailCategory `json:"type"`
	Extracted      ExtractedData `json:"extractedData"`
	Reasoning      string        `json:"reasoning,omitempty"`
}

// FallbackClassification is returned whenever the model output is unusable.
func FallbackClassification() Classification {
	return Classification{
		IsTargetEntity: false,
		IsPriority:     false,
		Category:       CategoryOther,
		Extracted:      ExtractedData{},
	}
}

// CompanyName returns the extracted company name or "".
func (c Classification) CompanyName() string {
	if c.Extracted.CompanyName == nil {
		return ""
	}
	return *c.Extracted.CompanyName
}
