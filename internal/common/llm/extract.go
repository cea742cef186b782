package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencedJSON = regexp.MustCompile("```json\\n([\\s\\S]*?)\\n```")
	jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)
)

// Completion is a reply split into prose and an optional structured payload.
type Completion struct {
	Text    string          `json:"message"`
	Payload interface{}     `json:"payload,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

// HasPayload reports whether a structured block was found and parsed.
func (c Completion) HasPayload() bool {
	return c.Raw != nil
}

// Decode unmarshals the payload into v.
func (c Completion) Decode(v interface{}) error {
	return json.Unmarshal(c.Raw, v)
}

// Extract pulls the first ```json fenced block out of text. When it parses,
// the block is removed from Text and the remainder trimmed; otherwise Text
// is the input unchanged and there is no payload.
func Extract(text string) Completion {
	loc := fencedJSON.FindStringSubmatchIndex(text)
	if loc == nil {
		return Completion{Text: text}
	}

	raw := text[loc[2]:loc[3]]
	var payload interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Completion{Text: text}
	}

	return Completion{
		Text:    strings.TrimSpace(text[:loc[0]] + text[loc[1]:]),
		Payload: payload,
		Raw:     json.RawMessage(raw),
	}
}

// ExtractObject takes the span from the first '{' to the last '}' and parses
// it as a JSON object. Text is always the input unchanged.
func ExtractObject(text string) Completion {
	raw := jsonObject.FindString(text)
	if raw == "" {
		return Completion{Text: text}
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Completion{Text: text}
	}
	return Completion{Text: text, Payload: payload, Raw: json.RawMessage(raw)}
}
