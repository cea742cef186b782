package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Extract
// ==========================

func TestExtract(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantText    string
		wantPayload interface{}
	}{
		{
			name:        "block with surrounding prose",
			input:       "Here is the deal.\n\n```json\n{\"action\":\"open_deal\",\"dealId\":\"d1\"}\n```\n\nAnything else?",
			wantText:    "Here is the deal.\n\n\n\nAnything else?",
			wantPayload: map[string]interface{}{"action": "open_deal", "dealId": "d1"},
		},
		{
			name:        "block only",
			input:       "```json\n[1,2,3]\n```",
			wantText:    "",
			wantPayload: []interface{}{float64(1), float64(2), float64(3)},
		},
		{
			name:     "no block",
			input:    "  Just text, nothing structured.  ",
			wantText: "  Just text, nothing structured.  ",
		},
		{
			name:     "malformed block",
			input:    "Intro\n```json\n{\"broken\": \n```",
			wantText: "Intro\n```json\n{\"broken\": \n```",
		},
		{
			name:     "untagged fence is ignored",
			input:    "```\n{\"a\":1}\n```",
			wantText: "```\n{\"a\":1}\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Extract(tt.input)
			assert.Equal(t, tt.wantText, c.Text)
			assert.Equal(t, tt.wantPayload, c.Payload)
			assert.Equal(t, tt.wantPayload != nil, c.HasPayload())
		})
	}
}

func TestExtract_OnlyFirstBlockConsidered(t *testing.T) {
	input := "A\n```json\n{\"n\":1}\n```\nB\n```json\n{\"n\":2}\n```"

	c := Extract(input)

	require.True(t, c.HasPayload())
	assert.Equal(t, map[string]interface{}{"n": float64(1)}, c.Payload)
	assert.Equal(t, "A\n\nB\n```json\n{\"n\":2}\n```", c.Text)
}

func TestExtract_FirstBlockMalformedLeavesTextUnchanged(t *testing.T) {
	input := "```json\nnot json\n```\n```json\n{\"n\":2}\n```"

	c := Extract(input)

	assert.False(t, c.HasPayload())
	assert.Equal(t, input, c.Text)
}

func TestCompletion_Decode(t *testing.T) {
	c := Extract("```json\n{\"isDealRelated\":true,\"category\":\"pitch\"}\n```")

	var out struct {
		IsDealRelated bool   `json:"isDealRelated"`
		Category      string `json:"category"`
	}
	require.NoError(t, c.Decode(&out))
	assert.True(t, out.IsDealRelated)
	assert.Equal(t, "pitch", out.Category)
}

// ==========================
// ExtractObject
// ==========================

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantObject bool
	}{
		{"bare object", `{"a":1}`, true},
		{"object in prose", "Sure! Here you go: {\"summary\":\"ok\"} hope that helps", true},
		{"fenced object", "```json\n{\"a\":{\"b\":2}}\n```", true},
		{"no braces", "no json here", false},
		{"two objects span is invalid", `{"a":1} and {"b":2}`, false},
		{"unbalanced", `{"a":`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ExtractObject(tt.input)
			assert.Equal(t, tt.wantObject, c.HasPayload())
			assert.Equal(t, tt.input, c.Text)
		})
	}
}
