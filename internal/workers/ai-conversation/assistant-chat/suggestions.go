// internal/workers/ai-conversation/assistant-chat/suggestions.go
package assistantchat

import "strings"

const maxSuggestions = 3

type suggestionGroup struct {
	keywords    []string
	suggestions []string
}

// Groups are checked in this order; every matching group contributes.
var suggestionGroups = []suggestionGroup{
	{
		keywords:    []string{"deal", "company"},
		suggestions: []string{"Show me more details about this company", "Analyze their pitch deck"},
	},
	{
		keywords:    []string{"email", "inbox"},
		suggestions: []string{"Show me my high-priority inbox", "Help me draft a response"},
	},
	{
		keywords:    []string{"call", "meeting"},
		suggestions: []string{"What calls do I have this week?", "Prepare me for my next call"},
	},
	{
		keywords:    []string{"market", "research"},
		suggestions: []string{"Research the market opportunity", "Who are the key competitors?"},
	},
}

var defaultSuggestions = []string{
	"Show me my high-priority inbox",
	"What calls do I have this week?",
	"Show me active deals",
}

// Suggest returns up to three follow-up prompts for an assistant message.
func Suggest(text string) []string {
	lower := strings.ToLower(text)

	var out []string
	for _, g := range suggestionGroups {
		for _, kw := range g.keywords {
			if strings.Contains(lower, kw) {
				out = append(out, g.suggestions...)
				break
			}
		}
	}

	if len(out) == 0 {
		out = append(out, defaultSuggestions...)
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
