// internal/workers/inbox/classify-email/prompt.go
package classifyemail

import (
	"fmt"
	"strings"

	"vc-assistant/internal/models"
)

const maxBodyChars = 2000

func buildPrompt(input *Input) string {
	categories := make([]string, len(models.EmailCategories))
	for i, c := range models.EmailCategories {
		categories[i] = string(c)
	}
	body := input.Snippet
	if body == "" {
		body = truncate(input.Body, maxBodyChars)
	}

	var b strings.Builder
	b.WriteString("Classify this email for a VC. Determine:\n")
	b.WriteString("1. Is this from a founder pitching or following up on a fundraise?\n")
	b.WriteString("2. Should this be high priority? (check if they mention referral sources, or if the ask is in the $1M-$9M range)\n")
	fmt.Fprintf(&b, "3. What type of email is this? (%s)\n", strings.Join(categories, ", "))
	b.WriteString("4. Extract key data: company name, stage, sector, ask amount\n\n")
	b.WriteString("Email:\n")
	fmt.Fprintf(&b, "From: %s\n", input.From)
	fmt.Fprintf(&b, "Subject: %s\n", input.Subject)
	fmt.Fprintf(&b, "Body: %s\n\n", body)
	b.WriteString("Respond in JSON format:\n")
	b.WriteString("{\n")
	b.WriteString("  \"isFounderEmail\": boolean,\n")
	b.WriteString("  \"isPriority\": boolean,\n")
	fmt.Fprintf(&b, "  \"type\": %s,\n", quoteJoin(categories, " | "))
	b.WriteString("  \"extractedData\": {\n")
	b.WriteString("    \"companyName\": string or null,\n")
	b.WriteString("    \"stage\": string or null,\n")
	b.WriteString("    \"sector\": string or null,\n")
	b.WriteString("    \"askAmount\": string or null\n")
	b.WriteString("  },\n")
	b.WriteString("  \"reasoning\": string\n")
	b.WriteString("}")
	return b.String()
}

func quoteJoin(items []string, sep string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = `"` + s + `"`
	}
	return strings.Join(quoted, sep)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
