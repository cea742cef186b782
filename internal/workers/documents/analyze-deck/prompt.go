// internal/workers/documents/analyze-deck/prompt.go
package analyzedeck

import "fmt"

const deckPromptTemplate = `You are analyzing a startup pitch deck for an early-stage VC firm.

Analyze this deck and provide:
1. A concise summary (2-3 sentences)
2. Key highlights (3-5 bullet points of what's impressive)
3. Concerns or red flags (3-5 bullet points)
4. Key metrics (ARR, growth rate, CAC, LTV, burn, etc.)
5. Market opportunity assessment
6. Competitive landscape
7. Team evaluation
8. Overall recommendation (strong_pass, pass, maybe, interested, excited)

Investment criteria:
- Check size: $1M-$9M
- Target ownership: 20-25%%
- Stage: Early-stage B2B SaaS primarily
- Focus on strong unit economics, product-market fit signals, and exceptional founders

Deck content:
%s

Respond in JSON format:
{
  "summary": string,
  "highlights": string[],
  "concerns": string[],
  "keyMetrics": {
    "ARR": string,
    "Growth Rate": string,
    "CAC": string,
    "LTV": string
  },
  "marketOpportunity": string,
  "competitiveLandscape": string,
  "team": string,
  "recommendation": "strong_pass" | "pass" | "maybe" | "interested" | "excited"
}`

func buildPrompt(content string) string {
	return fmt.Sprintf(deckPromptTemplate, content)
}
