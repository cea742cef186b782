// internal/workers/deals/draft-pass-email/prompt.go
package draftpassemail

import (
	"fmt"
	"strings"

	"vc-assistant/internal/models"
)

var briefStyle = []string{
	"Brief and kind",
	`One-line reason: "couldn't get to conviction to lead"`,
	"Offer to stay in touch and be a sparring partner",
}

var detailedStyle = []string{
	"Start with an apology for the delay if there was one",
	"Thank them for their time and acknowledge their responsiveness",
	"Compliment the founders",
	"Explain the reasoning clearly but kindly",
	"Offer to share references/intros made during DD",
	"Offer a call to explain more",
	"Wish them well and say you hope they prove you wrong",
}

func buildPrompt(deal *models.Deal, reason, detailLevel string) string {
	sector := ""
	if deal.Sector != nil {
		sector = *deal.Sector
	}
	style := briefStyle
	if detailLevel == DetailDetailed {
		style = detailedStyle
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Draft a %s pass email for %s.\n\n", detailLevel, deal.CompanyName)
	b.WriteString("Context:\n")
	fmt.Fprintf(&b, "- Company: %s\n", deal.CompanyName)
	fmt.Fprintf(&b, "- Stage: %s\n", deal.Stage)
	fmt.Fprintf(&b, "- Sector: %s\n", sector)
	fmt.Fprintf(&b, "- Pass reason: %s\n\n", reason)
	b.WriteString("Style:\n")
	for _, s := range style {
		fmt.Fprintf(&b, "- %s\n", s)
	}
	b.WriteString("\nWrite the email:")
	return b.String()
}
