// internal/workers/deals/reconcile-deal/matcher.go
package reconciledeal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vc-assistant/internal/models"
	"vc-assistant/internal/repository"
)

// Matcher links calendar events to deals.
type Matcher struct {
	deals repository.DealStore
}

func NewMatcher(deals repository.DealStore) *Matcher {
	return &Matcher{deals: deals}
}

// MatchMeeting tries each attendee's domain against deal websites of the
// form https://<domain>, then scans active deals for a company name
// contained in the title. A nil deal with a nil error means no match.
func (m *Matcher) MatchMeeting(ctx context.Context, attendees []string, title string) (*models.Deal, error) {
	for _, email := range attendees {
		_, domain, ok := strings.Cut(email, "@")
		if !ok || domain == "" {
			continue
		}
		deal, err := m.deals.FindByWebsite(ctx, "https://"+domain)
		if err == nil {
			return deal, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("match by website: %w", err)
		}
	}

	// Linear in the number of active deals.
	deals, err := m.deals.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active deals: %w", err)
	}
	lowerTitle := strings.ToLower(title)
	for _, deal := range deals {
		if deal.CompanyName != "" && strings.Contains(lowerTitle, strings.ToLower(deal.CompanyName)) {
			return deal, nil
		}
	}
	return nil, nil
}

// InferMeetingType checks intro, then deep dive, then partner keywords in
// the title, each alongside the matched deal's stage. deal may be nil.
func InferMeetingType(title string, deal *models.Deal) *models.MeetingType {
	lower := strings.ToLower(title)
	stage := ""
	if deal != nil {
		stage = deal.Stage
	}

	var t models.MeetingType
	switch {
	case strings.Contains(lower, "intro") || strings.Contains(lower, "initial") || stage == models.StageInbox:
		t = models.MeetingIntroCall
	case strings.Contains(lower, "deep dive") || strings.Contains(lower, "dd") || stage == models.StageDD:
		t = models.MeetingDeepDive
	case strings.Contains(lower, "partner") || strings.Contains(lower, "team") || stage == models.StagePartnerReview:
		t = models.MeetingPartnerMeeting
	default:
		return nil
	}
	return &t
}
