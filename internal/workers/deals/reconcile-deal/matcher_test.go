package reconciledeal

import (
	"context"
	"errors"
	"testing"

	"vc-assistant/internal/models"
	"vc-assistant/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDeals serves FindByWebsite and ListActive from memory.
type fakeDeals struct {
	repository.DealStore
	byWebsite   map[string]*models.Deal
	active      []*models.Deal
	websiteHits []string
	listErr     error
}

func (f *fakeDeals) FindByWebsite(_ context.Context, website string) (*models.Deal, error) {
	f.websiteHits = append(f.websiteHits, website)
	if d, ok := f.byWebsite[website]; ok {
		return d, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDeals) ListActive(context.Context) ([]*models.Deal, error) {
	return f.active, f.listErr
}

func TestMatcher_MatchMeeting(t *testing.T) {
	acme := &models.Deal{ID: "d-acme", CompanyName: "Acme", Stage: models.StageDD}
	globex := &models.Deal{ID: "d-globex", CompanyName: "Globex"}

	tests := []struct {
		name      string
		attendees []string
		title     string
		want      *models.Deal
	}{
		{"domain match wins", []string{"me@fund.vc", "jane@acme.io"}, "Sync with Globex", acme},
		{"title fallback is case-insensitive", []string{"x@gmail.com"}, "GLOBEX partner meeting", globex},
		{"attendee without domain skipped", []string{"nobody"}, "Acme intro", acme},
		{"no match", []string{"x@gmail.com"}, "Dentist", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeDeals{
				byWebsite: map[string]*models.Deal{"https://acme.io": acme},
				active:    []*models.Deal{acme, globex},
			}
			got, err := NewMatcher(store).MatchMeeting(context.Background(), tt.attendees, tt.title)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatcher_MatchMeeting_ChecksAttendeesInOrder(t *testing.T) {
	store := &fakeDeals{byWebsite: map[string]*models.Deal{}}
	_, err := NewMatcher(store).MatchMeeting(context.Background(), []string{"a@one.io", "b@two.io"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://one.io", "https://two.io"}, store.websiteHits)
}

func TestMatcher_MatchMeeting_ListError(t *testing.T) {
	store := &fakeDeals{listErr: errors.New("db down")}
	_, err := NewMatcher(store).MatchMeeting(context.Background(), nil, "Acme")
	assert.Error(t, err)
}

func TestInferMeetingType(t *testing.T) {
	tests := []struct {
		name  string
		title string
		deal  *models.Deal
		want  models.MeetingType
	}{
		{"intro keyword", "Intro: Acme <> Fund", nil, models.MeetingIntroCall},
		{"initial keyword", "Initial chat", nil, models.MeetingIntroCall},
		{"inbox stage", "Catch up", &models.Deal{Stage: models.StageInbox}, models.MeetingIntroCall},
		{"deep dive keyword", "Acme deep dive", nil, models.MeetingDeepDive},
		{"dd stage", "Catch up", &models.Deal{Stage: models.StageDD}, models.MeetingDeepDive},
		{"partner keyword", "Partner meeting", nil, models.MeetingPartnerMeeting},
		{"partner review stage", "Catch up", &models.Deal{Stage: models.StagePartnerReview}, models.MeetingPartnerMeeting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferMeetingType(tt.title, tt.deal)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}

	assert.Nil(t, InferMeetingType("Lunch", nil))
	assert.Nil(t, InferMeetingType("Lunch", &models.Deal{Stage: models.StageDecision}))
}
