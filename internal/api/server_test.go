// internal/api/server_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vc-assistant/internal/common/config"
	"vc-assistant/internal/common/llm"
	"vc-assistant/internal/common/logger"
	"vc-assistant/internal/common/metrics"
	"vc-assistant/internal/models"
	"vc-assistant/internal/repository"
	assistantchat "vc-assistant/internal/workers/ai-conversation/assistant-chat"
	preparecall "vc-assistant/internal/workers/calendar/prepare-call"
	synccalendar "vc-assistant/internal/workers/calendar/sync-calendar"
	draftpassemail "vc-assistant/internal/workers/deals/draft-pass-email"
	searchdeals "vc-assistant/internal/workers/deals/search-deals"
	analyzedeck "vc-assistant/internal/workers/documents/analyze-deck"
	syncinbox "vc-assistant/internal/workers/inbox/sync-inbox"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Doubles
// ==========================

type fakeChat struct {
	got *assistantchat.Input
	out *assistantchat.Output
	err error
}

func (f *fakeChat) Execute(_ context.Context, in *assistantchat.Input) (*assistantchat.Output, error) {
	f.got = in
	return f.out, f.err
}

type fakeInbox struct{ err error }

func (f *fakeInbox) Execute(_ context.Context, in *syncinbox.Input) (*syncinbox.Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !in.Tokens.Valid() {
		return nil, syncinbox.ErrMissingTokens
	}
	return &syncinbox.Output{Success: true, Emails: []models.Email{}}, nil
}

type fakeCalendar struct{}

func (fakeCalendar) Execute(_ context.Context, in *synccalendar.Input) (*synccalendar.Output, error) {
	if !in.Tokens.Valid() {
		return nil, synccalendar.ErrMissingTokens
	}
	return &synccalendar.Output{Success: true, Meetings: []models.Meeting{}}, nil
}

type fakeDecks struct {
	analyzedID string
	err        error
}

func (f *fakeDecks) Execute(_ context.Context, in *analyzedeck.Input) (*analyzedeck.Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &analyzedeck.Output{Success: true, Analysis: &models.DeckAnalysis{Recommendation: models.RecommendMaybe}}, nil
}

func (f *fakeDecks) Analyze(_ context.Context, documentID, _ string) (*models.DeckAnalysis, error) {
	f.analyzedID = documentID
	return &models.DeckAnalysis{Recommendation: models.RecommendPass}, nil
}

type fakeDocuments struct {
	repository.DocumentStore
	created []*models.Document
}

func (f *fakeDocuments) Create(_ context.Context, d *models.Document) error {
	d.ID = fmt.Sprintf("doc-%d", len(f.created)+1)
	f.created = append(f.created, d)
	return nil
}

type fakePassEmails struct{ got *draftpassemail.Input }

func (f *fakePassEmails) Execute(_ context.Context, in *draftpassemail.Input) (*draftpassemail.Output, error) {
	f.got = in
	return &draftpassemail.Output{Draft: "Thanks for your time"}, nil
}

type fakeSearch struct{ got *searchdeals.Input }

func (f *fakeSearch) Execute(_ context.Context, in *searchdeals.Input) (*searchdeals.Output, error) {
	f.got = in
	return &searchdeals.Output{Deals: []models.Deal{{ID: "deal-1", CompanyName: "Acme"}}, TotalHits: 1}, nil
}

type fakeCallPrep struct{}

func (fakeCallPrep) Execute(_ context.Context, in *preparecall.Input) (*preparecall.Output, error) {
	if in.MeetingID != "m-1" {
		return nil, preparecall.ErrMeetingNotFound
	}
	return &preparecall.Output{Meeting: preparecall.MeetingSummary{Title: "Intro", Attendees: []string{}}}, nil
}

type fixture struct {
	chat      *fakeChat
	inbox     *fakeInbox
	decks     *fakeDecks
	documents *fakeDocuments
	pass      *fakePassEmails
	search    *fakeSearch
	handler   http.Handler
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		chat:      &fakeChat{out: &assistantchat.Output{Message: "hi", Metadata: map[string]interface{}{"suggestedActions": []string{"a"}}}},
		inbox:     &fakeInbox{},
		decks:     &fakeDecks{},
		documents: &fakeDocuments{},
		pass:      &fakePassEmails{},
		search:    &fakeSearch{},
	}
	srv := NewServer(config.ServerConfig{Address: ":0"}, Services{
		Chat:       f.chat,
		Inbox:      f.inbox,
		Calendar:   fakeCalendar{},
		Decks:      f.decks,
		Documents:  f.documents,
		PassEmails: f.pass,
		Search:     f.search,
		CallPrep:   fakeCallPrep{},
		Checks: map[string]func(context.Context) error{
			"postgres": func(context.Context) error { return nil },
		},
	}, logger.NewTestLogger(t))
	f.handler = srv.Router()
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

// ==========================
// Health & Metrics
// ==========================

func TestServer_HealthAndMetrics(t *testing.T) {
	f := newFixture(t)
	before := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/health", "200"))

	rec := f.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/health", "200")))

	rec = f.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "api_requests_total")
}

func TestServer_Ready(t *testing.T) {
	srv := NewServer(config.ServerConfig{}, Services{
		Checks: map[string]func(context.Context) error{
			"redis": func(context.Context) error { return errors.New("refused") },
		},
	}, logger.NewTestLogger(t))

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis")
}

type failingCompleter struct{}

func (failingCompleter) Complete(context.Context, []llm.Turn, map[string]interface{}) (string, error) {
	return "", llm.ErrCompletionFailed
}

func TestServer_Ready_OpenCompletionBreaker(t *testing.T) {
	breaker := llm.NewBreakerCompleter(failingCompleter{}, llm.BreakerSettings{
		Name: "completion-test", MinRequests: 1, FailureThreshold: 0.5, OpenTimeout: time.Minute,
	}, logger.NewTestLogger(t))
	srv := NewServer(config.ServerConfig{}, Services{
		Checks: map[string]func(context.Context) error{"completion": breaker.Ready},
	}, logger.NewTestLogger(t))

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	_, _ = breaker.Complete(context.Background(), []llm.Turn{{Role: llm.RoleUser, Text: "hi"}}, nil)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "completion")
}

// ==========================
// Chat
// ==========================

func TestServer_Chat(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"hello"}],"dealId":"deal-1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"hi","metadata":{"suggestedActions":["a"]}}`, rec.Body.String())
	assert.Equal(t, "deal-1", f.chat.got.DealID)
	assert.Equal(t, "hello", f.chat.got.Messages[0].Content)
}

func TestServer_Chat_InvalidMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing", `{}`},
		{"not an array", `{"messages":"hello"}`},
		{"empty", `{"messages":[]}`},
		{"bad role", `{"messages":[{"role":"tool","content":"x"}]}`},
		{"malformed", `{"messages":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.do(http.MethodPost, "/api/chat", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, msgInvalidMessages, errorBody(t, rec))
			assert.Nil(t, f.chat.got)
		})
	}
}

func TestServer_Chat_CompletionFailureIsGeneric(t *testing.T) {
	f := newFixture(t)
	f.chat.err = fmt.Errorf("%w: upstream said secret-detail", llm.ErrCompletionFailed)

	rec := f.do(http.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"hello"}]}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to process chat message", errorBody(t, rec))
	assert.NotContains(t, rec.Body.String(), "secret-detail")
}

// ==========================
// Sync
// ==========================

func TestServer_Sync_MissingTokens(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/gmail/sync", `{"accessToken":"a"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/api/calendar/sync", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/api/gmail/sync", `{"accessToken":"a","refreshToken":"r"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestServer_GmailSync_Failure(t *testing.T) {
	f := newFixture(t)
	f.inbox.err = fmt.Errorf("%w: quota", syncinbox.ErrMailFetchFailed)

	rec := f.do(http.MethodPost, "/api/gmail/sync", `{"accessToken":"a","refreshToken":"r"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to sync emails", errorBody(t, rec))
}

// ==========================
// Documents
// ==========================

func multipartRequest(t *testing.T, fields map[string]string, withFile bool) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withFile {
		fw, err := mw.CreateFormFile("file", "deck.pdf")
		require.NoError(t, err)
		_, err = fw.Write([]byte("%PDF-1.4 fake"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestServer_Upload(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, multipartRequest(t, map[string]string{"dealId": "deal-1", "autoAnalyze": "true"}, true))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.documents.created, 1)
	doc := f.documents.created[0]
	assert.Equal(t, "/uploads/deck.pdf", doc.URL)
	assert.Equal(t, models.DocumentTypeDeck, doc.Type)
	assert.Equal(t, int64(len("%PDF-1.4 fake")), doc.SizeBytes)
	assert.Equal(t, "doc-1", f.decks.analyzedID)
	assert.Contains(t, rec.Body.String(), `"documentId":"doc-1"`)
	assert.Contains(t, rec.Body.String(), `"recommendation":"pass"`)
}

func TestServer_Upload_Validation(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, multipartRequest(t, map[string]string{"dealId": "deal-1"}, false))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file provided", errorBody(t, rec))

	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, multipartRequest(t, nil, true))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No deal ID provided", errorBody(t, rec))

	assert.Empty(t, f.documents.created)
	assert.Empty(t, f.decks.analyzedID)
}

func TestServer_Analyze(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/documents/analyze", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No document ID provided", errorBody(t, rec))

	rec = f.do(http.MethodPost, "/api/documents/analyze", `{"documentId":"doc-1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"recommendation":"maybe"`)

	f.decks.err = analyzedeck.ErrDocumentNotFound
	rec = f.do(http.MethodPost, "/api/documents/analyze", `{"documentId":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Document not found", errorBody(t, rec))
}

// ==========================
// Deals & Meetings
// ==========================

func TestServer_PassEmail(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/deals/deal-9/pass-email", `{"reason":"too early","detailLevel":"detailed"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "deal-9", f.pass.got.DealID)
	assert.Equal(t, "detailed", f.pass.got.DetailLevel)

	rec = f.do(http.MethodPost, "/api/deals/deal-9/pass-email", `{"detailLevel":"verbose"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_SearchDeals(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/deals/search?q=acme&stage=DD&priority=2&limit=10", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, &searchdeals.Input{Query: "acme", Stage: "DD", Priority: 2, Limit: 10}, f.search.got)
	assert.Contains(t, rec.Body.String(), `"companyName":"Acme"`)

	rec = f.do(http.MethodGet, "/api/deals/search?priority=high", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_PrepareCall(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/meetings/m-1/prep", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Intro"`)

	rec = f.do(http.MethodGet, "/api/meetings/m-2/prep", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Meeting not found", errorBody(t, rec))
}
