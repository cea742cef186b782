package google

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vc-assistant/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

var testTokens = Tokens{AccessToken: "access", RefreshToken: "refresh"}

// ==========================
// Body extraction
// ==========================

func TestExtractBody(t *testing.T) {
	tests := []struct {
		name string
		msg  *gmail.Message
		want string
	}{
		{
			name: "top-level body",
			msg:  &gmail.Message{Payload: &gmail.MessagePart{Body: &gmail.MessagePartBody{Data: b64("hello")}}},
			want: "hello",
		},
		{
			name: "plain parts concatenated",
			msg: &gmail.Message{Payload: &gmail.MessagePart{Parts: []*gmail.MessagePart{
				{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("one ")}},
				{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("two")}},
			}}},
			want: "one two",
		},
		{
			name: "html fallback",
			msg: &gmail.Message{Payload: &gmail.MessagePart{Parts: []*gmail.MessagePart{
				{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<p>hi</p>")}},
			}}},
			want: "<p>hi</p>",
		},
		{
			name: "nested multipart",
			msg: &gmail.Message{Payload: &gmail.MessagePart{Parts: []*gmail.MessagePart{
				{MimeType: "multipart/alternative", Parts: []*gmail.MessagePart{
					{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("nested")}},
				}},
			}}},
			want: "nested",
		},
		{
			name: "no payload",
			msg:  &gmail.Message{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractBody(tt.msg))
		})
	}
}

func TestToRawEmail(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	msg := &gmail.Message{
		Id: "m1", ThreadId: "t1", Snippet: "Raising a seed",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "from", Value: "Jane Doe <jane@acme.io>"},
				{Name: "To", Value: "me@fund.vc"},
				{Name: "Subject", Value: "Acme seed"},
				{Name: "Date", Value: "Mon, 02 Mar 2026 10:00:00 +0000"},
			},
			Body: &gmail.MessagePartBody{Data: b64("body")},
		},
	}

	raw := ToRawEmail(msg, now)

	assert.Equal(t, "Jane Doe <jane@acme.io>", raw.From)
	assert.Equal(t, "Acme seed", raw.Subject)
	assert.Equal(t, "body", raw.Body)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), raw.ReceivedAt)

	msg.Payload.Headers = nil
	assert.Equal(t, now, ToRawEmail(msg, now).ReceivedAt)
}

func TestToCalendarEvent(t *testing.T) {
	ev := ToCalendarEvent(&calendar.Event{
		Id:      "e1",
		Summary: "Acme intro",
		Start:   &calendar.EventDateTime{DateTime: "2026-03-02T15:00:00Z"},
		End:     &calendar.EventDateTime{Date: "2026-03-02"},
		Attendees: []*calendar.EventAttendee{
			{Email: "jane@acme.io"}, {Email: ""},
		},
	})

	require.NotNil(t, ev.Start)
	assert.Nil(t, ev.End)
	assert.Equal(t, []string{"jane@acme.io"}, ev.Attendees)
}

// ==========================
// Services over httptest
// ==========================

func TestConnector_MissingTokens(t *testing.T) {
	c := NewConnector(config.GoogleConfig{})

	_, err := c.Mail(context.Background(), Tokens{AccessToken: "only"})
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = c.Calendar(context.Background(), Tokens{})
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestGmailSource_FetchMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/users/me/messages"):
			assert.Equal(t, "is:unread", r.URL.Query().Get("q"))
			assert.Equal(t, "50", r.URL.Query().Get("maxResults"))
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"messages": []map[string]string{{"id": "m1"}},
			})
		case strings.HasSuffix(r.URL.Path, "/users/me/messages/m1"):
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"id": "m1", "threadId": "t1", "snippet": "hi",
				"payload": map[string]interface{}{
					"headers": []map[string]string{{"name": "Subject", "value": "Hello"}},
					"body":    map[string]string{"data": b64("full body")},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewConnector(config.GoogleConfig{}, option.WithEndpoint(srv.URL+"/"))
	src, err := c.Mail(context.Background(), testTokens)
	require.NoError(t, err)

	msgs, err := src.FetchMessages(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Hello", msgs[0].Subject)
	assert.Equal(t, "full body", msgs[0].Body)
}

func TestCalendarSource_FetchEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/primary/events"))
		assert.Equal(t, "true", r.URL.Query().Get("singleEvents"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{{
				"id": "e1", "summary": "Acme deep dive",
				"start": map[string]string{"dateTime": "2026-03-02T15:00:00Z"},
				"end":   map[string]string{"dateTime": "2026-03-02T16:00:00Z"},
			}},
		})
	}))
	defer srv.Close()

	c := NewConnector(config.GoogleConfig{}, option.WithEndpoint(srv.URL+"/"))
	src, err := c.Calendar(context.Background(), testTokens)
	require.NoError(t, err)

	start := time.Now()
	events, err := src.FetchEvents(context.Background(), start, start.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Acme deep dive", events[0].Summary)
	require.NotNil(t, events[0].End)
}
