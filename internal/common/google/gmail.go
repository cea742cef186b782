// internal/common/google/gmail.go
package google

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"vc-assistant/internal/models"

	"google.golang.org/api/gmail/v1"
)

const (
	DefaultMailQuery      = "is:unread"
	DefaultMaxResults     = 50
	gmailUser             = "me"
	mimeTypePlain         = "text/plain"
	mimeTypeHTML          = "text/html"
	gmailFullMessageParam = "full"
)

type gmailSource struct {
	svc *gmail.Service
}

func (c *OAuthConnector) Mail(ctx context.Context, tokens Tokens) (MailSource, error) {
	opts, err := c.clientOptions(ctx, tokens)
	if err != nil {
		return nil, err
	}
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &gmailSource{svc: svc}, nil
}

// FetchMessages lists messages matching query and fetches each in full, in
// list order.
func (s *gmailSource) FetchMessages(ctx context.Context, query string, maxResults int64) ([]models.RawEmail, error) {
	if query == "" {
		query = DefaultMailQuery
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	list, err := s.svc.Users.Messages.List(gmailUser).Q(query).MaxResults(maxResults).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	out := make([]models.RawEmail, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := s.svc.Users.Messages.Get(gmailUser, ref.Id).Format(gmailFullMessageParam).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("get message %s: %w", ref.Id, err)
		}
		out = append(out, ToRawEmail(msg, time.Now().UTC()))
	}
	return out, nil
}

// ToRawEmail flattens a full-format message. now is used when neither the
// Date header nor the internal date can be read.
func ToRawEmail(msg *gmail.Message, now time.Time) models.RawEmail {
	raw := models.RawEmail{
		MessageID: msg.Id,
		ThreadID:  msg.ThreadId,
		Snippet:   msg.Snippet,
		Body:      ExtractBody(msg),
	}

	var date string
	if msg.Payload != nil {
		raw.From = header(msg.Payload.Headers, "From")
		raw.To = header(msg.Payload.Headers, "To")
		raw.Subject = header(msg.Payload.Headers, "Subject")
		date = header(msg.Payload.Headers, "Date")
	}

	switch t, err := mail.ParseDate(date); {
	case date != "" && err == nil:
		raw.ReceivedAt = t.UTC()
	case msg.InternalDate > 0:
		raw.ReceivedAt = time.UnixMilli(msg.InternalDate).UTC()
	default:
		raw.ReceivedAt = now
	}
	return raw
}

func header(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// ExtractBody returns the top-level body when present, otherwise the
// concatenated text/plain parts, falling back to the first HTML part.
func ExtractBody(msg *gmail.Message) string {
	if msg.Payload == nil {
		return ""
	}
	if msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		return decodePart(msg.Payload.Body.Data)
	}

	var body string
	var walk func(parts []*gmail.MessagePart)
	walk = func(parts []*gmail.MessagePart) {
		for _, p := range parts {
			hasData := p.Body != nil && p.Body.Data != ""
			switch {
			case p.MimeType == mimeTypePlain && hasData:
				body += decodePart(p.Body.Data)
			case p.MimeType == mimeTypeHTML && hasData && body == "":
				body += decodePart(p.Body.Data)
			case len(p.Parts) > 0:
				walk(p.Parts)
			}
		}
	}
	walk(msg.Payload.Parts)
	return body
}

// decodePart accepts the URL-safe alphabet Gmail uses as well as standard
// base64, padded or not.
func decodePart(data string) string {
	for _, enc := range []*base64.Encoding{
		base64.URLEncoding, base64.RawURLEncoding, base64.StdEncoding, base64.RawStdEncoding,
	} {
		if b, err := enc.DecodeString(data); err == nil {
			return string(b)
		}
	}
	return ""
}
