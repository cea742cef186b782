// Package google reads Gmail messages and Calendar events on behalf of a
// signed-in user.
package google

import (
	"context"
	"errors"
	"time"

	"vc-assistant/internal/common/config"
	"vc-assistant/internal/models"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

var ErrMissingToken = errors.New("MISSING_TOKEN")

// Tokens are the user's OAuth credentials as handed over by the sign-in flow.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (t Tokens) Valid() bool {
	return t.AccessToken != "" && t.RefreshToken != ""
}

// MailSource lists and fetches messages from one mailbox.
type MailSource interface {
	FetchMessages(ctx context.Context, query string, maxResults int64) ([]models.RawEmail, error)
}

// CalendarSource lists events from the primary calendar.
type CalendarSource interface {
	FetchEvents(ctx context.Context, start, end time.Time) ([]models.CalendarEvent, error)
}

// Connector opens per-user Gmail and Calendar sources.
type Connector interface {
	Mail(ctx context.Context, tokens Tokens) (MailSource, error)
	Calendar(ctx context.Context, tokens Tokens) (CalendarSource, error)
}

// OAuthConnector builds API clients from an OAuth client config and the
// user's tokens. Extra client options are appended to every service.
type OAuthConnector struct {
	oauth *oauth2.Config
	opts  []option.ClientOption
}

func NewConnector(cfg config.GoogleConfig, opts ...option.ClientOption) *OAuthConnector {
	return &OAuthConnector{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     googleoauth.Endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/gmail.readonly",
				"https://www.googleapis.com/auth/calendar.readonly",
			},
		},
		opts: opts,
	}
}

func (c *OAuthConnector) clientOptions(ctx context.Context, tokens Tokens) ([]option.ClientOption, error) {
	if !tokens.Valid() {
		return nil, ErrMissingToken
	}
	httpClient := c.oauth.Client(ctx, &oauth2.Token{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
	return append([]option.ClientOption{option.WithHTTPClient(httpClient)}, c.opts...), nil
}
