package gmail

import (
	"context"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"outreach/internal"
	"outreach/internal/config"
)

type Connector struct {
	service *gmail.Service
	user    string
}

func NewConnector(ctx context.Context, cfg config.Config) (*Connector, error) {
	if err := cfg.Require("GMAIL_CLIENT_ID", cfg.GmailClientID); err != nil {
		return nil, err
	}
	if err := cfg.Require("GMAIL_CLIENT_SECRET", cfg.GmailClientSecret); err != nil {
		return nil, err
	}
	if err := cfg.Require("GMAIL_REFRESH_TOKEN", cfg.GmailRefreshToken); err != nil {
		return nil, err
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GmailClientID,
		ClientSecret: cfg.GmailClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.GmailRedirectURI,
		Scopes:       []string{gmail.GmailComposeScope},
	}

	tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.GmailRefreshToken})
	return NewConnectorWithOptions(ctx, option.WithTokenSource(tokenSource))
}

// NewConnectorWithOptions builds a connector from raw client options, e.g.
// an endpoint and HTTP client for a local server.
func NewConnectorWithOptions(ctx context.Context, opts ...option.ClientOption) (*Connector, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Connector{service: svc, user: "me"}, nil
}

func (c *Connector) CreateDraft(ctx context.Context, msg internal.DraftMessage) (string, error) {
	draft := &gmail.Draft{
		Message: &gmail.Message{Raw: base64.URLEncoding.EncodeToString(msg.Raw)},
	}
	created, err := c.service.Users.Drafts.Create(c.user, draft).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail drafts.create: %w", err)
	}
	return created.Id, nil
}
