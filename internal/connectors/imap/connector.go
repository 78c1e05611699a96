package imap

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"

	"outreach/internal"
	"outreach/internal/config"
)

// Connector appends drafts to a mailbox over one lazily opened session.
type Connector struct {
	host     string
	port     int
	secure   bool
	user     string
	password string
	mailbox  string

	mu     sync.Mutex
	client *imapclient.Client
}

func NewConnector(cfg config.Config) (*Connector, error) {
	if err := cfg.Require("IMAP_HOST", cfg.IMAPHost); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_USER", cfg.IMAPUser); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_PASSWORD", cfg.IMAPPassword); err != nil {
		return nil, err
	}
	mailbox := cfg.IMAPDraftsMailbox
	if mailbox == "" {
		mailbox = "Drafts"
	}

	return &Connector{
		host:     cfg.IMAPHost,
		port:     cfg.IMAPPort,
		secure:   cfg.IMAPSecure,
		user:     cfg.IMAPUser,
		password: cfg.IMAPPassword,
		mailbox:  mailbox,
	}, nil
}

// CreateDraft appends msg with the \Draft and \Seen flags. The returned id
// is the mailbox name; APPEND does not report a UID without UIDPLUS.
func (c *Connector) CreateDraft(ctx context.Context, msg internal.DraftMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	client, err := c.session(ctx)
	if err != nil {
		return "", err
	}
	flags := []string{imap.DraftFlag, imap.SeenFlag}
	if err := client.Append(c.mailbox, flags, time.Now(), bytes.NewBuffer(msg.Raw)); err != nil {
		// drop the session so the next draft reconnects
		_ = client.Logout()
		c.client = nil
		return "", fmt.Errorf("imap append to %s: %w", c.mailbox, err)
	}
	return c.mailbox, nil
}

func (c *Connector) session(ctx context.Context) (*imapclient.Client, error) {
	if c.client != nil {
		return c.client, nil
	}
	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	var client *imapclient.Client
	var err error
	if c.secure {
		client, err = imapclient.DialTLS(addr, &tls.Config{ServerName: c.host})
	} else {
		client, err = imapclient.Dial(addr)
	}
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		client.Timeout = time.Until(deadline)
	}

	if err := client.Login(c.user, c.password); err != nil {
		_ = client.Logout()
		return nil, err
	}
	c.client = client
	return client, nil
}

func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Logout()
	c.client = nil
	return err
}
