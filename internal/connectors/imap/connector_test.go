package imap

import (
	"context"
	"net"
	"strconv"
	"testing"

	"github.com/emersion/go-imap/backend/memory"
	imapclient "github.com/emersion/go-imap/client"
	"github.com/emersion/go-imap/server"

	"outreach/internal"
	"outreach/internal/config"
)

func startServer(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := server.New(memory.New())
	s.AllowInsecureAuth = true
	go s.Serve(l)
	t.Cleanup(func() { _ = s.Close() })
	return l.Addr().String()
}

func inboxCount(t *testing.T, addr string) uint32 {
	t.Helper()
	c, err := imapclient.Dial(addr)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Logout()
	if err := c.Login("username", "password"); err != nil {
		t.Fatal(err)
	}
	mbox, err := c.Select("INBOX", true)
	if err != nil {
		t.Fatal(err)
	}
	return mbox.Messages
}

func TestCreateDraftAppends(t *testing.T) {
	addr := startServer(t)
	host, port, _ := net.SplitHostPort(addr)
	portNum, err := strconv.Atoi(port)
	if err != nil {
		t.Fatal(err)
	}

	conn, err := NewConnector(config.Config{
		IMAPHost:          host,
		IMAPPort:          portNum,
		IMAPUser:          "username",
		IMAPPassword:      "password",
		IMAPDraftsMailbox: "INBOX",
	})
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	before := inboxCount(t, addr)
	raw := []byte("From: a@b.edu\r\nTo: c@d.edu\r\nSubject: hi\r\n\r\nbody\r\n")
	for i := 0; i < 2; i++ {
		id, err := conn.CreateDraft(context.Background(), internal.DraftMessage{To: "c@d.edu", Raw: raw})
		if err != nil {
			t.Fatal(err)
		}
		if id != "INBOX" {
			t.Fatalf("id=%q", id)
		}
	}
	if after := inboxCount(t, addr); after != before+2 {
		t.Fatalf("before=%d after=%d", before, after)
	}
}

func TestNewConnectorRequiresHost(t *testing.T) {
	if _, err := NewConnector(config.Config{IMAPUser: "u", IMAPPassword: "p"}); err == nil {
		t.Fatal("expected error")
	}
}
