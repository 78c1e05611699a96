package mailer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"outreach/internal/config"
	"outreach/internal/connectors"
	"outreach/internal/logging"
)

const stacked = "name,email,course\nJane Smith,jsmith@x.edu,MATH 1101\n,,MATH 1102\nBob Stone,,CPSC 1150\n"

func testService(t *testing.T) (*Service, config.Config) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Config{
		RawMailDir:     filepath.Join(root, "drafts"),
		DraftsInboxDir: filepath.Join(root, "inbox"),
		SenderName:     "Josie",
		SenderAddress:  "josie@club.example.org",
		MailSubject:    "Hello",
	}
	composer, err := connectors.NewComposer(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	drafts := connectors.NewDraftService(composer, cfg.RawMailDir, nil, logging.Discard())
	return NewService(cfg, drafts, logging.Discard()), cfg
}

func TestDraftFile(t *testing.T) {
	svc, cfg := testService(t)
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := os.WriteFile(path, []byte(stacked), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := svc.DraftFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Composed != 1 || res.Skipped != 1 {
		t.Fatalf("res=%+v", res)
	}
	files, _ := filepath.Glob(filepath.Join(cfg.RawMailDir, "*.eml"))
	if len(files) != 1 {
		t.Fatalf("drafts=%v", files)
	}
}

func TestRunCycleMovesFiles(t *testing.T) {
	svc, cfg := testService(t)
	if err := os.MkdirAll(cfg.DraftsInboxDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.DraftsInboxDir, "a.csv"), []byte(stacked), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.DraftsInboxDir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := svc.RunCycle(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	if _, err := os.Stat(filepath.Join(cfg.DraftsInboxDir, "processed", "a.csv")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(cfg.DraftsInboxDir, "notes.txt")); err != nil {
		t.Fatal("non-csv files stay put")
	}
}

func TestNewConnector(t *testing.T) {
	conn, closeFn, err := NewConnector(context.Background(), config.Config{DraftsProvider: "file"})
	if err != nil || conn != nil || closeFn() != nil {
		t.Fatalf("file provider: %v %v", conn, err)
	}
	if _, _, err := NewConnector(context.Background(), config.Config{DraftsProvider: "imap"}); err == nil {
		t.Fatal("imap without host should fail")
	}
	if _, _, err := NewConnector(context.Background(), config.Config{DraftsProvider: "outlook"}); err == nil {
		t.Fatal("unknown provider should fail")
	}
}
