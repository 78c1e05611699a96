package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"outreach/internal/config"
	"outreach/internal/connectors"
	gmailconnector "outreach/internal/connectors/gmail"
	imapconnector "outreach/internal/connectors/imap"
	"outreach/internal/pipeline"
)

// Service turns stacked output tables into drafts. Run watches an inbox
// directory; DraftFile handles a single table.
type Service struct {
	cfg    config.Config
	drafts *connectors.DraftService
	logger *slog.Logger
}

func NewService(cfg config.Config, drafts *connectors.DraftService, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cfg: cfg, drafts: drafts, logger: logger}
}

// Run processes the inbox every DRAFTS_POLL_INTERVAL_SEC until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.DraftsPollIntervalSec) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	for {
		if _, err := s.RunCycle(ctx); err != nil {
			s.logger.Error("drafts cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// RunCycle drafts every *.csv in the inbox and moves each file to
// processed/ or failed/. It returns the number of files handled.
func (s *Service) RunCycle(ctx context.Context) (int, error) {
	files, err := filepath.Glob(filepath.Join(s.cfg.DraftsInboxDir, "*.csv"))
	if err != nil {
		return 0, err
	}
	sort.Strings(files)

	handled := 0
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		res, err := s.DraftFile(ctx, path)
		dest := "processed"
		if err != nil {
			dest = "failed"
			s.logger.Error("drafting failed", "file", path, "error", err)
		}
		if res.Interrupted {
			// leave the file for the next start
			break
		}
		if err := moveInto(path, filepath.Join(s.cfg.DraftsInboxDir, dest)); err != nil {
			return handled, err
		}
		handled++
		s.logger.Info("drafts cycle file done", "file", filepath.Base(path), "drafts", res.Composed, "skipped", res.Skipped, "moved_to", dest)
	}
	return handled, nil
}

// DraftFile reads a stacked name,email,course table and drafts one
// message per reassembled contact.
func (s *Service) DraftFile(ctx context.Context, path string) (connectors.DraftResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return connectors.DraftResult{}, err
	}
	defer f.Close()

	rows, err := pipeline.ReadStackedCSV(f)
	if err != nil {
		return connectors.DraftResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	return s.drafts.CreateDrafts(ctx, pipeline.Unstack(rows))
}

// NewConnector picks the draft provider named by DRAFTS_PROVIDER. The
// "file" provider returns a nil connector: drafts are only archived. The
// returned close func is never nil.
func NewConnector(ctx context.Context, cfg config.Config) (connectors.DraftConnector, func() error, error) {
	noop := func() error { return nil }
	switch provider := strings.ToLower(strings.TrimSpace(cfg.DraftsProvider)); provider {
	case "", "file":
		return nil, noop, nil
	case "gmail":
		c, err := gmailconnector.NewConnector(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		return c, noop, nil
	case "imap":
		c, err := imapconnector.NewConnector(cfg)
		if err != nil {
			return nil, noop, err
		}
		return c, c.Close, nil
	default:
		return nil, noop, fmt.Errorf("unsupported drafts provider: %s", provider)
	}
}

func moveInto(path, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	dest := filepath.Join(dir, filepath.Base(path))
	if _, err := os.Stat(dest); err == nil {
		dest = filepath.Join(dir, fmt.Sprintf("%d_%s", time.Now().Unix(), filepath.Base(path)))
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.Rename(path, dest)
}
