package connectors

import (
	"context"
	"fmt"
	"log/slog"

	"outreach/internal"
	"outreach/internal/util"
)

type DraftService struct {
	composer  *Composer
	connector DraftConnector
	store     *DraftStore
	logger    *slog.Logger
}

type DraftResult struct {
	Composed    int
	Stored      int
	Delivered   int
	Skipped     int
	Interrupted bool
	IDs         []string
}

// NewDraftService archives every draft under rawMailDir and, when connector
// is not nil, also hands it to the provider.
func NewDraftService(composer *Composer, rawMailDir string, connector DraftConnector, logger *slog.Logger) *DraftService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DraftService{
		composer:  composer,
		connector: connector,
		store:     NewDraftStore(rawMailDir),
		logger:    logger,
	}
}

// CreateDrafts composes one draft per contact with a usable address. It
// stops at the first provider failure; cancelling ctx stops between
// contacts and reports what was done.
func (s *DraftService) CreateDrafts(ctx context.Context, contacts []internal.Contact) (DraftResult, error) {
	var res DraftResult
	for _, contact := range contacts {
		if ctx.Err() != nil {
			res.Interrupted = true
			break
		}
		if !util.ValidEmail(util.CleanEmail(contact.Key.Email)) {
			s.logger.Debug("draft skipped", "name", contact.Key.Name, "reason", "no email")
			res.Skipped++
			continue
		}

		msg, err := s.composer.Compose(contact)
		if err != nil {
			return res, err
		}
		res.Composed++

		path, err := s.store.Store(msg)
		if err != nil {
			return res, fmt.Errorf("store draft for %s: %w", msg.To, err)
		}
		res.Stored++

		id := path
		if s.connector != nil {
			id, err = s.connector.CreateDraft(ctx, msg)
			if err != nil {
				return res, fmt.Errorf("create draft for %s: %w", msg.To, err)
			}
			res.Delivered++
		}
		res.IDs = append(res.IDs, id)
		s.logger.Info("draft created", "to", msg.To, "courses", len(contact.Courses), "id", id)
	}
	return res, nil
}
