package connectors

import (
	"context"

	"outreach/internal"
)

// DraftConnector saves a composed message as an unsent draft and returns
// the provider's id for it.
type DraftConnector interface {
	CreateDraft(ctx context.Context, msg internal.DraftMessage) (string, error)
}
