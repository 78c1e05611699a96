package connectors

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"outreach/internal"
)

// DraftStore keeps composed drafts as .eml files named by a hash of
// recipient, subject and body. MIME boundaries and dates differ between
// builds of the same draft and are left out of the name. It doubles as the
// "file" draft provider.
type DraftStore struct {
	dir string
}

func NewDraftStore(dir string) *DraftStore {
	return &DraftStore{dir: dir}
}

// Store writes msg once and returns its path. Rewriting an identical draft
// is a no-op.
func (s *DraftStore) Store(msg internal.DraftMessage) (string, error) {
	hash := draftKey(msg)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	rawPath := filepath.Join(s.dir, hash+".eml")
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, msg.Raw, 0o644); err != nil {
			return "", err
		}
	}
	return rawPath, nil
}

func (s *DraftStore) CreateDraft(ctx context.Context, msg internal.DraftMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Store(msg)
}

func draftKey(msg internal.DraftMessage) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(msg.To)))
	h.Write([]byte{0})
	h.Write([]byte(msg.Subject))
	h.Write([]byte{0})
	if msg.Text != "" {
		h.Write([]byte(msg.Text))
	} else {
		h.Write(msg.Raw)
	}
	return hex.EncodeToString(h.Sum(nil))
}
