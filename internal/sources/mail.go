package sources

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jhillyerd/enmime"

	"outreach/internal"
)

// ParseMail reads a saved message whose attachments are rosters or
// schedules. Without usable attachments the HTML body is tried.
func ParseMail(ctx context.Context, raw []byte, origin string, opts Options) ([]internal.RawRecord, error) {
	opts = opts.withDefaults()
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("read message %s: %w", origin, err)
	}

	out := make([]internal.RawRecord, 0)
	parts := append(append([]*enmime.Part{}, env.Attachments...), env.Inlines...)
	for _, part := range parts {
		filename := strings.TrimSpace(part.FileName)
		ext := strings.ToLower(filepath.Ext(filename))
		if ext == ".eml" || !supported(ext) {
			continue
		}
		recs, err := parseBytes(ctx, ext, part.Content, origin+"#"+filename, opts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			opts.Logger.Warn("attachment skipped", "origin", origin, "attachment", filename, "error", err)
			continue
		}
		for i := range recs {
			recs[i].Source = internal.SourceEmail
		}
		out = append(out, recs...)
	}

	if len(out) == 0 && strings.TrimSpace(env.HTML) != "" {
		recs, err := ParseHTML([]byte(env.HTML), origin+"#body", opts)
		if err != nil {
			return nil, err
		}
		for i := range recs {
			recs[i].Source = internal.SourceEmail
		}
		out = append(out, recs...)
	}
	return out, nil
}
