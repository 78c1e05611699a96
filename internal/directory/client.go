package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"outreach/internal"
	"outreach/internal/config"
	"outreach/internal/util"
)

// JSONDirectory queries a search endpoint that answers with a list of
// people objects.
type JSONDirectory struct {
	fetcher  *Fetcher
	settings config.DirectorySettings
}

func NewJSONDirectory(fetcher *Fetcher, settings config.DirectorySettings) *JSONDirectory {
	return &JSONDirectory{fetcher: fetcher, settings: settings}
}

func (d *JSONDirectory) Search(ctx context.Context, name string) ([]internal.DirectoryCandidate, error) {
	u, err := buildSearchURL(d.settings.URL, d.settings.QueryParam, name)
	if err != nil {
		return nil, err
	}
	body, err := d.fetcher.Get(ctx, u, "application/json")
	if err != nil {
		return nil, err
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode directory response: %w", err)
	}

	items := resultsFrom(payload, d.settings.ResultsKey)
	out := make([]internal.DirectoryCandidate, 0, len(items))
	for _, raw := range items {
		if c, ok := toCandidate(raw, d.settings); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// resultsFrom finds the people list: the payload itself, the dotted
// results key, or one of the usual envelope keys.
func resultsFrom(payload any, key string) []map[string]any {
	if key != "" {
		for _, part := range strings.Split(key, ".") {
			m, ok := payload.(map[string]any)
			if !ok {
				return nil
			}
			payload = m[part]
		}
		return toObjects(payload)
	}
	if list := toObjects(payload); list != nil {
		return list
	}
	if m, ok := payload.(map[string]any); ok {
		for _, k := range []string{"results", "data", "items", "people"} {
			if list := toObjects(m[k]); list != nil {
				return list
			}
		}
	}
	return nil
}

func toObjects(v any) []map[string]any {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func toCandidate(raw map[string]any, s config.DirectorySettings) (internal.DirectoryCandidate, bool) {
	c := internal.DirectoryCandidate{
		DisplayName: toString(raw[fieldOr(s.Name, "name")]),
		Email:       util.CleanEmail(toString(raw[fieldOr(s.Email, "email")])),
	}
	if s.First != "" {
		c.First = toString(raw[s.First])
	}
	if s.Last != "" {
		c.Last = toString(raw[s.Last])
	}
	if c.DisplayName == "" {
		c.DisplayName = strings.TrimSpace(c.First + " " + c.Last)
	}
	if c.DisplayName == "" {
		return internal.DirectoryCandidate{}, false
	}
	return c, true
}

func fieldOr(field, fallback string) string {
	if strings.TrimSpace(field) == "" {
		return fallback
	}
	return field
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return util.CollapseSpaces(t)
	case []any:
		// some directories return a list of addresses
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				return util.CollapseSpaces(s)
			}
		}
	}
	return ""
}
