package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"outreach/internal"
	"outreach/internal/config"
)

// Directory looks up people by free-text name. Implementations return every
// candidate the source offers; ranking is the matcher's job.
type Directory interface {
	Search(ctx context.Context, name string) ([]internal.DirectoryCandidate, error)
}

// ErrNotHarvested is returned by Open when a harvest directory has no
// harvested file yet.
var ErrNotHarvested = errors.New("directory not harvested yet")

// Open builds the lookup adapter an institution profile describes, wrapped
// in a per-run cache. Kind "none" yields a nil Directory.
func Open(cfg config.Config, inst *config.Institution, logger *slog.Logger) (Directory, error) {
	if inst == nil {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	settings := inst.Directory

	var dir Directory
	switch settings.Kind {
	case config.DirectoryNone, "":
		return nil, nil
	case config.DirectoryJSON:
		dir = NewJSONDirectory(NewFetcher(cfg), settings)
	case config.DirectoryHTML:
		var renderer Renderer
		if settings.Render {
			renderer = NewChromeRenderer(time.Duration(cfg.DirectoryTimeoutMs) * time.Millisecond)
		}
		dir = NewHTMLDirectory(NewFetcher(cfg), renderer, settings)
	case config.DirectoryStatic, config.DirectoryHarvest:
		static, err := LoadStaticFile(settings.Path, settings)
		if err != nil {
			if settings.Kind == config.DirectoryHarvest && errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: run `outreach directory harvest` for %s", ErrNotHarvested, inst.ID)
			}
			return nil, err
		}
		dir = static
	default:
		return nil, fmt.Errorf("unknown directory kind %q", settings.Kind)
	}

	logger.Debug("directory opened", "institution", inst.ID, "kind", settings.Kind)
	return NewCache(dir), nil
}

// Close releases resources held by dir, such as a headless browser.
func Close(dir Directory) {
	if c, ok := dir.(interface{ Close() }); ok {
		c.Close()
	}
}

// buildSearchURL substitutes "{query}" in base or, failing that, sets the
// query parameter.
func buildSearchURL(base, param, name string) (string, error) {
	if strings.Contains(base, "{query}") {
		return strings.ReplaceAll(base, "{query}", url.QueryEscape(name)), nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse directory url: %w", err)
	}
	if param == "" {
		param = "q"
	}
	q := u.Query()
	q.Set(param, name)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
