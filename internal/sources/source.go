package sources

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"outreach/internal"
	"outreach/internal/pipeline"
)

// Source yields raw (name, email, course) records in input order.
type Source interface {
	Records(ctx context.Context) ([]internal.RawRecord, error)
}

type Options struct {
	Rules  *pipeline.Rules
	Logger *slog.Logger
	// Sheet restricts XLSX input to one worksheet.
	Sheet string
}

func (o Options) withDefaults() Options {
	if o.Rules == nil {
		o.Rules = pipeline.DefaultRules()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// FileSource reads one listing file; the parser is picked by extension.
type FileSource struct {
	Path string
	ext  string
	opts Options
}

// Open returns the source for path. Supported extensions are .csv, .xlsx,
// .xlsm, .html, .htm, .txt, .pdf and .eml.
func Open(path string, opts Options) (*FileSource, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supported(ext) {
		return nil, fmt.Errorf("unsupported input type %q: %s", ext, path)
	}
	return &FileSource{Path: path, ext: ext, opts: opts.withDefaults()}, nil
}

func (s *FileSource) Records(ctx context.Context) ([]internal.RawRecord, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return parseBytes(ctx, s.ext, data, s.Path, s.opts)
}

// ReadAll concatenates the records of every path in order.
func ReadAll(ctx context.Context, paths []string, opts Options) ([]internal.RawRecord, error) {
	out := make([]internal.RawRecord, 0)
	for _, p := range paths {
		src, err := Open(p, opts)
		if err != nil {
			return nil, err
		}
		recs, err := src.Records(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

func supported(ext string) bool {
	switch ext {
	case ".csv", ".xlsx", ".xlsm", ".html", ".htm", ".txt", ".pdf", ".eml":
		return true
	}
	return false
}

func parseBytes(ctx context.Context, ext string, data []byte, origin string, opts Options) ([]internal.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch ext {
	case ".csv":
		return ParseCSV(data, origin, opts)
	case ".xlsx", ".xlsm":
		return ParseXLSX(ctx, data, origin, opts)
	case ".html", ".htm":
		return ParseHTML(data, origin, opts)
	case ".txt":
		return ParseTimetable(string(data), origin, internal.SourceTimetable), nil
	case ".pdf":
		return ParsePDF(ctx, data, origin)
	case ".eml":
		return ParseMail(ctx, data, origin, opts)
	}
	return nil, fmt.Errorf("unsupported input type %q: %s", ext, origin)
}

// dedupePairs drops repeated (name, course) pairs. Only used for sources
// where every record names its person; table rows rely on carry-forward
// and keep their repeats.
func dedupePairs(records []internal.RawRecord) []internal.RawRecord {
	seen := map[string]struct{}{}
	out := make([]internal.RawRecord, 0, len(records))
	for _, rec := range records {
		key := rec.Name + "\x00" + rec.Course
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}
