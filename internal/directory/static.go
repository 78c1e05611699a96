package directory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"outreach/internal"
	"outreach/internal/config"
	"outreach/internal/util"
)

// StaticDirectory answers searches from a CSV export of a staff list.
type StaticDirectory struct {
	index *Index
}

func NewStaticDirectory(candidates []internal.DirectoryCandidate) *StaticDirectory {
	return &StaticDirectory{index: BuildIndex(candidates)}
}

func (d *StaticDirectory) Search(ctx context.Context, name string) ([]internal.DirectoryCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.index.Lookup(name), nil
}

func (d *StaticDirectory) Len() int {
	return len(d.index.Candidates)
}

func LoadStaticFile(path string, s config.DirectorySettings) (*StaticDirectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open static directory: %w", err)
	}
	defer f.Close()
	candidates, err := ReadCandidates(f, s)
	if err != nil {
		return nil, fmt.Errorf("read static directory %s: %w", path, err)
	}
	return NewStaticDirectory(candidates), nil
}

// ReadCandidates parses a headed CSV. Column names come from the settings
// and default to name, email, first and last.
func ReadCandidates(r io.Reader, s config.DirectorySettings) ([]internal.DirectoryCandidate, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	at := func(row []string, field string) string {
		i, ok := col[strings.ToLower(field)]
		if !ok || i >= len(row) {
			return ""
		}
		return util.CollapseSpaces(row[i])
	}

	nameField := fieldOr(s.Name, "name")
	emailField := fieldOr(s.Email, "email")
	firstField := fieldOr(s.First, "first")
	lastField := fieldOr(s.Last, "last")

	out := make([]internal.DirectoryCandidate, 0)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		c := internal.DirectoryCandidate{
			DisplayName: at(row, nameField),
			Email:       util.CleanEmail(at(row, emailField)),
			First:       at(row, firstField),
			Last:        at(row, lastField),
		}
		if c.DisplayName == "" {
			c.DisplayName = strings.TrimSpace(c.First + " " + c.Last)
		}
		if c.DisplayName == "" && c.Email == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// WriteStaticFile writes candidates in the layout ReadCandidates accepts
// with default settings.
func WriteStaticFile(path string, candidates []internal.DirectoryCandidate) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"name", "email"}); err != nil {
		_ = f.Close()
		return err
	}
	for _, c := range candidates {
		if err := w.Write([]string{c.DisplayName, c.Email}); err != nil {
			_ = f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
