package sources

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"outreach/internal"
	"outreach/internal/pipeline"
	"outreach/internal/util"
)

type tableRow struct {
	line  int
	cells []string
}

// ParseCSV reads a name/email/course or roster table. Rows the CSV reader
// cannot parse are logged and skipped.
func ParseCSV(data []byte, origin string, opts Options) ([]internal.RawRecord, error) {
	opts = opts.withDefaults()
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows := make([]tableRow, 0)
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				logMalformed(opts.Logger, origin, perr.StartLine, perr.Err.Error())
				continue
			}
			return nil, fmt.Errorf("read csv %s: %w", origin, err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, tableRow{line: line, cells: cells})
	}
	return recordsFromRows(rows, origin, internal.SourceCSV, opts)
}

// ParseXLSX reads every worksheet (or only opts.Sheet) as a table. A sheet
// whose layout cannot be detected is skipped; the file fails only when no
// sheet is usable.
func ParseXLSX(ctx context.Context, data []byte, origin string, opts Options) ([]internal.RawRecord, error) {
	opts = opts.withDefaults()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", origin, err)
	}
	defer f.Close()

	out := make([]internal.RawRecord, 0)
	var lastErr error
	usable := 0
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if opts.Sheet != "" && !strings.EqualFold(sheet, opts.Sheet) {
			continue
		}
		raw, err := f.GetRows(sheet)
		if err != nil {
			lastErr = err
			continue
		}
		rows := make([]tableRow, 0, len(raw))
		for i, cells := range raw {
			rows = append(rows, tableRow{line: i + 1, cells: cells})
		}
		recs, err := recordsFromRows(rows, origin+"#"+sheet, internal.SourceXLSX, opts)
		if err != nil {
			opts.Logger.Warn("sheet skipped", "origin", origin, "sheet", sheet, "error", err)
			lastErr = err
			continue
		}
		usable++
		out = append(out, recs...)
	}
	if usable == 0 {
		if lastErr == nil {
			lastErr = fmt.Errorf("%w: no worksheet", pipeline.ErrFatalInputStructure)
		}
		return nil, fmt.Errorf("%s: %w", origin, lastErr)
	}
	return out, nil
}

func recordsFromRows(rows []tableRow, origin string, source internal.RecordSource, opts Options) ([]internal.RawRecord, error) {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = r.cells
	}
	layout, err := pipeline.DetectLayout(cells, opts.Rules)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", origin, err)
	}

	out := make([]internal.RawRecord, 0, len(rows))
	headerSkipped := !layout.HasHeader
	for _, r := range rows {
		if isBlankRow(r.cells) {
			continue
		}
		if !headerSkipped {
			headerSkipped = true
			continue
		}
		rec := internal.RawRecord{
			LineNo: r.line,
			Source: source,
			Origin: origin,
			Name:   cell(r.cells, layout.NameCol),
			Email:  cell(r.cells, layout.EmailCol),
			Course: cell(r.cells, layout.CourseCol),
		}
		if rec.Name == "" && rec.Email == "" && rec.Course == "" {
			logMalformed(opts.Logger, origin, r.line, "no name, email or course in known columns")
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func logMalformed(logger *slog.Logger, origin string, line int, detail string) {
	err := &pipeline.MalformedRowError{Origin: origin, LineNo: line, Detail: detail}
	logger.Warn("row skipped", "origin", origin, "line", line, "error", err)
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return util.CollapseSpaces(cells[i])
}
