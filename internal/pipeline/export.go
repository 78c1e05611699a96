package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"outreach/internal"
	"outreach/internal/config"
	"outreach/internal/util"
)

var outputHeader = []string{"name", "email", "course"}

// FilterSet toggles the validity filters applied before stacking.
type FilterSet struct {
	DropPlaceholders bool
	RequireEmail     bool
	RequireCourse    bool
	SortByCourse     bool
	Rules            *Rules
}

func DefaultFilters() FilterSet {
	return FilterSet{DropPlaceholders: true, RequireEmail: true, RequireCourse: true}
}

func FiltersFromConfig(cfg config.Config, rules *Rules) FilterSet {
	return FilterSet{
		DropPlaceholders: cfg.FilterDropPlaceholders,
		RequireEmail:     cfg.FilterRequireEmail,
		RequireCourse:    cfg.FilterRequireCourse,
		SortByCourse:     cfg.FilterSortByCourse,
		Rules:            rules,
	}
}

// Assemble filters contacts and renders them with the stacking convention:
// the first course row carries name and email, later rows carry the course
// only.
func Assemble(contacts []internal.Contact, filters FilterSet) []internal.OutputRow {
	rules := filters.Rules
	if rules == nil {
		rules = DefaultRules()
	}

	kept := make([]internal.Contact, 0, len(contacts))
	for _, c := range contacts {
		if filters.DropPlaceholders && rules.IsPlaceholderInstructor(c.Key.Name) {
			continue
		}
		if filters.RequireEmail && !util.ValidEmail(c.Key.Email) {
			continue
		}
		if filters.RequireCourse && len(c.Courses) == 0 {
			continue
		}
		kept = append(kept, c)
	}

	if filters.SortByCourse {
		sort.SliceStable(kept, func(i, j int) bool {
			ci, cj := firstCourse(kept[i]), firstCourse(kept[j])
			if ci != cj {
				return ci < cj
			}
			return kept[i].Key.Name < kept[j].Key.Name
		})
	}

	rows := make([]internal.OutputRow, 0, len(kept))
	for _, c := range kept {
		if len(c.Courses) == 0 {
			rows = append(rows, internal.OutputRow{Name: c.Key.Name, Email: c.Key.Email})
			continue
		}
		rows = append(rows, internal.OutputRow{Name: c.Key.Name, Email: c.Key.Email, Course: c.Courses[0]})
		for _, course := range c.Courses[1:] {
			rows = append(rows, internal.OutputRow{Course: course})
		}
	}
	return rows
}

func firstCourse(c internal.Contact) string {
	if len(c.Courses) == 0 {
		return ""
	}
	return c.Courses[0]
}

// Unstack rebuilds contacts from stacked rows by carrying the last name and
// email down onto rows that leave them blank.
func Unstack(rows []internal.OutputRow) []internal.Contact {
	out := []internal.Contact{}
	current := -1
	for _, r := range rows {
		name := strings.TrimSpace(r.Name)
		email := strings.TrimSpace(r.Email)
		course := strings.TrimSpace(r.Course)
		if name != "" || email != "" {
			if name == "" {
				name = FallbackName
			}
			out = append(out, internal.Contact{Key: internal.CanonicalKey{Name: name, Email: email}})
			current = len(out) - 1
		}
		if current < 0 || course == "" {
			continue
		}
		out[current].Courses = append(out[current].Courses, course)
	}
	return out
}

func WriteCSV(w io.Writer, rows []internal.OutputRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(outputHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Name, r.Email, r.Course}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteCSVFile(path string, rows []internal.OutputRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadStackedCSV reads a name,email,course table. The header row is optional.
func ReadStackedCSV(r io.Reader) ([]internal.OutputRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	out := make([]internal.OutputRow, 0, len(records))
	for i, rec := range records {
		cells := make([]string, 3)
		copy(cells, rec)
		if i == 0 && strings.EqualFold(strings.TrimSpace(cells[0]), "name") && strings.EqualFold(strings.TrimSpace(cells[1]), "email") {
			continue
		}
		if strings.TrimSpace(strings.Join(cells, "")) == "" {
			continue
		}
		out = append(out, internal.OutputRow{Name: cells[0], Email: cells[1], Course: cells[2]})
	}
	return out, nil
}

// ExportRowsToXLSX writes the stacked rows to an "output" sheet and, when
// given, the per-name resolution report to a "review" sheet.
func ExportRowsToXLSX(rows []internal.OutputRow, review []internal.Resolution, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "output"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	if err := writeSheetRow(f, sheet, 1, []any{"name", "email", "course"}); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeSheetRow(f, sheet, i+2, []any{row.Name, row.Email, row.Course}); err != nil {
			return err
		}
	}

	if len(review) > 0 {
		if _, err := f.NewSheet("review"); err != nil {
			return err
		}
		if err := writeSheetRow(f, "review", 1, []any{
			"query", "display", "status", "reason", "email", "candidates",
			"chosen", "nearest_alternative", "alternative_distance", "lookup_error",
		}); err != nil {
			return err
		}
		for i, res := range review {
			dist := any("")
			if res.Alternative != "" {
				dist = res.AlternativeDist
			}
			if err := writeSheetRow(f, "review", i+2, []any{
				res.Query, res.Display, string(res.Status), string(res.Reason), res.Email, res.Candidates,
				res.Chosen, res.Alternative, dist, res.LookupError,
			}); err != nil {
				return err
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("save %s: %w", outputPath, err)
	}
	return nil
}

func writeSheetRow(f *excelize.File, sheet string, row int, values []any) error {
	for c, v := range values {
		cell, err := excelize.CoordinatesToCellName(c+1, row)
		if err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, row, err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("sheet %s cell %s: %w", sheet, cell, err)
		}
	}
	return nil
}
