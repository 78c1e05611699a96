package pipeline

import (
	"fmt"
	"strings"
)

type Layout string

const (
	// LayoutContact rows carry name, email and course.
	LayoutContact Layout = "contact"
	// LayoutRoster rows carry name and course; emails are resolved later.
	LayoutRoster Layout = "roster"
)

type TableLayout struct {
	Layout    Layout
	HasHeader bool
	NameCol   int
	EmailCol  int
	CourseCol int
}

// DetectLayout inspects the first two cells of the first non-empty row.
// "name,email" selects the contact layout and "prof name,course number"
// the roster layout (aliases come from the rules). Without a header, a
// two-column body is a roster and a wider body with an email-shaped or
// blank second cell is a contact table. Anything else fails with
// ErrFatalInputStructure.
func DetectLayout(rows [][]string, rules *Rules) (TableLayout, error) {
	if rules == nil {
		rules = DefaultRules()
	}

	first := -1
	for i, row := range rows {
		if nonEmptyWidth(row) > 0 {
			first = i
			break
		}
	}
	if first < 0 {
		return TableLayout{}, fmt.Errorf("%w: no rows", ErrFatalInputStructure)
	}

	header := normalizeHeaderRow(rows[first])
	h0, h1 := cellAt(header, 0), cellAt(header, 1)

	if contains(rules.NameHeaders, h0) && contains(rules.EmailHeaders, h1) {
		courseCol := indexOfAny(header, rules.CourseHeaders, 2)
		if courseCol < 0 && len(header) > 2 {
			courseCol = 2
		}
		return TableLayout{Layout: LayoutContact, HasHeader: true, NameCol: 0, EmailCol: 1, CourseCol: courseCol}, nil
	}
	if contains(rules.NameHeaders, h0) && contains(rules.CourseHeaders, h1) {
		return TableLayout{Layout: LayoutRoster, HasHeader: true, NameCol: 0, EmailCol: -1, CourseCol: 1}, nil
	}

	width := nonEmptyWidth(rows[first])
	switch {
	case width == 2 && !strings.Contains(cellAt(rows[first], 1), "@"):
		return TableLayout{Layout: LayoutRoster, NameCol: 0, EmailCol: -1, CourseCol: 1}, nil
	case width >= 2:
		second := strings.TrimSpace(cellAt(rows[first], 1))
		if second == "" || strings.Contains(second, "@") {
			courseCol := 2
			if width == 2 {
				courseCol = -1
			}
			return TableLayout{Layout: LayoutContact, NameCol: 0, EmailCol: 1, CourseCol: courseCol}, nil
		}
	}
	return TableLayout{}, fmt.Errorf("%w: header %q,%q and %d columns", ErrFatalInputStructure, h0, h1, width)
}

func normalizeHeaderRow(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.ToLower(strings.Join(strings.Fields(strings.TrimPrefix(c, "\ufeff")), " "))
	}
	return out
}

// nonEmptyWidth is the index of the last non-blank cell plus one.
func nonEmptyWidth(row []string) int {
	for i := len(row) - 1; i >= 0; i-- {
		if strings.TrimSpace(row[i]) != "" {
			return i + 1
		}
	}
	return 0
}

func cellAt(row []string, i int) string {
	if i >= 0 && i < len(row) {
		return row[i]
	}
	return ""
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func indexOfAny(header []string, probes []string, from int) int {
	for i := from; i < len(header); i++ {
		if contains(probes, header[i]) {
			return i
		}
	}
	return -1
}
