package sources

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"outreach/internal"
)

var (
	// ABT 110, ENGL 052, FREN 460C at the start of a line
	courseHeaderRE = regexp.MustCompile(`^\s*([A-Z]{2,5})\s+(\d{3,4}[A-Z]?)\b`)
	// CRN, section code, instructor, then a column gap
	sectionNameRE = regexp.MustCompile(`^\s*\d{5}\s+[A-Z0-9#]{2,3}\s+([A-Z][A-Za-z'.-]+(?: [A-Z][A-Za-z'.-]+)+)\s{2,}`)
	// extracted PDF text often loses the column gap; take two words only
	sectionPairRE = regexp.MustCompile(`^\s*\d{5}\s+[A-Z0-9#]{2,3}\s+([A-Z][A-Za-z'.-]+ [A-Z][A-Za-z'.-]+)\b`)
	personNameRE  = regexp.MustCompile(`^[A-Z][A-Za-z'.-]+(?: [A-Z][A-Za-z'.-]+)+$`)
)

// timetable tracks the current course while walking a printed schedule.
type timetable struct {
	origin string
	source internal.RecordSource
	course string
	out    []internal.RawRecord
}

// line consumes one schedule line. spanNames are names the page marked up
// separately; they take precedence over the text pattern.
func (t *timetable) line(lineNo int, text string, spanNames []string) {
	if m := courseHeaderRE.FindStringSubmatch(text); m != nil {
		t.course = m[1] + " " + m[2]
		return
	}
	if t.course == "" {
		return
	}

	found := false
	for _, name := range spanNames {
		name = strings.TrimSpace(name)
		if personNameRE.MatchString(name) {
			t.add(lineNo, name)
			found = true
		}
	}
	if found {
		return
	}

	m := sectionNameRE.FindStringSubmatch(text)
	if m == nil {
		m = sectionPairRE.FindStringSubmatch(text)
	}
	if m != nil && personNameRE.MatchString(m[1]) {
		t.add(lineNo, m[1])
	}
}

func (t *timetable) add(lineNo int, name string) {
	t.out = append(t.out, internal.RawRecord{
		LineNo: lineNo,
		Source: t.source,
		Origin: t.origin,
		Name:   name,
		Course: t.course,
	})
}

// ParseTimetable reads schedule text: course header lines followed by
// section lines that name the instructor.
func ParseTimetable(text, origin string, source internal.RecordSource) []internal.RawRecord {
	t := &timetable{origin: origin, source: source}
	for i, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		t.line(i+1, line, nil)
	}
	return dedupePairs(t.out)
}

// ParsePDF extracts page text and runs it through the timetable parser.
func ParsePDF(ctx context.Context, content []byte, origin string) ([]internal.RawRecord, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", origin, err)
	}

	var text strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}
	return ParseTimetable(text.String(), origin, internal.SourcePDF), nil
}
