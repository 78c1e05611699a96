package sources

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"outreach/internal"
	"outreach/internal/util"
)

var reDashes = regexp.MustCompile(`^[-–—]+$`)

// ParseHTML pulls records from a saved course-search page. Tables with a
// recognised header are read like CSV. Other tables are scanned row by
// row for a subject cell, a course number cell and the last cell that
// reads like a name. Preformatted blocks are parsed as a timetable.
func ParseHTML(data []byte, origin string, opts Options) ([]internal.RawRecord, error) {
	opts = opts.withDefaults()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", origin, err)
	}

	out := make([]internal.RawRecord, 0)
	pairs := make([]internal.RawRecord, 0)
	line := 0
	doc.Find("table").Each(func(ti int, table *goquery.Selection) {
		rows := make([]tableRow, 0)
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			// nested tables are visited on their own
			if tr.ParentsFiltered("table").First().Get(0) != table.Get(0) {
				return
			}
			line++
			cells := make([]string, 0)
			tr.ChildrenFiltered("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, util.CollapseSpaces(cell.Text()))
			})
			rows = append(rows, tableRow{line: line, cells: cells})
		})
		if len(rows) == 0 {
			return
		}

		tableOrigin := fmt.Sprintf("%s#table%d", origin, ti+1)
		if hasHeader(rows, opts) {
			recs, err := recordsFromRows(rows, tableOrigin, internal.SourceHTMLTable, opts)
			if err == nil {
				out = append(out, recs...)
				return
			}
		}
		pairs = append(pairs, scanCourseRows(rows, tableOrigin, opts)...)
	})

	t := &timetable{origin: origin + "#pre", source: internal.SourceTimetable}
	doc.Find("pre").Each(func(i int, pre *goquery.Selection) {
		lines := make([]string, 0)
		for _, text := range strings.Split(pre.Text(), "\n") {
			if strings.TrimSpace(text) != "" {
				lines = append(lines, text)
			}
		}
		// one section per block: marked-up names belong to it
		var spans []string
		if len(lines) == 1 {
			pre.Find("span").Each(func(_ int, s *goquery.Selection) {
				spans = append(spans, util.CollapseSpaces(s.Text()))
			})
		}
		for j, text := range lines {
			t.line((i+1)*1000+j, text, spans)
		}
	})
	pairs = append(pairs, t.out...)

	return append(out, dedupePairs(pairs)...), nil
}

func hasHeader(rows []tableRow, opts Options) bool {
	for _, r := range rows {
		if isBlankRow(r.cells) {
			continue
		}
		if len(r.cells) < 2 {
			return false
		}
		h0 := strings.ToLower(r.cells[0])
		for _, alias := range opts.Rules.NameHeaders {
			if h0 == alias {
				return true
			}
		}
		return false
	}
	return false
}

// scanCourseRows handles listing tables without a usable header, such as
// "CRN | ACCT | 1045 | 001 | ... | Lan, Gabrielle".
func scanCourseRows(rows []tableRow, origin string, opts Options) []internal.RawRecord {
	out := make([]internal.RawRecord, 0)
	for _, r := range rows {
		subject, number := "", ""
		for _, v := range r.cells {
			if subject == "" && util.LooksLikeSubject(v) {
				subject = v
			} else if subject != "" && util.LooksLikeCourseNumber(v) {
				number = v
				break
			}
		}
		if subject == "" || number == "" {
			continue
		}
		name := ""
		for i := len(r.cells) - 1; i >= 0; i-- {
			if looksLikeListedName(r.cells[i], opts) {
				name = r.cells[i]
				break
			}
		}
		if name == "" {
			continue
		}
		out = append(out, internal.RawRecord{
			LineNo: r.line,
			Source: internal.SourceHTMLTable,
			Origin: origin,
			Name:   name,
			Course: subject + " " + number,
		})
	}
	return out
}

func looksLikeListedName(v string, opts Options) bool {
	if v == "" || reDashes.MatchString(v) || strings.Contains(v, "@") {
		return false
	}
	if opts.Rules.IsPlaceholderInstructor(v) || strings.EqualFold(v, "www") {
		return false
	}
	hasLetter := strings.IndexFunc(v, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}) >= 0
	return hasLetter && (strings.Contains(v, " ") || strings.Contains(v, ","))
}
