package pipeline

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"outreach/internal"
)

func sampleContacts() []internal.Contact {
	return []internal.Contact{
		{Key: internal.CanonicalKey{Name: "Jane Smith", Email: "jsmith@x.edu"}, Courses: []string{"MATH 1101", "MATH 1102"}},
		{Key: internal.CanonicalKey{Name: "TBA", Email: "tba@x.edu"}, Courses: []string{"MATH 2000"}},
		{Key: internal.CanonicalKey{Name: "Bob Stone", Email: ""}, Courses: []string{"CPSC 1150"}},
		{Key: internal.CanonicalKey{Name: "Al Ames", Email: "aames@x.edu"}},
		{Key: internal.CanonicalKey{Name: "Gabrielle Lan", Email: "glan@x.edu"}, Courses: []string{"ACCT 1045"}},
	}
}

func TestAssembleDefaultFilters(t *testing.T) {
	got := Assemble(sampleContacts(), DefaultFilters())
	want := []internal.OutputRow{
		{Name: "Jane Smith", Email: "jsmith@x.edu", Course: "MATH 1101"},
		{Course: "MATH 1102"},
		{Name: "Gabrielle Lan", Email: "glan@x.edu", Course: "ACCT 1045"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v", got)
	}
}

func TestAssembleOptionalFilters(t *testing.T) {
	got := Assemble(sampleContacts(), FilterSet{SortByCourse: true})
	names := []string{}
	for _, r := range got {
		if r.Name != "" {
			names = append(names, r.Name)
		}
	}
	want := []string{"Al Ames", "Gabrielle Lan", "Bob Stone", "Jane Smith", "TBA"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("names=%v", names)
	}
	if got[0].Course != "" || got[0].Email != "aames@x.edu" {
		t.Fatalf("zero-course row=%+v", got[0])
	}
}

func TestStackingLaw(t *testing.T) {
	contacts := sampleContacts()
	filters := FilterSet{}
	rows := Assemble(contacts, filters)
	back := Unstack(rows)
	if len(back) != len(contacts) {
		t.Fatalf("len=%d", len(back))
	}
	for i := range contacts {
		if back[i].Key != contacts[i].Key || len(back[i].Courses) != len(contacts[i].Courses) {
			t.Fatalf("%d: %+v != %+v", i, back[i], contacts[i])
		}
	}
}

func TestCSVRoundTrip(t *testing.T) {
	rows := Assemble(sampleContacts(), DefaultFilters())
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "name,email,course\n") {
		t.Fatalf("header: %q", buf.String())
	}
	back, err := ReadStackedCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, rows) {
		t.Fatalf("got %+v", back)
	}
}

func TestUnstackFallbackName(t *testing.T) {
	got := Unstack([]internal.OutputRow{
		{Course: "ORPHAN 100"},
		{Email: "x@y.edu", Course: "A 100"},
		{Course: "A 200"},
	})
	if len(got) != 1 || got[0].Key.Name != FallbackName || !reflect.DeepEqual(got[0].Courses, []string{"A 100", "A 200"}) {
		t.Fatalf("got %+v", got)
	}
}

func TestExportRowsToXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "result.xlsx")
	rows := Assemble(sampleContacts(), DefaultFilters())
	review := []internal.Resolution{{
		Query: "Jane Smith", Display: "Jane Smith", Status: internal.MatchAmbiguous, Reason: internal.ReasonNone,
		Candidates: 2, Alternative: "Jane A. Smith", AlternativeDist: 2,
	}}
	if err := ExportRowsToXLSX(rows, review, path); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	out, err := f.GetRows("output")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(rows)+1 || out[1][0] != "Jane Smith" {
		t.Fatalf("output=%v", out)
	}
	rev, err := f.GetRows("review")
	if err != nil {
		t.Fatal(err)
	}
	if len(rev) != 2 || rev[1][2] != "AMBIGUOUS" || rev[1][8] != "2" {
		t.Fatalf("review=%v", rev)
	}
}

func TestWriteSheetRowReportsErrors(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if err := writeSheetRow(f, "Sheet1", 0, []any{"x"}); err == nil {
		t.Fatal("expected error for row 0")
	}
	if err := writeSheetRow(f, "missing", 1, []any{"x"}); err == nil {
		t.Fatal("expected error for unknown sheet")
	}
	if err := writeSheetRow(f, "Sheet1", 1, []any{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	if v, _ := f.GetCellValue("Sheet1", "B1"); v != "b" {
		t.Fatalf("B1=%q", v)
	}
}
