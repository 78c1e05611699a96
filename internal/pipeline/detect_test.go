package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectLayout(t *testing.T) {
	tests := []struct {
		name   string
		rows   [][]string
		layout Layout
		header bool
		course int
	}{
		{"contact header", [][]string{{"Name", "Email", "Course"}}, LayoutContact, true, 2},
		{"contact header with bom", [][]string{{"\ufeffNAME", " e-mail ", "notes", "Course Code"}}, LayoutContact, true, 3},
		{"roster header", [][]string{{}, {"Prof Name", "Course Number"}}, LayoutRoster, true, 1},
		{"headerless roster", [][]string{{"Jane Smith", "MATH 1101"}}, LayoutRoster, false, 1},
		{"headerless contact", [][]string{{"Jane Smith", "jsmith@x.edu", "MATH 1101"}}, LayoutContact, false, 2},
		{"headerless contact blank email", [][]string{{"Jane Smith", "", "MATH 1101"}}, LayoutContact, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectLayout(tt.rows, nil)
			if err != nil {
				t.Fatal(err)
			}
			if got.Layout != tt.layout || got.HasHeader != tt.header || got.CourseCol != tt.course {
				t.Fatalf("got %+v", got)
			}
		})
	}
}

func TestDetectLayoutFatal(t *testing.T) {
	for _, rows := range [][][]string{
		nil,
		{{"", ""}},
		{{"Foo", "Bar", "Baz"}},
		{{"only one column"}},
	} {
		if _, err := DetectLayout(rows, nil); !errors.Is(err, ErrFatalInputStructure) {
			t.Fatalf("rows=%v err=%v", rows, err)
		}
	}
}

func TestLoadRulesOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	data := `honorifics = ["dr", "rev"]
suffixes = ["jr"]
placeholder_markers = ["tba"]
placeholder_instructors = ["tba"]
separators = ["/"]

[headers]
name = ["Lecturer"]
course = ["Section"]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	rules, err := LoadRules(path)
	if err != nil {
		t.Fatal(err)
	}
	if !rules.IsHonorific("Rev.") || rules.IsHonorific("prof") {
		t.Fatal("honorific table not replaced")
	}
	got, err := NewNormalizer(rules).Normalize("Rev. Jane Smith")
	if err != nil || got.Display != "Jane Smith" {
		t.Fatalf("got %+v err=%v", got, err)
	}
	layout, err := DetectLayout([][]string{{"lecturer", "section"}}, rules)
	if err != nil || layout.Layout != LayoutRoster {
		t.Fatalf("layout=%+v err=%v", layout, err)
	}

	if _, err := ParseRules([]byte(`honorifics = ["dr"]`)); err == nil {
		t.Fatal("expected missing headers error")
	}
}

func TestDefaultRulesClassify(t *testing.T) {
	r := DefaultRules()
	tests := map[string]Classification{
		"Dr.":   ClassHonorific,
		"Ph.D.": ClassSuffix,
		"III":   ClassSuffix,
		"TBA":   ClassPlaceholderMarker,
		"Smith": ClassNone,
		"Ma":    ClassNone,
		"Van":   ClassParticle,
	}
	for tok, want := range tests {
		if got := r.Classify(tok); got != want {
			t.Fatalf("Classify(%q)=%q want %q", tok, got, want)
		}
	}
	if r.ClassifyPhrase("Course Offerings:") != ClassHeading {
		t.Fatal("heading phrase")
	}
	if !r.IsPlaceholderInstructor("  (Faculty)   TBA ") {
		t.Fatal("placeholder instructor")
	}
}
