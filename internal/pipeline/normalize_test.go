package pipeline

import (
	"errors"
	"reflect"
	"testing"
)

func TestNormalizeAccepted(t *testing.T) {
	n := NewNormalizer(nil)
	tests := []struct {
		raw     string
		first   string
		last    string
		display string
	}{
		{raw: "Jane Smith", first: "jane", last: "smith", display: "Jane Smith"},
		{raw: "Dr. Jane Smith", first: "jane", last: "smith", display: "Jane Smith"},
		{raw: "  Prof.   Dr  Jane Smith ", first: "jane", last: "smith", display: "Jane Smith"},
		{raw: "Lan, Gabrielle", first: "gabrielle", last: "lan", display: "Gabrielle Lan"},
		{raw: "Smith, Jane A.", first: "jane", last: "smith", display: "Jane Smith"},
		{raw: "Jane Q. Public Jr.", first: "jane", last: "public", display: "Jane Public"},
		{raw: "Smith, John, PhD", first: "john", last: "smith", display: "John Smith"},
		{raw: "José Núñez", first: "jose", last: "nunez", display: "José Núñez"},
		{raw: "Mary-Ann O'Neil", first: "mary-ann", last: "oneil", display: "Mary-Ann O'Neil"},
		{raw: "Robert (Bob) Anderson", first: "robert", last: "anderson", display: "Robert Anderson"},
		{raw: "Wei Ma", first: "wei", last: "ma", display: "Wei Ma"},
		{raw: "J.R. Smith", first: "jr", last: "smith", display: "J.R. Smith"},
		{raw: "Smith, J.R.", first: "jr", last: "smith", display: "J.R. Smith"},
		{raw: "J.R. Smith Jr.", first: "jr", last: "smith", display: "J.R. Smith"},
		{raw: "Van Der Berg, Anna, PhD", first: "anna", last: "berg", display: "Anna Berg"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := n.Normalize(tt.raw)
			if err != nil {
				t.Fatal(err)
			}
			if got.First != tt.first || got.Last != tt.last || got.Display != tt.display {
				t.Fatalf("got %+v", got)
			}
			if !reflect.DeepEqual(got.Tokens, []string{tt.first, tt.last}) {
				t.Fatalf("tokens=%v", got.Tokens)
			}
		})
	}
}

func TestNormalizeRejected(t *testing.T) {
	n := NewNormalizer(nil)
	tests := []struct {
		raw    string
		reason RejectReason
	}{
		{raw: "   ", reason: RejectEmpty},
		{raw: "(Faculty) TBA", reason: RejectPlaceholder},
		{raw: "TBD", reason: RejectPlaceholder},
		{raw: "Instructor TBA", reason: RejectPlaceholder},
		{raw: "Staff", reason: RejectPlaceholder},
		{raw: "Smith / Jones", reason: RejectMultiPerson},
		{raw: "Jane Smith & Bob Stone", reason: RejectMultiPerson},
		{raw: "Jane Smith and Bob Stone", reason: RejectMultiPerson},
		{raw: "Smith, Jones, Brown", reason: RejectMultiPerson},
		{raw: "Jane Smith, Bob Stone, Al Ames", reason: RejectMultiPerson},
		{raw: "Van Der Berg, Anna, Jones", reason: RejectMultiPerson},
		{raw: "Mathematics", reason: RejectHeading},
		{raw: "Course Offerings", reason: RejectHeading},
		{raw: "smith", reason: RejectIncomplete},
		{raw: "Dr.", reason: RejectIncomplete},
		{raw: "Smith,", reason: RejectIncomplete},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := n.Normalize(tt.raw)
			if !errors.Is(err, ErrRejectedName) {
				t.Fatalf("err=%v", err)
			}
			var rejected *RejectedNameError
			if !errors.As(err, &rejected) || rejected.Reason != tt.reason {
				t.Fatalf("reason=%v want %v", err, tt.reason)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer(nil)
	for _, raw := range []string{"Dr. Jane Smith", "Lan, Gabrielle", "José Núñez", "Smith, Jane A.", "Mary-Ann O'Neil", "Smith, J.R."} {
		first, err := n.Normalize(raw)
		if err != nil {
			t.Fatal(err)
		}
		second, err := n.Normalize(first.Display)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("%q: %+v != %+v", raw, first, second)
		}
	}
}

func TestHonorificVariantsShareName(t *testing.T) {
	n := NewNormalizer(nil)
	a, _ := n.Normalize("Dr. Jane Smith")
	b, _ := n.Normalize("Jane Smith")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("%+v != %+v", a, b)
	}
}

func TestSalutation(t *testing.T) {
	n := NewNormalizer(nil)
	tests := []struct {
		name, honorific, want string
	}{
		{"Jane Smith", "", "Professor Jane Smith"},
		{"Jane Smith", "Dr.", "Dr. Jane Smith"},
		{"Dr. Jane Smith", "Professor", "Dr. Jane Smith"},
		{"prof smith", "", "prof smith"},
		{"", "", "Professor"},
		{"  ", "Instructor", "Instructor"},
	}
	for _, tt := range tests {
		if got := n.Salutation(tt.name, tt.honorific); got != tt.want {
			t.Fatalf("Salutation(%q,%q)=%q want %q", tt.name, tt.honorific, got, tt.want)
		}
	}
}

func TestTextTokens(t *testing.T) {
	got := TextTokens("Jane-Marie  SMITH, Jane (Dr.)")
	want := []string{"jane", "marie", "smith", "dr"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
}
