package util

import "testing"

func TestNormalizeCourse(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already canonical", input: "ACCT 1045", want: "ACCT 1045"},
		{name: "lowercase with hyphen", input: "acct-1045", want: "ACCT 1045"},
		{name: "glued", input: "CPSC1150", want: "CPSC 1150"},
		{name: "letter suffix", input: "fren 460c", want: "FREN 460C"},
		{name: "extra whitespace", input: "  CS   101 ", want: "CS 101"},
		{name: "free text kept", input: "Intro to Accounting", want: "Intro to Accounting"},
		{name: "code inside title kept", input: "ACCT 1045 - Intro", want: "ACCT 1045 - Intro"},
		{name: "empty", input: "   ", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeCourse(tc.input); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestParseCourseInsideLine(t *testing.T) {
	parsed, ok := ParseCourse("ENGL 052   Composition Fundamentals")
	if !ok {
		t.Fatal("expected a course")
	}
	if parsed.Code() != "ENGL 052" {
		t.Fatalf("code=%q", parsed.Code())
	}
}
