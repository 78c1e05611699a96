package pipeline

import (
	"testing"

	"outreach/internal"
)

func TestNearestAlternative(t *testing.T) {
	q := mustName(t, "Jane Smith")
	chosen := internal.DirectoryCandidate{DisplayName: "Jane Smith", Email: "js@x.edu"}
	candidates := []internal.DirectoryCandidate{
		chosen,
		{DisplayName: "John Smith", Email: "john@x.edu"},
		{DisplayName: "Jane A. Smith", Email: "jas@x.edu"},
		{DisplayName: "!!"},
	}

	name, dist := NearestAlternative(q, candidates, &chosen)
	if name != "Jane A. Smith" || dist != 2 {
		t.Fatalf("got %q %d", name, dist)
	}

	name, dist = NearestAlternative(q, candidates, nil)
	if name != "Jane Smith" || dist != 0 {
		t.Fatalf("without chosen: %q %d", name, dist)
	}

	spelled := []internal.DirectoryCandidate{
		{DisplayName: "Jane A. Smith", Email: "jsmith@x"},
		{DisplayName: "Jane Smyth", Email: "jsmyth@x"},
		{DisplayName: "Robert Brown", Email: "rb@x"},
	}
	if name, dist := NearestAlternative(q, spelled, &spelled[0]); name != "Jane Smyth" || dist != 1 {
		t.Fatalf("spelling variant: %q %d", name, dist)
	}

	if name, dist := NearestAlternative(q, nil, nil); name != "" || dist != 0 {
		t.Fatalf("empty: %q %d", name, dist)
	}
}

func TestDescribeCandidate(t *testing.T) {
	if got := describeCandidate(nil); got != "" {
		t.Fatalf("nil: %q", got)
	}
	if got := describeCandidate(&internal.DirectoryCandidate{DisplayName: "Jane Smith"}); got != "Jane Smith" {
		t.Fatalf("no email: %q", got)
	}
	got := describeCandidate(&internal.DirectoryCandidate{DisplayName: "Jane Smith", Email: "mailto:JS@X.edu"})
	if got != "Jane Smith <js@x.edu>" {
		t.Fatalf("got %q", got)
	}
}
