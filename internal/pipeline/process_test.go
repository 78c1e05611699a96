package pipeline

import (
	"context"
	"errors"
	"testing"

	"outreach/internal"
	"outreach/internal/config"
	"outreach/internal/logging"
)

type fakeDirectory struct {
	people  map[string][]internal.DirectoryCandidate
	fail    map[string]bool
	queries []string
}

func (f *fakeDirectory) Search(ctx context.Context, name string) ([]internal.DirectoryCandidate, error) {
	f.queries = append(f.queries, name)
	if f.fail[name] {
		return nil, errors.New("timeout")
	}
	return f.people[name], nil
}

func roster(rows ...[2]string) []internal.RawRecord {
	out := make([]internal.RawRecord, 0, len(rows))
	for i, r := range rows {
		out = append(out, internal.RawRecord{LineNo: i + 2, Source: internal.SourceCSV, Origin: "roster.csv", Name: r[0], Course: r[1]})
	}
	return out
}

func TestResolverRun(t *testing.T) {
	dir := &fakeDirectory{
		people: map[string][]internal.DirectoryCandidate{
			"Jane Smith": {
				{DisplayName: "Jane A. Smith", Email: "jsmith@x"},
				{DisplayName: "Jane B. Smith", Email: "jbsmith@x"},
			},
			"Bob Stone": {{DisplayName: "Robert Stone", Email: "rstone@x.edu"}},
		},
		fail: map[string]bool{"Wei Chen": true},
	}
	r := NewResolver(config.Config{}, nil, ResolverOptions{
		Directory: dir,
		Pattern:   PatternInitialLast,
		Domain:    "langara.ca",
		Logger:    logging.Discard(),
	})

	records := roster(
		[2]string{"Lan, Gabrielle", "ACCT 1045"},
		[2]string{"", "acct-1145"},
		[2]string{"Dr. Bob Stone", "CPSC 1150"},
		[2]string{"Bob Stone", "CPSC 1160"},
		[2]string{"(Faculty) TBA", "MATH 1101"},
		[2]string{"", "MATH 1102"},
		[2]string{"Jane Smith", "CS 101"},
		[2]string{"Wei Chen", "CS 102"},
	)
	res, err := r.Run(context.Background(), records)
	if err != nil {
		t.Fatal(err)
	}
	if res.RunID == "" {
		t.Fatal("missing run id")
	}

	want := map[internal.CanonicalKey][]string{
		{Name: "Gabrielle Lan", Email: "glan@langara.ca"}: {"ACCT 1045", "ACCT 1145"},
		{Name: "Bob Stone", Email: "rstone@x.edu"}:        {"CPSC 1150", "CPSC 1160"},
		{Name: "Jane Smith", Email: ""}:                   {"CS 101"},
		{Name: "Wei Chen", Email: "wchen@langara.ca"}:     {"CS 102"},
	}
	if len(res.Contacts) != len(want) {
		t.Fatalf("contacts=%+v", res.Contacts)
	}
	for _, c := range res.Contacts {
		courses, ok := want[c.Key]
		if !ok || len(courses) != len(c.Courses) {
			t.Fatalf("unexpected contact %+v", c)
		}
		for i := range courses {
			if courses[i] != c.Courses[i] {
				t.Fatalf("contact %+v", c)
			}
		}
	}
	if res.Contacts[0].Key.Name != "Gabrielle Lan" {
		t.Fatalf("first-seen order broken: %+v", res.Contacts[0])
	}

	s := res.Stats
	if s.Records != 8 || s.Rejected != 1 || s.Skipped != 1 || s.Resolved != 1 || s.Ambiguous != 1 || s.Predicted != 2 || s.LookupErrors != 1 {
		t.Fatalf("stats=%+v", s)
	}
	// one query per distinct name
	if len(dir.queries) != 4 {
		t.Fatalf("queries=%v", dir.queries)
	}
	if len(res.Resolutions) != 4 || res.Resolutions[2].Status != internal.MatchAmbiguous || res.Resolutions[2].Alternative == "" {
		t.Fatalf("resolutions=%+v", res.Resolutions)
	}
	if res.Resolutions[3].LookupError == "" || res.Resolutions[3].Status != internal.MatchPredicted {
		t.Fatalf("lookup failure=%+v", res.Resolutions[3])
	}
}

func TestResolverKeepsEmailsFromInput(t *testing.T) {
	dir := &fakeDirectory{}
	r := NewResolver(config.Config{}, nil, ResolverOptions{Directory: dir, Logger: logging.Discard()})
	records := []internal.RawRecord{
		{Origin: "a.csv", Name: "Jane Smith", Email: "mailto:JSmith@X.edu", Course: "CS 101"},
		{Origin: "a.csv", Course: "CS 102"},
		{Origin: "b.csv", Course: "CS 103"},
	}
	res, err := r.Run(context.Background(), records)
	if err != nil {
		t.Fatal(err)
	}
	if len(dir.queries) != 0 {
		t.Fatalf("directory queried for known email: %v", dir.queries)
	}
	if len(res.Contacts) != 1 || res.Contacts[0].Key.Email != "jsmith@x.edu" || len(res.Contacts[0].Courses) != 2 {
		t.Fatalf("contacts=%+v", res.Contacts)
	}
	if res.Stats.Skipped != 1 {
		t.Fatalf("course row from another file must not inherit: %+v", res.Stats)
	}
}

func TestResolverInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	dir := &fakeDirectory{}
	r := NewResolver(config.Config{}, nil, ResolverOptions{Directory: dir, Pattern: PatternLast, Domain: "x.edu", Logger: logging.Discard()})

	records := roster([2]string{"Jane Smith", "CS 101"}, [2]string{"Bob Stone", "CS 102"})
	cancelling := &cancelDirectory{cancel: cancel}
	r.dir = cancelling

	res, err := r.Run(ctx, records)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Stats.Interrupted || len(res.Contacts) != 1 || res.Contacts[0].Key.Email != "smith@x.edu" {
		t.Fatalf("res=%+v", res)
	}
}

type cancelDirectory struct {
	cancel context.CancelFunc
}

func (c *cancelDirectory) Search(ctx context.Context, name string) ([]internal.DirectoryCandidate, error) {
	c.cancel()
	return nil, nil
}

func TestResolverScanStrategy(t *testing.T) {
	dir := &fakeDirectory{people: map[string][]internal.DirectoryCandidate{
		"Jane Smith": {
			{DisplayName: "Jane A. Smith", Email: "jsmith@x"},
			{DisplayName: "Jane B. Smith", Email: "jbsmith@x"},
		},
	}}
	r := NewResolver(config.Config{MatchScanMinScore: 1}, nil, ResolverOptions{
		Directory: dir,
		Strategy:  config.StrategyScan,
		Logger:    logging.Discard(),
	})
	res, _ := r.Run(context.Background(), roster([2]string{"Jane Smith", "CS 101"}))
	if res.Contacts[0].Key.Email != "jsmith@x" || res.Resolutions[0].Reason != internal.ReasonScan {
		t.Fatalf("res=%+v", res)
	}
}
