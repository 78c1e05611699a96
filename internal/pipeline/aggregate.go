package pipeline

import (
	"strings"

	"outreach/internal"
	"outreach/internal/util"
)

// FallbackName keys contacts whose email is known but whose name is not.
const FallbackName = "Professor"

type contactEntry struct {
	courses []string
	seen    map[string]struct{}
}

// Aggregator merges resolved (name, email, course) triples into contacts
// keyed by (display name, email). Contacts keep first-seen order and each
// course list keeps insertion order without repeats.
type Aggregator struct {
	order   []internal.CanonicalKey
	entries map[internal.CanonicalKey]*contactEntry
}

func NewAggregator() *Aggregator {
	return &Aggregator{entries: map[internal.CanonicalKey]*contactEntry{}}
}

// Ingest records one triple and reports whether it was kept. A triple with
// neither a valid email nor a course is dropped, as is one with no name and
// no valid email.
func (a *Aggregator) Ingest(name *internal.NormalizedName, email, course string) bool {
	email = strings.TrimSpace(email)
	course = strings.TrimSpace(course)
	valid := util.ValidEmail(email)
	if !valid {
		email = ""
	}
	if !valid && course == "" {
		return false
	}
	if name == nil && !valid {
		return false
	}

	key := internal.CanonicalKey{Name: FallbackName, Email: email}
	if name != nil && strings.TrimSpace(name.Display) != "" {
		key.Name = name.Display
	}

	entry, ok := a.entries[key]
	if !ok {
		entry = &contactEntry{seen: map[string]struct{}{}}
		a.entries[key] = entry
		a.order = append(a.order, key)
	}
	if course != "" {
		if _, dup := entry.seen[course]; !dup {
			entry.seen[course] = struct{}{}
			entry.courses = append(entry.courses, course)
		}
	}
	return true
}

func (a *Aggregator) Len() int {
	return len(a.order)
}

// Snapshot returns copies of every contact in first-seen order.
func (a *Aggregator) Snapshot() []internal.Contact {
	out := make([]internal.Contact, 0, len(a.order))
	for _, key := range a.order {
		entry := a.entries[key]
		courses := make([]string, len(entry.courses))
		copy(courses, entry.courses)
		out = append(out, internal.Contact{Key: key, Courses: courses})
	}
	return out
}

// CarryForward remembers the last name and email seen in a sparse table so
// course-only rows can be attributed to them. The caller owns it and feeds
// rows through Apply in input order.
type CarryForward struct {
	name     *internal.NormalizedName
	email    string
	rejected bool
}

// Apply merges one row's identity cells with the remembered ones. A new name
// replaces both remembered values; an email alone replaces only the email.
// ok is false for course-only rows that follow a rejected name.
func (c *CarryForward) Apply(name *internal.NormalizedName, email string) (*internal.NormalizedName, string, bool) {
	email = strings.TrimSpace(email)
	switch {
	case name != nil:
		c.name = name
		c.email = email
		c.rejected = false
	case email != "":
		if c.rejected {
			c.name = nil
			c.rejected = false
		}
		c.email = email
	case c.rejected:
		return nil, "", false
	}
	return c.name, c.email, true
}

// Reject forgets the current person after a name cell was refused.
func (c *CarryForward) Reject() {
	c.name = nil
	c.email = ""
	c.rejected = true
}

// Resolve fills in an email found for the current person so the rows that
// follow reuse it.
func (c *CarryForward) Resolve(email string) {
	if c.name != nil && c.email == "" {
		c.email = strings.TrimSpace(email)
	}
}
