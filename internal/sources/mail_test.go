package sources

import (
	"bytes"
	"context"
	"testing"

	"github.com/jhillyerd/enmime"

	"outreach/internal"
)

func buildMessage(t *testing.T, b enmime.MailBuilder) []byte {
	t.Helper()
	part, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestParseMailAttachments(t *testing.T) {
	roster := []byte("Prof Name,Course Number\nSamantha Hannah,ABT 110\n")
	raw := buildMessage(t, enmime.Builder().
		From("Registrar", "registrar@x.edu").
		To("Outreach", "outreach@x.edu").
		Subject("Fall roster").
		Text([]byte("Roster attached.")).
		AddAttachment(roster, "text/csv", "fall.csv").
		AddAttachment([]byte("ignored"), "application/octet-stream", "notes.bin"))

	recs, err := ParseMail(context.Background(), raw, "inbox/roster.eml", testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("recs=%+v", recs)
	}
	r := recs[0]
	if r.Name != "Samantha Hannah" || r.Course != "ABT 110" || r.Source != internal.SourceEmail || r.Origin != "inbox/roster.eml#fall.csv" {
		t.Fatalf("rec=%+v", r)
	}
}

func TestParseMailWithoutRosters(t *testing.T) {
	raw := buildMessage(t, enmime.Builder().
		From("Registrar", "registrar@x.edu").
		To("Outreach", "outreach@x.edu").
		Subject("hello").
		Text([]byte("nothing here")))

	recs, err := ParseMail(context.Background(), raw, "empty.eml", testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Fatalf("recs=%+v", recs)
	}
}
