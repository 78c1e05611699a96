package directory

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"outreach/internal/config"
	"outreach/internal/logging"
)

func TestNameFromEmail(t *testing.T) {
	tests := map[string]string{
		"jane.doe@langara.ca": "Jane Doe",
		"mary-ann_lee2@x.ca":  "Mary Ann Lee2",
		"glan@langara.ca":     "Glan",
		"123.smith@x.ca":      "Smith",
		"not-an-address":      "",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := NameFromEmail(in); got != want {
				t.Fatalf("got %q want %q", got, want)
			}
		})
	}
}

func TestHarvestFollowsLinks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<a href="mailto:info@college.test">General</a>
<ul><li><strong>Gabrielle Lan</strong> <a href="mailto:glan@college.test">email</a></li></ul>
<a href="/math">Math</a>
</body></html>`)
	})
	mux.HandleFunc("/math", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<a href="mailto:jane.doe@college.test">Contact</a>
<a href="mailto:glan@college.test">Gabrielle L.</a>
</body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	h := NewHarvester(config.Config{}, config.DirectorySettings{
		StartURLs: []string{srv.URL + "/"},
		MaxDepth:  2,
		DelayMs:   1,
	}, logging.Discard())
	got, err := h.Harvest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len=%d: %+v", len(got), got)
	}
	byEmail := map[string]string{}
	for _, c := range got {
		byEmail[c.Email] = c.DisplayName
	}
	if byEmail["glan@college.test"] != "Gabrielle Lan" {
		t.Fatalf("glan=%q", byEmail["glan@college.test"])
	}
	if byEmail["jane.doe@college.test"] != "Jane Doe" {
		t.Fatalf("jane=%q", byEmail["jane.doe@college.test"])
	}
}
