package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeProfile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestInstitutionLoader(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "langara.yaml", `
name: Langara College
domain: "@Langara.CA"
email_pattern: initial_last
directory:
  kind: harvest
  start_urls: ["https://langara.ca/departments/"]
  path: data/langara.csv
`)
	writeProfile(t, dir, "ufv.yml", `
id: ufv
domain: ufv.ca
email_pattern: first.last
strategy: scan
directory:
  kind: html
  url: https://www.ufv.ca/directory/?q={query}
  card: div.staff-card
  name: h3
`)
	writeProfile(t, dir, "README.md", "ignored")

	all, err := NewInstitutionLoader(dir).LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d profiles", len(all))
	}

	lang := all["langara"]
	if lang == nil || lang.Domain != "langara.ca" || lang.Strategy != StrategyRules {
		t.Fatalf("langara=%+v", lang)
	}
	if lang.Directory.MaxDepth != 2 || lang.Directory.DelayMs != 1000 || lang.Directory.QueryParam != "q" {
		t.Fatalf("defaults not applied: %+v", lang.Directory)
	}

	ufv, err := NewInstitutionLoader(dir).Load("ufv")
	if err != nil {
		t.Fatal(err)
	}
	if ufv.Strategy != StrategyScan || ufv.Directory.Email != `a[href^="mailto:"]` {
		t.Fatalf("ufv=%+v", ufv)
	}

	if _, err := NewInstitutionLoader(dir).Load("bcit"); err == nil {
		t.Fatal("expected unknown institution error")
	}
}

func TestInstitutionLoaderMissingDir(t *testing.T) {
	all, err := NewInstitutionLoader(filepath.Join(t.TempDir(), "none")).LoadAll()
	if err != nil || len(all) != 0 {
		t.Fatalf("all=%v err=%v", all, err)
	}
}

func TestInstitutionValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad domain", "domain: localhost\n", "invalid email domain"},
		{"bad strategy", "strategy: fuzzy\n", "unknown strategy"},
		{"json without url", "directory:\n  kind: json\n", "directory.url"},
		{"html without card", "directory:\n  kind: html\n  url: https://x.edu/\n", "directory.card"},
		{"harvest without path", "directory:\n  kind: harvest\n  start_urls: [\"https://x.edu\"]\n", "directory.path"},
		{"unknown kind", "directory:\n  kind: ldap\n", "unknown directory kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeProfile(t, dir, "x.yaml", tt.body)
			_, err := NewInstitutionLoader(dir).LoadAll()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err=%v", err)
			}
		})
	}
}

func TestInstitutionDuplicateID(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "a.yaml", "id: same\n")
	writeProfile(t, dir, "b.yaml", "id: same\n")
	if _, err := NewInstitutionLoader(dir).LoadAll(); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestBundledProfilesLoad(t *testing.T) {
	all, err := NewInstitutionLoader(filepath.Join("..", "..", "institutions")).LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"langara", "ufv", "bcit", "vcc"} {
		if all[id] == nil {
			t.Fatalf("missing profile %s", id)
		}
	}
}
