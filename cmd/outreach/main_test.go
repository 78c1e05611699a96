package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"INSTITUTION", "EMAIL_PATTERN", "EMAIL_DOMAIN", "RULES_PATH"} {
		t.Setenv(key, "")
	}
	t.Setenv("OUTPUT_DIR", t.TempDir())

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-format", "json", "--log-level", "error"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStackCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "contacts.csv")
	data := "Name,Email,Course\nDr. Jane Smith,jsmith@x.edu,MATH 1101\n,,MATH 1102\nJane Smith,jsmith@x.edu,MATH 1101\n(Faculty) TBA,,MATH 2000\n"
	if err := os.WriteFile(in, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "out", "output.csv")

	stdout, err := runCLI(t, "stack", in, "--out", outPath)
	if err != nil {
		t.Fatalf("err=%v out=%s", err, stdout)
	}
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	want := "name,email,course\nJane Smith,jsmith@x.edu,MATH 1101\n,,MATH 1102\n"
	if string(got) != want {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(stdout, "wrote "+outPath) {
		t.Fatalf("stdout=%s", stdout)
	}
}

func TestPredictCommand(t *testing.T) {
	out, err := runCLI(t, "predict", "Lan, Gabrielle", "--pattern", "initial_last", "--domain", "langara.ca")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "Gabrielle Lan\tglan@langara.ca" {
		t.Fatalf("out=%q", out)
	}
}

func TestPredictCommandNeedsPattern(t *testing.T) {
	if _, err := runCLI(t, "predict", "Jane Smith"); err == nil {
		t.Fatal("expected error without pattern and domain")
	}
}
