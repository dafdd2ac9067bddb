package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/janekbaraniewski/extrecover/internal/fixture"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := &app{stdout: &stdout, stderr: &stderr}
	root := newRootCommand(a)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	cfg := filepath.Join(t.TempDir(), "settings.json")
	root.SetArgs(append([]string{"--config", cfg, "--no-color"}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func sampleDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "moz-extension+++cli-uuid", "idb", "db.sqlite")
	if err := fixture.CreateDatabase(path); err != nil {
		t.Fatalf("CreateDatabase: %v", err)
	}
	return path
}

func TestRecoverSummary(t *testing.T) {
	out, _, err := run(t, sampleDB(t))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"Summary", "cli-uuid", "groups", "userPreferences"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRecoverJSON(t *testing.T) {
	out, _, err := run(t, sampleDB(t), "--format", "json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if _, ok := doc["extensions"]; !ok {
		t.Errorf("document has no extensions: %v", doc)
	}
}

func TestRecoverInvalidFormat(t *testing.T) {
	_, _, err := run(t, sampleDB(t), "--format", "xml")
	if err == nil || errors.Is(err, errNoResults) {
		t.Fatalf("err = %v, want format error", err)
	}
}

func TestRecoverSearchNoMatch(t *testing.T) {
	_, stderr, err := run(t, sampleDB(t), "--search", "nothing-like-this")
	if !errors.Is(err, errNoResults) {
		t.Fatalf("err = %v, want errNoResults", err)
	}
	if !strings.Contains(stderr, "No extensions found containing search term: nothing-like-this") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRecoverNoDatabases(t *testing.T) {
	_, stderr, err := run(t, t.TempDir())
	if !errors.Is(err, errNoResults) {
		t.Fatalf("err = %v, want errNoResults", err)
	}
	if !strings.Contains(stderr, "No extension databases found") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRecoverOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	if _, _, err := run(t, sampleDB(t), "-o", dir); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "all_data.json")); err != nil {
		t.Errorf("combined file not written: %v", err)
	}
}

func TestFixtureTreeThenFind(t *testing.T) {
	base := filepath.Join(t.TempDir(), "storage", "default")
	out, _, err := run(t, "fixture", base)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	if strings.Count(out, "✓ Created") != 2 {
		t.Errorf("fixture output:\n%s", out)
	}

	out, _, err = run(t, "find", "example.com", base)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !strings.Contains(out, "abc123-test-extension-uuid-1") {
		t.Errorf("find output missing first extension:\n%s", out)
	}

	_, _, err = run(t, "find", "no-such-term", base)
	if !errors.Is(err, errNoResults) {
		t.Errorf("find without hits: err = %v, want errNoResults", err)
	}
}

func TestExtractToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "extracted.json")
	if _, _, err := run(t, "extract", sampleDB(t), out); err != nil {
		t.Fatalf("extract: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("output is not a JSON object: %v", err)
	}
	if _, ok := data["settings"]; !ok {
		t.Errorf("keys = %v, want settings", data)
	}
}

func TestScanCommand(t *testing.T) {
	path := sampleDB(t)
	out, _, err := run(t, "scan", filepath.Join(filepath.Dir(path), "*.sqlite"))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("scan output missing %s:\n%s", path, out)
	}

	_, _, err = run(t, "scan", filepath.Join(t.TempDir(), "*.sqlite"))
	if !errors.Is(err, errNoResults) {
		t.Errorf("empty scan: err = %v, want errNoResults", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "extrecover ") {
		t.Errorf("version output = %q", out)
	}
}
