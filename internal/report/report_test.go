package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/janekbaraniewski/extrecover/internal/blob"
	"github.com/janekbaraniewski/extrecover/internal/fixture"
	"github.com/janekbaraniewski/extrecover/internal/recovery"
)

func recovered(t *testing.T) []recovery.ExtensionData {
	t.Helper()
	base := t.TempDir()
	sample := filepath.Join(base, "moz-extension+++sample-uuid", "idb", "a.sqlite")
	structured := filepath.Join(base, "moz-extension+++clone-uuid", "idb", "b.sqlite")
	if err := fixture.CreateDatabase(sample); err != nil {
		t.Fatal(err)
	}
	if err := fixture.CreateStructuredDatabase(structured); err != nil {
		t.Fatal(err)
	}
	svc := recovery.NewService(nil, recovery.Options{})
	return svc.RecoverAll(context.Background(), []string{sample, structured})
}

func failed() recovery.ExtensionData {
	return recovery.ExtensionData{
		UUID:         "broken",
		DatabaseName: "x.sqlite",
		DatabasePath: "/tmp/x.sqlite",
		Err:          errors.New("storage: no object_data table"),
	}
}

func TestSummary(t *testing.T) {
	list := append(recovered(t), failed())
	out := Summary(list, Options{})

	for _, want := range []string{
		"Firefox Extension Storage Recovery - Summary",
		"Extension UUID: sample-uuid",
		"Total entries: 4",
		"[✓] groups (type: group)",
		"[✓] userPreferences (type: user)",
		"[✗] (binary) (type: unknown)",
		"Error: storage: no object_data table",
		"3 databases (1 failed), 9 entries: 4 JSON, 4 records, 1 unrecoverable, 1 without key",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q\n%s", want, out)
		}
	}
	if !strings.Contains(out, "TYPE") || !strings.Contains(out, "RECORDS") {
		t.Errorf("summary missing type table\n%s", out)
	}
}

func TestPretty(t *testing.T) {
	out := Pretty(recovered(t), Options{})
	for _, want := range []string{
		"Entry 1:",
		"Key: groups",
		"Key hex: 000167726f757073",
		"Data (JSON):",
		`"theme": "dark"`,
		"Record (group):",
		"lightBgColor: #ffe08a",
		"Record (domain):",
		"mode: dark",
		"Data preview:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("pretty missing %q", want)
		}
	}
}

func TestPretty_TruncatesLongJSON(t *testing.T) {
	items := make([]any, 30)
	for i := range items {
		items[i] = i
	}
	list := []recovery.ExtensionData{{
		UUID: "u",
		Entries: []recovery.Entry{{
			Row:     1,
			Decoded: blob.Decoded{Key: "list", KeyOK: true, HasJSON: true, Value: blob.JSONValue{Data: items}},
		}},
	}}
	out := Pretty(list, Options{})
	if !strings.Contains(out, "... (truncated)") {
		t.Fatalf("expected truncation marker\n%s", out)
	}
}

func TestPretty_WidthClipsPreview(t *testing.T) {
	list := []recovery.ExtensionData{{
		UUID: "u",
		Entries: []recovery.Entry{{
			Row:     1,
			Decoded: blob.Decoded{Preview: strings.Repeat("x", 100), Value: blob.Unrecoverable{}},
		}},
	}}
	out := Pretty(list, Options{Width: 10})
	if strings.Contains(out, strings.Repeat("x", 11)) {
		t.Fatalf("preview not clipped\n%s", out)
	}
}

func TestJSONDocument(t *testing.T) {
	list := append(recovered(t), failed())
	var buf bytes.Buffer
	if err := WriteJSON(&buf, JSON(list)); err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Extensions []struct {
			UUID    string           `json:"uuid"`
			Error   string           `json:"error"`
			Entries []map[string]any `json:"entries"`
		} `json:"extensions"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, buf.String())
	}
	if len(doc.Extensions) != 3 {
		t.Fatalf("extensions = %d", len(doc.Extensions))
	}

	first := doc.Extensions[0].Entries[0]
	if first["key"] != "groups" || first["has_json"] != true || first["data"] == nil {
		t.Errorf("json entry = %v", first)
	}
	if _, ok := first["data_preview"]; ok {
		t.Errorf("json entry carries a preview: %v", first)
	}

	clone := doc.Extensions[1].Entries
	rec, ok := clone[0]["record"].(map[string]any)
	if !ok || rec["schema"] != "group" {
		t.Errorf("record entry = %v", clone[0])
	}
	noise := clone[4]
	if noise["key"] != nil || noise["data_type"] != nil {
		t.Errorf("noise entry should have null key and type: %v", noise)
	}
	if _, ok := noise["data_preview"]; !ok {
		t.Errorf("noise entry missing preview: %v", noise)
	}
	if doc.Extensions[2].Error == "" || len(doc.Extensions[2].Entries) != 0 {
		t.Errorf("failed extension = %+v", doc.Extensions[2])
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	if err := Render(&bytes.Buffer{}, "xml", nil, Options{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestRender_All(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatAll, recovered(t), Options{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Summary", "Entry 1:", `"extensions"`} {
		if !strings.Contains(out, want) {
			t.Errorf("all output missing %q", want)
		}
	}
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	list := append(recovered(t), failed())

	saved, err := Save(list, dir)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	// sample: domain, group, setting, user + all; clone: domain, group + all.
	if len(saved.Files) != 8 {
		t.Fatalf("files = %v", saved.Files)
	}
	if _, err := os.Stat(filepath.Join(dir, "extension_broken")); !os.IsNotExist(err) {
		t.Errorf("failed extension got a directory: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "extension_sample-uuid", "setting.json"))
	if err != nil {
		t.Fatal(err)
	}
	var settings map[string]map[string]any
	if err := json.Unmarshal(raw, &settings); err != nil {
		t.Fatal(err)
	}
	if settings["settings"]["theme"] != "dark" {
		t.Errorf("setting.json = %s", raw)
	}

	raw, err = os.ReadFile(filepath.Join(dir, "extension_clone-uuid", CombinedFile))
	if err != nil {
		t.Fatal(err)
	}
	var all map[string]map[string]map[string]string
	if err := json.Unmarshal(raw, &all); err != nil {
		t.Fatal(err)
	}
	if all["group"]["group-work"]["name"] != "Work" || all["domain"]["domain-2"]["mode"] != "light" {
		t.Errorf("all_data.json = %s", raw)
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, "*", ".tmp-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestSave_KeylessEntries(t *testing.T) {
	list := []recovery.ExtensionData{{
		UUID: "u",
		Entries: []recovery.Entry{
			{Row: 3, Decoded: blob.Decoded{HasJSON: true, Value: blob.JSONValue{Data: "a"}}},
			{Row: 7, Decoded: blob.Decoded{HasJSON: true, Value: blob.JSONValue{Data: "b"}}},
		},
	}}
	dir := t.TempDir()
	if _, err := Save(list, dir); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "extension_u", "unknown.json"))
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]string
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if got["data_3"] != "a" || got["data_7"] != "b" {
		t.Fatalf("unknown.json = %s", raw)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	if err := WriteFile(path, map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(raw)) != "{\n  \"a\": 1\n}" {
		t.Fatalf("content = %q", raw)
	}
}

func TestScan(t *testing.T) {
	res := recovery.ScanResult{
		Total:     4,
		IndexedDB: []recovery.FoundDB{{Path: "/a.sqlite", Count: 12}, {Path: "/b.sqlite", Count: 3}},
		Other:     []string{"/cookies.sqlite"},
		Errors:    []recovery.FileError{{Path: "/junk.sqlite", Err: errors.New("file is not a database")}},
	}

	out := Scan(res, false, Options{})
	for _, want := range []string{
		"INDEXEDDB DATABASES FOUND: 2",
		"✓   12 entries: /a.sqlite",
		"Found 1 non-IndexedDB SQLite files",
		"ERRORS: 1",
		"Error: file is not a database",
		"Total files scanned: 4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("scan output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "  /cookies.sqlite") {
		t.Error("other databases listed without showAll")
	}
	if out := Scan(res, true, Options{}); !strings.Contains(out, "  /cookies.sqlite") {
		t.Error("other databases not listed with showAll")
	}
}

func TestSearchReport(t *testing.T) {
	res := recovery.SearchResult{Hits: []recovery.SearchHit{{Path: "/x/db.sqlite", Matches: 2}}}
	out := Search(res, "example", Options{})
	if !strings.Contains(out, "Found 1 extension(s) containing 'example'") || !strings.Contains(out, "/x/db.sqlite (2 matching rows)") {
		t.Fatalf("search output = %q", out)
	}
	if out := Search(recovery.SearchResult{}, "nope", Options{}); out != "No extensions found containing 'nope'" {
		t.Fatalf("empty search output = %q", out)
	}
}
