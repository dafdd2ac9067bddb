package blob

import (
	"strings"
	"testing"
)

func groupBlob() []byte {
	return cloneObject(
		"id", "group-1",
		"name", "Important Sites",
		"lightBgColor", "#1a2b3c",
		"lightTextColor", "#000000",
		"darkBgColor", "#4d5e6f",
		"darkTextColor", "#ffffffff",
		"phrases", "foo,bar",
	)
}

func domainBlob(mode string) []byte {
	return cloneObject(
		"id", "domain-1",
		"pattern", "*.example.com",
		"mode", mode,
		"groupIds", "group-1",
	)
}

func TestClassify_Group(t *testing.T) {
	schema, rec, ok := NewClassifier(nil).ClassifyBlob(groupBlob())
	if !ok || schema != SchemaGroup {
		t.Fatalf("Classify = %q, %v", schema, ok)
	}
	want := map[string]string{
		"id":             "group-1",
		"name":           "Important Sites",
		"lightBgColor":   "#1a2b3c",
		"lightTextColor": "#000000",
		"darkBgColor":    "#4d5e6f",
		"darkTextColor":  "#ffffffff",
		"phrases":        "foo,bar",
	}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %q, want %q", k, rec[k], v)
		}
	}
}

func TestClassify_GroupColorsWithSeparators(t *testing.T) {
	text := "\x00name\x00Work\x00lightBgColor\x00#1a2b3c\x00darkBgColor\x00#4d5e6f\x00phrases\x00foo,bar"
	schema, rec, ok := NewClassifier(nil).Classify(text)
	if !ok || schema != SchemaGroup {
		t.Fatalf("Classify = %q, %v", schema, ok)
	}
	if rec["lightBgColor"] != "#1a2b3c" || rec["darkBgColor"] != "#4d5e6f" {
		t.Fatalf("colors = %q, %q", rec["lightBgColor"], rec["darkBgColor"])
	}
}

func TestClassify_ColorWithoutHexIsOmitted(t *testing.T) {
	text := "\x00id\x00g\x00lightBgColor\x00red\x00darkBgColor\x00#4d5e6f"
	_, rec, ok := NewClassifier(nil).Classify(text)
	if !ok {
		t.Fatal("expected group")
	}
	if _, has := rec["lightBgColor"]; has {
		t.Fatalf("lightBgColor = %q, want omitted", rec["lightBgColor"])
	}
}

func TestClassify_Domain(t *testing.T) {
	tests := []struct {
		mode string
		want string
	}{
		{mode: "dark", want: "dark"},
		{mode: "LIGHT", want: "light"},
		{mode: "x-light-dark", want: "light"},
		{mode: "sepia", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			schema, rec, ok := NewClassifier(nil).ClassifyBlob(domainBlob(tt.mode))
			if !ok || schema != SchemaDomain {
				t.Fatalf("Classify = %q, %v", schema, ok)
			}
			if rec["pattern"] != "*.example.com" || rec["groupIds"] != "group-1" {
				t.Fatalf("record = %#v", rec)
			}
			if rec["mode"] != tt.want {
				t.Fatalf("mode = %q, want %q", rec["mode"], tt.want)
			}
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	blob := append(groupBlob(), domainBlob("dark")...)
	schema, _, ok := NewClassifier(nil).ClassifyBlob(blob)
	if !ok || schema != SchemaGroup {
		t.Fatalf("Classify = %q, %v, want group", schema, ok)
	}

	reversed := NewClassifier([]Schema{DefaultSchemas()[1], DefaultSchemas()[0]})
	schema, _, ok = reversed.ClassifyBlob(blob)
	if !ok || schema != SchemaDomain {
		t.Fatalf("reversed Classify = %q, %v, want domain", schema, ok)
	}
}

func TestClassify_SelectedSchemaRejectionDoesNotFallThrough(t *testing.T) {
	// Group indicators are present but neither id nor name is, so the
	// domain schema is never consulted.
	text := "\x00lightBgColor\x00#1a2b3c\x00darkBgColor\x00#4d5e6f\x00pattern\x00*.x.org"
	if schema, rec, ok := NewClassifier(nil).Classify(text); ok {
		t.Fatalf("Classify = %q, %#v, want none", schema, rec)
	}
}

func TestClassify_DomainWithoutPatternRejected(t *testing.T) {
	text := "\x00id\x00d1\x00groupIds\x00g1"
	if _, _, ok := NewClassifier(nil).Classify(text); ok {
		t.Fatal("expected rejection")
	}
}

func TestClassify_Noise(t *testing.T) {
	noise := []byte{0x00, 0x13, 0xff, 0x8a, 0x41, 0x42, 0x07, 0x7f, 0xfe, 0x00, 0x01}
	schema, rec, ok := NewClassifier(nil).ClassifyBlob(noise)
	if ok || schema != "" || rec != nil {
		t.Fatalf("Classify = %q, %#v, %v", schema, rec, ok)
	}
}

func TestClassifyBlob_NonBytes(t *testing.T) {
	if _, _, ok := NewClassifier(nil).ClassifyBlob(string(groupBlob())); ok {
		t.Fatal("string input classified")
	}
}

func TestSchema_MinIndicators(t *testing.T) {
	s := DefaultSchemas()[0]
	if s.Matches("phrases only") {
		t.Fatal("one indicator matched a two-indicator schema")
	}
	if !s.Matches("phrases and darkBgColor") {
		t.Fatal("two indicators did not match")
	}
	s.MinIndicators = 0
	if !s.Matches("phrases") {
		t.Fatal("zero threshold should behave as one")
	}
}

func TestSchema_CustomRequiredAndCap(t *testing.T) {
	s := Schema{
		Name:        "bookmark",
		Indicators:  []string{"url"},
		Fields:      []string{"title", "url"},
		MaxValueLen: 4,
	}
	c := NewClassifier([]Schema{s})
	schema, rec, ok := c.Classify("\x00title\x00Example\x00url\x00https://e.com")
	if !ok || schema != "bookmark" {
		t.Fatalf("Classify = %q, %v", schema, ok)
	}
	if rec["title"] != "Exam" || !strings.HasPrefix("https://e.com", rec["url"]) {
		t.Fatalf("record = %#v", rec)
	}
}

func TestClassify_GroupWithoutSeparators(t *testing.T) {
	// darkBgColor and phrases follow hex digits, so neither is standalone
	// and lightBgColor's value runs to the end of the text.
	text := "\x00id\x00g1\x00lightBgColor#1a2b3cdarkBgColor#4d5e6fphrasesfoo,bar\x00"
	schema, rec, ok := NewClassifier(nil).Classify(text)
	if !ok || schema != SchemaGroup {
		t.Fatalf("Classify = %q, %v", schema, ok)
	}
	want := map[string]string{"id": "g1", "lightBgColor": "#1a2b3cda"}
	if len(rec) != len(want) {
		t.Fatalf("record = %#v, want %#v", rec, want)
	}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %q, want %q", k, rec[k], v)
		}
	}
}

func TestClassify_ColorPastValueCap(t *testing.T) {
	text := "\x00id\x00g1\x00lightBgColor\x00" + strings.Repeat("x", 210) + " #1a2b3c\x00" +
		"darkBgColor\x00#4d5e6f\x00name\x00" + strings.Repeat("n", 210)
	_, rec, ok := NewClassifier(nil).Classify(text)
	if !ok {
		t.Fatal("expected group")
	}
	if rec["lightBgColor"] != "#1a2b3c" {
		t.Errorf("lightBgColor = %q, want #1a2b3c", rec["lightBgColor"])
	}
	if n := len(rec["name"]); n != DefaultMaxValueLen {
		t.Errorf("len(name) = %d, want %d", n, DefaultMaxValueLen)
	}
}

func TestClassify_HexColorLengths(t *testing.T) {
	cases := []struct {
		value string
		want  string
	}{
		{"#1a2b3c", "#1a2b3c"},
		{"#1a2b3cff", "#1a2b3cff"},
		{"#1a2b3cd", "#1a2b3c"},
		{"#1a2b3", ""},
	}
	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			text := "\x00id\x00g\x00lightBgColor\x00" + tc.value + "\x00darkBgColor\x00#4d5e6f"
			_, rec, ok := NewClassifier(nil).Classify(text)
			if !ok {
				t.Fatal("expected group")
			}
			if rec["lightBgColor"] != tc.want {
				t.Fatalf("lightBgColor = %q, want %q", rec["lightBgColor"], tc.want)
			}
		})
	}
}
