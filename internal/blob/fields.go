package blob

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// DefaultMaxValueLen caps values recovered for a schema field.
const DefaultMaxValueLen = 200

// GenericMaxValueLen caps values recovered by the generic field scan.
const GenericMaxValueLen = 500

// Span is the half-open region of decoded text attributed to one field. Start
// is the offset of the field name itself; End is the Start of the next span,
// or the end of the text.
type Span struct {
	Name  string
	Start int
	End   int
}

// ValueStart is the offset just past the field name.
func (s Span) ValueStart() int {
	return s.Start + len(s.Name)
}

// ScanFields locates the first standalone occurrence of each name in text and
// returns contiguous spans ordered by position. Names with no standalone
// occurrence are left out.
func ScanFields(text string, names []string) []Span {
	seen := make(map[string]bool, len(names))
	var hits []Span
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if pos, ok := nextStandalone(text, name, 0); ok {
			hits = append(hits, Span{Name: name, Start: pos})
		}
	}
	return linkSpans(text, hits)
}

// scanAllFields is ScanFields keeping every standalone occurrence.
func scanAllFields(text string, names []string) []Span {
	seen := make(map[string]bool, len(names))
	var hits []Span
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		for from := 0; ; {
			pos, ok := nextStandalone(text, name, from)
			if !ok {
				break
			}
			hits = append(hits, Span{Name: name, Start: pos})
			from = pos + 1
		}
	}
	return linkSpans(text, hits)
}

func linkSpans(text string, hits []Span) []Span {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Start != hits[j].Start {
			return hits[i].Start < hits[j].Start
		}
		return hits[i].Name < hits[j].Name
	})
	for i := range hits {
		if i+1 < len(hits) {
			hits[i].End = hits[i+1].Start
		} else {
			hits[i].End = len(text)
		}
	}
	return hits
}

// nextStandalone finds name at or after from where neither neighbour is a
// letter or digit.
func nextStandalone(text, name string, from int) (int, bool) {
	for from <= len(text) {
		i := strings.Index(text[from:], name)
		if i < 0 {
			return 0, false
		}
		pos := from + i
		if standalone(text, pos, len(name)) {
			return pos, true
		}
		from = pos + 1
	}
	return 0, false
}

func standalone(text string, pos, n int) bool {
	if pos > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:pos]); isAlnum(r) {
			return false
		}
	}
	if end := pos + n; end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isAlnum(r) {
			return false
		}
	}
	return true
}

// Scanner turns field spans into cleaned values.
type Scanner struct {
	// Fields are the names to look for. They are also the names stripped
	// from the tail of a value when the next field leaked into it.
	Fields []string
	// MaxValueLen caps each value in runes; 0 selects DefaultMaxValueLen.
	MaxValueLen int
	// AllOccurrences scans every standalone occurrence of each field; a
	// later occurrence overwrites the value of an earlier one.
	AllOccurrences bool
	// SkipFieldValues drops values that are themselves a field name.
	SkipFieldValues bool
	// KeepTrailingNames leaves a field name that ends a value in place
	// instead of stripping it as a leaked neighbour.
	KeepTrailingNames bool
	// Uncapped lists fields whose values are not cut to MaxValueLen.
	Uncapped []string
}

// GenericScanner is the catch-all scan over common extension field names.
func GenericScanner(fields []string) *Scanner {
	if len(fields) == 0 {
		fields = DefaultGenericFields()
	}
	return &Scanner{
		Fields:          fields,
		MaxValueLen:     GenericMaxValueLen,
		AllOccurrences:    true,
		SkipFieldValues:   true,
		KeepTrailingNames: true,
	}
}

// DefaultGenericFields lists field names common in extension storage.
func DefaultGenericFields() []string {
	return []string{
		"id", "name", "data", "value", "type", "enabled", "disabled",
		"url", "pattern", "regex", "rule", "rules", "config", "settings",
		"options", "preferences", "groups", "items", "list", "array",
		"timestamp", "date", "created", "updated", "modified", "title",
		"description", "category", "tags", "status",
	}
}

// Spans locates the scanner's fields in text.
func (s *Scanner) Spans(text string) []Span {
	if s.AllOccurrences {
		return scanAllFields(text, s.Fields)
	}
	return ScanFields(text, s.Fields)
}

// Values maps each located field to its cleaned value. Fields whose value
// cleans to nothing are omitted.
func (s *Scanner) Values(text string) map[string]string {
	spans := s.Spans(text)
	values := make(map[string]string, len(spans))
	for _, span := range spans {
		v := s.value(text, span)
		if v == "" {
			continue
		}
		if s.SkipFieldValues && lo.Contains(s.Fields, strings.ToLower(v)) {
			continue
		}
		values[span.Name] = v
	}
	return values
}

func (s *Scanner) value(text string, span Span) string {
	from := span.ValueStart()
	if from >= span.End {
		return ""
	}
	v := strings.TrimSpace(printableRunes(text[from:span.End]))
	if !s.KeepTrailingNames {
		for _, other := range s.Fields {
			if other != "" && strings.HasSuffix(v, other) {
				v = strings.TrimSpace(strings.TrimSuffix(v, other))
			}
		}
	}
	if lo.Contains(s.Uncapped, span.Name) {
		return v
	}
	limit := s.MaxValueLen
	if limit == 0 {
		limit = DefaultMaxValueLen
	}
	return truncateRunes(v, limit)
}
