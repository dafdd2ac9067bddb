package blob

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// Schema names for the built-in record shapes.
const (
	SchemaGroup  = "group"
	SchemaDomain = "domain"
)

// Schema describes one record shape the classifier can recognise.
type Schema struct {
	Name string `json:"name"`
	// Indicators are field names whose presence anywhere in the text votes
	// for this schema.
	Indicators []string `json:"indicators"`
	// MinIndicators is how many indicators must be present; values below 1
	// count as 1.
	MinIndicators int `json:"min_indicators"`
	// Fields are all fields scanned once the schema is selected.
	Fields []string `json:"fields"`
	// Required lists fields of which at least one must be recovered for the
	// record to be kept.
	Required []string `json:"required"`
	// Enums restricts a field to the listed values, matched as
	// case-insensitive substrings in order.
	Enums map[string][]string `json:"enums,omitempty"`
	// MaxValueLen caps free-text values; 0 selects DefaultMaxValueLen.
	MaxValueLen int `json:"max_value_len,omitempty"`
}

// DefaultSchemas returns the built-in schemas in priority order.
func DefaultSchemas() []Schema {
	return []Schema{
		{
			Name:          SchemaGroup,
			Indicators:    []string{"lightBgColor", "darkBgColor", "phrases"},
			MinIndicators: 2,
			Fields: []string{
				"id", "name", "lightBgColor", "lightTextColor",
				"darkBgColor", "darkTextColor", "phrases",
			},
			Required: []string{"id", "name"},
		},
		{
			Name:          SchemaDomain,
			Indicators:    []string{"pattern", "groupIds"},
			MinIndicators: 1,
			Fields:        []string{"id", "pattern", "mode", "groupIds"},
			Required:      []string{"pattern"},
			Enums:         map[string][]string{"mode": {"light", "dark"}},
		},
	}
}

var hexColor = regexp.MustCompile(`#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6})`)

// Matches reports whether enough indicators occur in text. Presence is a
// plain substring test.
func (s Schema) Matches(text string) bool {
	need := max(s.MinIndicators, 1)
	found := 0
	for _, ind := range s.Indicators {
		if ind != "" && strings.Contains(text, ind) {
			found++
		}
	}
	return found >= need
}

// scanFields is Fields followed by any indicator not already listed.
func (s Schema) scanFields() []string {
	out := append([]string(nil), s.Fields...)
	for _, ind := range s.Indicators {
		if !lo.Contains(out, ind) {
			out = append(out, ind)
		}
	}
	return out
}

func isColorField(name string) bool {
	return strings.Contains(name, "Color")
}

// Build slices text into this schema's fields and applies per-field cleanup.
// Color fields are searched for a hex color over their whole value.
func (s Schema) Build(text string) map[string]string {
	fields := s.scanFields()
	scanner := Scanner{
		Fields:      fields,
		MaxValueLen: s.MaxValueLen,
		Uncapped:    lo.Filter(fields, func(f string, _ int) bool { return isColorField(f) }),
	}
	record := make(map[string]string)
	for field, value := range scanner.Values(text) {
		switch {
		case isColorField(field):
			if color := hexColor.FindString(value); color != "" {
				record[field] = color
			}
		case len(s.Enums[field]) > 0:
			if v, ok := matchEnum(value, s.Enums[field]); ok {
				record[field] = v
			}
		default:
			record[field] = value
		}
	}
	return record
}

// Accepts reports whether record holds one of the required fields. A schema
// with no required fields accepts any non-empty record.
func (s Schema) Accepts(record map[string]string) bool {
	if len(s.Required) == 0 {
		return len(record) > 0
	}
	for _, f := range s.Required {
		if _, ok := record[f]; ok {
			return true
		}
	}
	return false
}

func matchEnum(value string, allowed []string) (string, bool) {
	lower := strings.ToLower(value)
	for _, a := range allowed {
		if a != "" && strings.Contains(lower, strings.ToLower(a)) {
			return a, true
		}
	}
	return "", false
}

// Classifier picks the first matching schema and builds its record.
type Classifier struct {
	Schemas []Schema
}

// NewClassifier returns a classifier over schemas, or over DefaultSchemas
// when none are given.
func NewClassifier(schemas []Schema) *Classifier {
	if len(schemas) == 0 {
		schemas = DefaultSchemas()
	}
	return &Classifier{Schemas: schemas}
}

// Classify selects the first schema, in priority order, whose indicators
// occur in text and builds its record. Later schemas are not tried when the
// selected one rejects the record.
func (c *Classifier) Classify(text string) (string, map[string]string, bool) {
	for _, schema := range c.Schemas {
		if !schema.Matches(text) {
			continue
		}
		record := schema.Build(text)
		if !schema.Accepts(record) {
			return "", nil, false
		}
		return schema.Name, record, true
	}
	return "", nil, false
}

// ClassifyBlob classifies the lossy UTF-8 text of a []byte input. Other
// inputs are never classified.
func (c *Classifier) ClassifyBlob(in Input) (string, map[string]string, bool) {
	b, ok := in.([]byte)
	if !ok || len(b) == 0 {
		return "", nil, false
	}
	return c.Classify(lossyString(b))
}
