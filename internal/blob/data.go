package blob

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// DataResult is what the JSON locator recovered from a data column.
type DataResult struct {
	// Preview is the decoded text starting at the JSON payload when it
	// parsed, otherwise the whole decoded text. Empty when there was nothing
	// to decode or the input was not a blob.
	Preview string
	JSON    any
	HasJSON bool
}

// DecodeData finds and parses the JSON payload behind the binary prefix of a
// data column value.
func DecodeData(in Input) DataResult {
	switch v := in.(type) {
	case nil:
		return DataResult{}
	case []byte:
		if len(v) == 0 {
			return DataResult{}
		}
		return locateJSON(lossyString(v))
	case string:
		if v == "" {
			return DataResult{}
		}
		if data, ok := parseJSON(v); ok {
			return DataResult{JSON: data, HasJSON: true}
		}
		return DataResult{}
	default:
		return DataResult{}
	}
}

// locateJSON parses everything from the first '{' or '['. A bracket inside
// the binary prefix makes the parse fail; the full text is still returned
// as a preview.
func locateJSON(text string) DataResult {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return DataResult{Preview: text}
	}
	candidate := text[start:]
	if data, ok := parseJSON(candidate); ok {
		return DataResult{Preview: candidate, JSON: data, HasJSON: true}
	}
	return DataResult{Preview: text}
}

// parseJSON accepts exactly one JSON document. Numbers stay json.Number so
// re-encoding reproduces them.
func parseJSON(s string) (any, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return v, true
}
