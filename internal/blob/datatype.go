package blob

import (
	"encoding/json"
	"strings"
)

var keyKeywords = []string{"group", "domain", "setting", "config", "user", "pref"}

// IdentifyDataType guesses what kind of data a decoded entry holds from its
// key, then from the shape of the first element of a JSON array. Empty data
// has no type.
func IdentifyDataType(key string, data any) string {
	if isEmptyData(data) {
		return ""
	}
	if key != "" {
		lower := strings.ToLower(key)
		for _, kw := range keyKeywords {
			if strings.Contains(lower, kw) {
				return kw
			}
		}
	}
	list, ok := data.([]any)
	if !ok || len(list) == 0 {
		return ""
	}
	first, ok := list[0].(map[string]any)
	if !ok {
		return ""
	}
	has := func(field string) bool {
		_, ok := first[field]
		return ok
	}
	switch {
	case has("phrases"):
		return "groups"
	case has("pattern"):
		return "domains"
	case has("id") && has("name"):
		return "items"
	}
	return ""
}

func isEmptyData(data any) bool {
	switch v := data.(type) {
	case nil:
		return true
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	case map[string]string:
		return len(v) == 0
	case string:
		return v == ""
	case bool:
		return !v
	case json.Number:
		f, err := v.Float64()
		return err == nil && f == 0
	}
	return false
}
