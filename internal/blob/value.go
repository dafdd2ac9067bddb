package blob

// Value is the decoded form of a data blob: JSONValue, Record or
// Unrecoverable.
type Value interface {
	isValue()
}

// JSONValue is a payload that parsed as JSON.
type JSONValue struct {
	Data any
}

// Record is a field map rebuilt from the decoded text. Schema is empty for
// records produced by the generic scan.
type Record struct {
	Schema string
	Fields map[string]string
}

// Unrecoverable marks a blob nothing could be recovered from.
type Unrecoverable struct{}

func (JSONValue) isValue()     {}
func (Record) isValue()        {}
func (Unrecoverable) isValue() {}

// Tagged reports whether the record was classified under a schema.
func (r Record) Tagged() bool {
	return r.Schema != ""
}

// Kind names the variant held by v.
func Kind(v Value) string {
	switch v.(type) {
	case JSONValue:
		return "json"
	case Record:
		return "record"
	default:
		return "unrecoverable"
	}
}
