package blob

// DefaultPreviewLen caps the preview text kept per entry.
const DefaultPreviewLen = 200

// keyHexLen is how many key bytes are kept as hex for diagnostics.
const keyHexLen = 20

// Decoded is everything recovered from one (key, data) pair.
type Decoded struct {
	Key      string
	KeyOK    bool
	KeyHex   string
	Preview  string
	HasJSON  bool
	Value    Value
	DataType string
	// Strings holds the readable runs of an unrecoverable data blob.
	Strings []string
}

// Decoder runs the full decode pipeline for one row.
type Decoder struct {
	KeyWindow  int
	PreviewLen int
	MinRun     int
	Classifier *Classifier
	// Generic, when set, rebuilds an untagged record from blobs no schema
	// accepted.
	Generic *Scanner
}

// NewDecoder returns a decoder with the default schemas and no generic
// fallback.
func NewDecoder() *Decoder {
	return &Decoder{
		KeyWindow:  DefaultKeyWindow,
		PreviewLen: DefaultPreviewLen,
		MinRun:     DefaultMinRun,
		Classifier: NewClassifier(nil),
	}
}

type valueStrategy func(data Input, located DataResult) (Value, bool)

// Decode decodes one row. It is a pure function of its inputs.
func (d *Decoder) Decode(key, data Input) Decoded {
	out := Decoded{KeyHex: HexPrefix(key, keyHexLen)}
	out.Key, out.KeyOK = decodeKey(key, d.KeyWindow)

	located := DecodeData(data)
	out.HasJSON = located.HasJSON
	out.Preview = truncateRunes(located.Preview, d.previewLen())
	out.Value = Unrecoverable{}
	for _, strategy := range d.valueStrategies() {
		if v, ok := strategy(data, located); ok {
			out.Value = v
			break
		}
	}

	switch v := out.Value.(type) {
	case JSONValue:
		out.DataType = IdentifyDataType(out.Key, v.Data)
	case Record:
		out.DataType = IdentifyDataType(out.Key, v.Fields)
		if out.DataType == "" {
			out.DataType = v.Schema
		}
	case Unrecoverable:
		if b, ok := data.([]byte); ok {
			out.Strings = Strings(b, d.MinRun)
		}
	}
	return out
}

func (d *Decoder) previewLen() int {
	if d.PreviewLen == 0 {
		return DefaultPreviewLen
	}
	return d.PreviewLen
}

func (d *Decoder) valueStrategies() []valueStrategy {
	return []valueStrategy{
		jsonStrategy,
		d.schemaStrategy,
		d.genericStrategy,
	}
}

func jsonStrategy(_ Input, located DataResult) (Value, bool) {
	if !located.HasJSON {
		return nil, false
	}
	return JSONValue{Data: located.JSON}, true
}

func (d *Decoder) schemaStrategy(data Input, _ DataResult) (Value, bool) {
	if d.Classifier == nil {
		return nil, false
	}
	schema, fields, ok := d.Classifier.ClassifyBlob(data)
	if !ok {
		return nil, false
	}
	return Record{Schema: schema, Fields: fields}, true
}

func (d *Decoder) genericStrategy(data Input, _ DataResult) (Value, bool) {
	if d.Generic == nil {
		return nil, false
	}
	b, ok := data.([]byte)
	if !ok || len(b) == 0 {
		return nil, false
	}
	fields := d.Generic.Values(lossyString(b))
	if len(fields) == 0 {
		return nil, false
	}
	return Record{Fields: fields}, true
}
