package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/janekbaraniewski/extrecover/internal/blob"
	"github.com/janekbaraniewski/extrecover/internal/recovery"
)

// Document is the machine-readable export of a recovery run.
type Document struct {
	Extensions []ExtensionDoc `json:"extensions"`
}

type ExtensionDoc struct {
	UUID         string     `json:"uuid"`
	DatabaseName string     `json:"database_name"`
	DatabasePath string     `json:"database_path"`
	Error        string     `json:"error,omitempty"`
	Entries      []EntryDoc `json:"entries"`
}

// EntryDoc carries exactly one of Data, DataPreview or Record.
type EntryDoc struct {
	Key         *string    `json:"key"`
	DataType    *string    `json:"data_type"`
	HasJSON     bool       `json:"has_json"`
	Data        any        `json:"data,omitempty"`
	DataPreview *string    `json:"data_preview,omitempty"`
	Record      *RecordDoc `json:"record,omitempty"`
}

type RecordDoc struct {
	Schema string            `json:"schema,omitempty"`
	Fields map[string]string `json:"fields"`
}

// JSON builds the export document for list.
func JSON(list []recovery.ExtensionData) Document {
	doc := Document{Extensions: make([]ExtensionDoc, 0, len(list))}
	for _, ext := range list {
		ed := ExtensionDoc{
			UUID:         ext.UUID,
			DatabaseName: ext.DatabaseName,
			DatabasePath: ext.DatabasePath,
			Entries:      make([]EntryDoc, 0, len(ext.Entries)),
		}
		if ext.Err != nil {
			ed.Error = ext.Err.Error()
		}
		for _, e := range ext.Entries {
			ed.Entries = append(ed.Entries, entryDoc(e))
		}
		doc.Extensions = append(doc.Extensions, ed)
	}
	return doc
}

func entryDoc(e recovery.Entry) EntryDoc {
	doc := EntryDoc{HasJSON: e.HasJSON}
	if e.KeyOK {
		doc.Key = &e.Key
	}
	if e.DataType != "" {
		doc.DataType = &e.DataType
	}
	switch v := e.Value.(type) {
	case blob.JSONValue:
		doc.Data = v.Data
		if v.Data == nil {
			// JSON null still counts as data.
			doc.Data = json.RawMessage("null")
		}
	case blob.Record:
		doc.Record = &RecordDoc{Schema: v.Schema, Fields: v.Fields}
	default:
		preview := e.Preview
		doc.DataPreview = &preview
	}
	return doc
}

// WriteJSON encodes v indented by two spaces.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("report: encoding JSON: %w", err)
	}
	return nil
}
