package recovery

import (
	"context"
	"fmt"

	"github.com/janekbaraniewski/extrecover/internal/blob"
	"github.com/janekbaraniewski/extrecover/internal/logging"
	"github.com/janekbaraniewski/extrecover/internal/storage"
)

// SchemaRecords holds the records the classifier accepted from one
// database. Other collects records of configured schemas beyond the two
// built-in ones.
type SchemaRecords struct {
	Groups  []blob.Group  `json:"groups"`
	Domains []blob.Domain `json:"domains"`
	Other   []blob.Record `json:"other,omitempty"`
	Skipped int           `json:"-"`
}

// ExtractSchemas classifies every data blob of the database at path. JSON
// payloads are not consulted; rows no schema accepts are counted as skipped.
func (s *Service) ExtractSchemas(ctx context.Context, path string) (SchemaRecords, error) {
	rows, err := storage.ReadAll(ctx, path)
	if err != nil {
		return SchemaRecords{}, err
	}
	classifier := s.decoder.Classifier
	if classifier == nil {
		classifier = blob.NewClassifier(nil)
	}

	out := SchemaRecords{Groups: []blob.Group{}, Domains: []blob.Domain{}}
	for i, row := range rows {
		name, fields, ok := classifier.ClassifyBlob(row.Data)
		if !ok {
			out.Skipped++
			continue
		}
		rec := blob.Record{Schema: name, Fields: fields}
		if g, ok := rec.Group(); ok {
			out.Groups = append(out.Groups, g)
			s.logger.Debug("group recovered", logging.Int("row", i+1), logging.String("name", g.Name))
			continue
		}
		if d, ok := rec.Domain(); ok {
			out.Domains = append(out.Domains, d)
			s.logger.Debug("domain recovered", logging.Int("row", i+1), logging.String("pattern", d.Pattern))
			continue
		}
		out.Other = append(out.Other, rec)
	}
	return out, nil
}

// StructuredRecords is the output of the generic field scan.
type StructuredRecords struct {
	Entries []map[string]string
	Failed  int
}

// ExtractStructured scans every blob for the generic field list and returns
// one map per row that yielded at least one field, with the decoded key
// under "_key". Rows without a readable key are named entry_<row>.
func (s *Service) ExtractStructured(ctx context.Context, path string) (StructuredRecords, error) {
	rows, err := storage.ReadAll(ctx, path)
	if err != nil {
		return StructuredRecords{}, err
	}
	scanner := s.decoder.Generic
	if scanner == nil {
		scanner = blob.GenericScanner(nil)
	}

	out := StructuredRecords{Entries: []map[string]string{}}
	for i, row := range rows {
		key, ok := blob.DecodeKey(row.Key)
		if !ok {
			key = fmt.Sprintf("entry_%d", i+1)
		}
		b, isBlob := row.Data.([]byte)
		if !isBlob {
			out.Failed++
			continue
		}
		fields := scanner.Values(blob.Text(b))
		if len(fields) == 0 {
			s.logger.Debug("structured: nothing recovered", logging.String("key", key))
			out.Failed++
			continue
		}
		entry := make(map[string]string, len(fields)+1)
		for k, v := range fields {
			entry[k] = v
		}
		entry["_key"] = key
		out.Entries = append(out.Entries, entry)
	}
	return out, nil
}

// KeyedData maps decoded keys to their JSON payloads.
type KeyedData struct {
	Data map[string]any
	// NoKey counts rows whose key could not be decoded; NoData rows whose
	// payload held no JSON.
	NoKey  int
	NoData int
}

// ExtractKeyed builds a key to JSON map from the database at path. A later
// row with the same key replaces an earlier one. JSON null payloads count
// as missing data.
func (s *Service) ExtractKeyed(ctx context.Context, path string) (KeyedData, error) {
	rows, err := storage.ReadAll(ctx, path)
	if err != nil {
		return KeyedData{}, err
	}
	out := KeyedData{Data: make(map[string]any, len(rows))}
	for _, row := range rows {
		key, ok := blob.DecodeKey(row.Key)
		if !ok {
			out.NoKey++
			continue
		}
		located := blob.DecodeData(row.Data)
		if !located.HasJSON || located.JSON == nil {
			s.logger.Debug("keyed: no JSON payload", logging.String("key", key))
			out.NoData++
			continue
		}
		out.Data[key] = located.JSON
	}
	return out, nil
}
