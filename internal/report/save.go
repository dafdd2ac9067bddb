package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/extrecover/internal/blob"
	"github.com/janekbaraniewski/extrecover/internal/recovery"
)

// CombinedFile holds every data type of one extension.
const CombinedFile = "all_data.json"

// Saved lists the files Save wrote.
type Saved struct {
	Files []string
}

// Save writes one directory per extension under dir, holding a <type>.json
// file per data type and CombinedFile. JSON payloads are written as is and
// records as their field maps; unrecoverable entries are left out. Entries
// without a decoded key are stored as data_<n>, n being the entry's row.
func Save(list []recovery.ExtensionData, dir string) (Saved, error) {
	var saved Saved
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return saved, fmt.Errorf("report: creating %s: %w", dir, err)
	}
	for _, ext := range list {
		if ext.Err != nil {
			continue
		}
		extDir := filepath.Join(dir, "extension_"+ext.UUID)
		if err := os.MkdirAll(extDir, 0o755); err != nil {
			return saved, fmt.Errorf("report: creating %s: %w", extDir, err)
		}

		byType := exportable(ext.Entries)
		types := lo.Keys(byType)
		slices.Sort(types)
		for _, dtype := range types {
			path := filepath.Join(extDir, dtype+".json")
			if err := writeJSONFile(path, byType[dtype]); err != nil {
				return saved, err
			}
			saved.Files = append(saved.Files, path)
		}
		path := filepath.Join(extDir, CombinedFile)
		if err := writeJSONFile(path, byType); err != nil {
			return saved, err
		}
		saved.Files = append(saved.Files, path)
	}
	return saved, nil
}

func exportable(entries []recovery.Entry) map[string]map[string]any {
	out := make(map[string]map[string]any)
	for _, e := range entries {
		var data any
		switch v := e.Value.(type) {
		case blob.JSONValue:
			data = v.Data
		case blob.Record:
			data = v.Fields
		default:
			continue
		}
		dtype := dataType(e)
		key := e.Key
		if !e.KeyOK {
			key = fmt.Sprintf("data_%d", e.Row)
		}
		if out[dtype] == nil {
			out[dtype] = make(map[string]any)
		}
		out[dtype][key] = data
	}
	return out
}

func writeJSONFile(path string, v any) error {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, v); err != nil {
		return err
	}
	if err := writeAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("report: writing %s: %w", path, err)
	}
	return nil
}

// writeAtomic writes data to a temp file in the target directory and
// renames it over path.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, perm)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// WriteFile atomically writes v as indented JSON to path, creating the
// parent directory.
func WriteFile(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report: creating %s: %w", dir, err)
		}
	}
	return writeJSONFile(path, v)
}
