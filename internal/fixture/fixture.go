// Package fixture writes synthetic Firefox extension IndexedDB files that
// mimic the layout the recovery tool reads.
package fixture

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/samber/lo"

	_ "github.com/mattn/go-sqlite3"
)

// Row is one object_data row to insert. Key and Data may be []byte, string,
// int64 or nil.
type Row struct {
	StoreID int64
	Key     any
	Data    any
}

var (
	keyPrefix  = []byte{0x00, 0x01}
	dataPrefix = []byte{0x00, 0x00, 0x01, 0x00}
)

// EncodeKey prefixes key with two metadata bytes.
func EncodeKey(key string) []byte {
	return append(append([]byte(nil), keyPrefix...), key...)
}

// EncodeData serialises v as JSON behind a four byte metadata prefix.
func EncodeData(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("fixture: encoding data: %w", err)
	}
	return append(append([]byte(nil), dataPrefix...), payload...), nil
}

// EncodeClone lays strs out the way a structured clone buffer stores
// strings: a length word, a tag word, then the bytes padded to 8. Strings of
// 0x20 bytes or more put a printable length byte in front of themselves,
// the same noise real files carry.
func EncodeClone(strs ...string) []byte {
	b := make([]byte, 0, 64)
	b = binary.LittleEndian.AppendUint32(b, 0)
	b = binary.LittleEndian.AppendUint32(b, 0xffff0008)
	for _, s := range strs {
		b = binary.LittleEndian.AppendUint32(b, uint32(len(s))|1<<31)
		b = binary.LittleEndian.AppendUint32(b, 0xffff0004)
		b = append(b, s...)
		for len(b)%8 != 0 {
			b = append(b, 0)
		}
	}
	b = binary.LittleEndian.AppendUint32(b, 0)
	return binary.LittleEndian.AppendUint32(b, 0xffff0013)
}

// Create writes rows into a fresh object_data table at path.
func Create(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("fixture: creating dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("fixture: opening DB: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("fixture: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS object_data (
		object_store_id INTEGER,
		key BLOB,
		data BLOB
	)`); err != nil {
		return fmt.Errorf("fixture: create table: %w", err)
	}
	for i, row := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO object_data (object_store_id, key, data) VALUES (?, ?, ?)`,
			row.StoreID, row.Key, row.Data); err != nil {
			return fmt.Errorf("fixture: insert row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("fixture: commit: %w", err)
	}
	return nil
}

// SampleData is the JSON content of the sample database, keyed by storage key.
func SampleData() map[string]any {
	return map[string]any{
		"groups": []any{
			map[string]any{
				"id":      "group1",
				"name":    "Important Sites",
				"phrases": []any{"example.com", "test.org"},
				"enabled": true,
			},
			map[string]any{
				"id":      "group2",
				"name":    "Social Media",
				"phrases": []any{"facebook.com", "twitter.com", "reddit.com"},
				"enabled": false,
			},
		},
		"domains": []any{
			map[string]any{"pattern": "*.example.com", "action": "block", "priority": 1},
			map[string]any{"pattern": "trusted.org", "action": "allow", "priority": 10},
		},
		"settings": map[string]any{
			"theme":         "dark",
			"notifications": true,
			"autoSave":      false,
			"version":       "1.2.3",
		},
	}
}

// sampleOrder fixes row order so tests can rely on it.
var sampleOrder = []string{"groups", "domains", "settings"}

// SampleRows are the rows of the sample database: one JSON row per
// SampleData key, then a row using a different prefix.
func SampleRows() ([]Row, error) {
	data := SampleData()
	rows := make([]Row, 0, len(sampleOrder)+1)
	for _, key := range sampleOrder {
		payload, err := EncodeData(data[key])
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{StoreID: 1, Key: EncodeKey(key), Data: payload})
	}
	rows = append(rows, Row{
		StoreID: 1,
		Key:     []byte("\x00\x02\x03userPreferences"),
		Data:    []byte("\x00\x01\x02\x00{\"darkMode\": true, \"fontSize\": 14}"),
	})
	return rows, nil
}

// CreateDatabase writes the sample database to path.
func CreateDatabase(path string) error {
	rows, err := SampleRows()
	if err != nil {
		return err
	}
	return Create(path, rows)
}

// StructuredRows are rows whose values carry no JSON: two groups and two
// domains in clone layout, then an unreadable row.
func StructuredRows() []Row {
	return []Row{
		{StoreID: 1, Key: EncodeKey("group-work"), Data: EncodeClone(
			"id", "group-work",
			"name", "Work",
			"lightBgColor", "#ffe08a",
			"lightTextColor", "#1a1a1a",
			"darkBgColor", "#5c4b00",
			"darkTextColor", "#f5f5f5",
			"phrases", "deadline,review",
		)},
		{StoreID: 1, Key: EncodeKey("group-home"), Data: EncodeClone(
			"id", "group-home",
			"name", "Home",
			"lightBgColor", "#c3f0ca",
			"darkBgColor", "#1e4d2b",
			"phrases", "groceries",
		)},
		{StoreID: 1, Key: EncodeKey("domain-1"), Data: EncodeClone(
			"id", "domain-1",
			"pattern", "*.example.com",
			"mode", "dark",
			"groupIds", "group-work",
		)},
		{StoreID: 1, Key: EncodeKey("domain-2"), Data: EncodeClone(
			"id", "domain-2",
			"pattern", "news.example.org",
			"mode", "light",
			"groupIds", "group-home",
		)},
		{StoreID: 1, Key: []byte{0x00, 0x01}, Data: []byte{0x00, 0x13, 0xff, 0x8a, 0x07, 0x7f, 0xfe}},
	}
}

// CreateStructuredDatabase writes StructuredRows to path.
func CreateStructuredDatabase(path string) error {
	return Create(path, StructuredRows())
}

// Extension describes one extension directory in a profile tree.
type Extension struct {
	UUID   string
	DBName string
	Data   map[string]any
}

// TreeExtensions are the extensions CreateProfileTree writes.
func TreeExtensions() []Extension {
	return []Extension{
		{
			UUID:   "abc123-test-extension-uuid-1",
			DBName: "1234567890atuhtgoi_lhhig.sqlite",
			Data: map[string]any{
				"domains": []any{"example.com", "test.org"},
				"enabled": true,
			},
		},
		{
			UUID:   "xyz789-test-extension-uuid-2",
			DBName: "0987654321btuhtgoi_lhhig.sqlite",
			Data: map[string]any{
				"bookmarks": []any{
					map[string]any{"title": "Test", "url": "https://test.com"},
					map[string]any{"title": "Example", "url": "https://example.com"},
				},
			},
		},
	}
}

// ExtensionDBPath is where CreateProfileTree puts ext under base.
func ExtensionDBPath(base string, ext Extension) string {
	return filepath.Join(base, "moz-extension+++"+ext.UUID, "idb", ext.DBName)
}

// CreateProfileTree writes a storage/default style directory with one
// database per TreeExtensions entry and returns the database paths.
func CreateProfileTree(base string) ([]string, error) {
	var paths []string
	for _, ext := range TreeExtensions() {
		keys := lo.Keys(ext.Data)
		slices.Sort(keys)
		rows := make([]Row, 0, len(keys))
		for _, key := range keys {
			payload, err := EncodeData(ext.Data[key])
			if err != nil {
				return nil, err
			}
			rows = append(rows, Row{StoreID: 1, Key: EncodeKey(key), Data: payload})
		}
		path := ExtensionDBPath(base, ext)
		if err := Create(path, rows); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
