// Package storage reads the object_data table of a Firefox IndexedDB file.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotIndexedDB is returned when a SQLite file has no object_data table.
var ErrNotIndexedDB = errors.New("storage: no object_data table")

// Row is one object_data row with its columns as the driver returned them.
type Row struct {
	StoreID int64
	Key     any
	Data    any
}

// DB is a read-only handle on one database file.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens path read-only. The file must exist; SQLite would otherwise
// report the problem only on the first query.
func Open(path string) (*DB, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("storage: %s is a directory", path)
	}

	db, err := sql.Open("sqlite3", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("storage: opening DB: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: opening DB %s: %w", path, err)
	}
	return &DB{db: db, path: path}, nil
}

// readOnlyDSN builds a SQLite URI, escaping the characters URI parsing
// would otherwise treat as delimiters.
func readOnlyDSN(path string) string {
	escaped := strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23").Replace(path)
	return fmt.Sprintf("file:%s?mode=ro", escaped)
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Path is the file the handle was opened on.
func (d *DB) Path() string {
	return d.path
}

// HasObjectData reports whether the IndexedDB object_data table exists.
func (d *DB) HasObjectData(ctx context.Context) (bool, error) {
	var name string
	err := d.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name='object_data'`).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage: query sqlite_master: %w", err)
	}
	return true, nil
}

// Count returns the number of rows in object_data.
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM object_data`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: count object_data: %w", err)
	}
	return n, nil
}

func (d *DB) columns(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `PRAGMA table_info(object_data)`)
	if err != nil {
		return nil, fmt.Errorf("storage: table_info: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("storage: scan table_info: %w", err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// Rows reads every object_data row in table order.
func (d *DB) Rows(ctx context.Context) ([]Row, error) {
	cols, err := d.columns(ctx)
	if err != nil {
		return nil, err
	}
	if !lo.Contains(cols, "key") || !lo.Contains(cols, "data") {
		return nil, fmt.Errorf("storage: object_data lacks key/data columns (have %v)", cols)
	}
	storeCol := "0"
	if lo.Contains(cols, "object_store_id") {
		storeCol = "object_store_id"
	}

	rows, err := d.db.QueryContext(ctx, `SELECT `+storeCol+`, key, data FROM object_data`)
	if err != nil {
		return nil, fmt.Errorf("storage: query object_data: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			storeID sql.NullInt64
			row     Row
		)
		if err := rows.Scan(&storeID, &row.Key, &row.Data); err != nil {
			return nil, fmt.Errorf("storage: scan object_data: %w", err)
		}
		row.StoreID = storeID.Int64
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate object_data: %w", err)
	}
	return out, nil
}

// ReadAll opens path, reads all object_data rows and closes the handle.
func ReadAll(ctx context.Context, path string) ([]Row, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	ok, err := db.HasObjectData(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotIndexedDB)
	}
	return db.Rows(ctx)
}

// Probe reports whether path is an IndexedDB file and how many rows it has.
// A readable SQLite file without object_data returns false and no error.
func Probe(ctx context.Context, path string) (bool, int, error) {
	db, err := Open(path)
	if err != nil {
		return false, 0, err
	}
	defer db.Close()

	ok, err := db.HasObjectData(ctx)
	if err != nil || !ok {
		return false, 0, err
	}
	n, err := db.Count(ctx)
	if err != nil {
		return true, 0, err
	}
	return true, n, nil
}
