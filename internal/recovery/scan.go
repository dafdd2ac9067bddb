package recovery

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/extrecover/internal/blob"
	"github.com/janekbaraniewski/extrecover/internal/discover"
	"github.com/janekbaraniewski/extrecover/internal/logging"
	"github.com/janekbaraniewski/extrecover/internal/storage"
)

// FileError pairs a path with the error reading it produced.
type FileError struct {
	Path string
	Err  error
}

// SearchHit is a database with at least one row containing the term.
type SearchHit struct {
	Path    string
	UUID    string
	Matches int
}

// SearchResult lists matching databases in input order.
type SearchResult struct {
	Hits   []SearchHit
	Errors []FileError
}

// Search reports the databases whose raw key or data text contains term,
// ignoring case. The decoded key is searched too, so terms split by the
// metadata prefix still match.
func (s *Service) Search(ctx context.Context, paths []string, term string) SearchResult {
	var out SearchResult
	needle := strings.ToLower(term)
	for _, path := range paths {
		rows, err := storage.ReadAll(ctx, path)
		if err != nil {
			s.logger.Warn("search: reading database failed", logging.String("db", path), logging.Error(err))
			out.Errors = append(out.Errors, FileError{Path: path, Err: err})
			continue
		}
		n := lo.CountBy(rows, func(row storage.Row) bool {
			return s.rowContains(row, needle)
		})
		if n > 0 {
			out.Hits = append(out.Hits, SearchHit{Path: path, UUID: discover.ExtensionUUID(path), Matches: n})
		}
	}
	return out
}

func (s *Service) rowContains(row storage.Row, needle string) bool {
	if strings.Contains(strings.ToLower(blob.Text(row.Key)), needle) ||
		strings.Contains(strings.ToLower(blob.Text(row.Data)), needle) {
		return true
	}
	key, ok := blob.DecodeKey(row.Key)
	return ok && strings.Contains(strings.ToLower(key), needle)
}

// FoundDB is an IndexedDB file and its row count.
type FoundDB struct {
	Path  string
	Count int
}

// ScanResult classifies a set of SQLite files.
type ScanResult struct {
	Total     int
	IndexedDB []FoundDB
	Other     []string
	Errors    []FileError
}

// Inspect probes each path. IndexedDB files are sorted by row count,
// largest first; other SQLite files are sorted by path.
func (s *Service) Inspect(ctx context.Context, paths []string) ScanResult {
	out := ScanResult{Total: len(paths)}
	for _, path := range paths {
		ok, n, err := storage.Probe(ctx, path)
		switch {
		case err != nil:
			s.logger.Debug("scan: probe failed", logging.String("db", path), logging.Error(err))
			out.Errors = append(out.Errors, FileError{Path: path, Err: err})
		case ok:
			out.IndexedDB = append(out.IndexedDB, FoundDB{Path: path, Count: n})
		default:
			out.Other = append(out.Other, path)
		}
	}
	slices.SortStableFunc(out.IndexedDB, func(a, b FoundDB) int {
		return cmp.Compare(b.Count, a.Count)
	})
	slices.Sort(out.Other)
	return out
}

// Matching keeps the databases with at least one entry whose decoded key or
// preview contains term, ignoring case. Failed databases are dropped.
func Matching(list []ExtensionData, term string) []ExtensionData {
	needle := strings.ToLower(term)
	return lo.Filter(list, func(e ExtensionData, _ int) bool {
		return e.Err == nil && lo.SomeBy(e.Entries, func(entry Entry) bool {
			return strings.Contains(strings.ToLower(entry.Key), needle) ||
				strings.Contains(strings.ToLower(entry.Preview), needle)
		})
	})
}
