// Package recovery runs the decoder over whole extension databases.
package recovery

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/janekbaraniewski/extrecover/internal/blob"
	"github.com/janekbaraniewski/extrecover/internal/discover"
	"github.com/janekbaraniewski/extrecover/internal/logging"
	"github.com/janekbaraniewski/extrecover/internal/storage"
)

// Entry is one decoded object_data row.
type Entry struct {
	blob.Decoded
	// Row is the 1-based position of the row in object_data.
	Row     int
	StoreID int64
}

// ExtensionData is everything recovered from one database file. Err is set
// when the file could not be read; Entries is then empty.
type ExtensionData struct {
	UUID         string
	DatabaseName string
	DatabasePath string
	Entries      []Entry
	Err          error
}

// Stats counts entries per decoded variant. JSON + Records + Unrecoverable
// always equals Rows.
type Stats struct {
	Rows          int
	JSON          int
	Records       int
	Unrecoverable int
	KeyMissing    int
}

// Add folds o into s.
func (s *Stats) Add(o Stats) {
	s.Rows += o.Rows
	s.JSON += o.JSON
	s.Records += o.Records
	s.Unrecoverable += o.Unrecoverable
	s.KeyMissing += o.KeyMissing
}

// Stats tallies the entries of e.
func (e ExtensionData) Stats() Stats {
	var s Stats
	for _, entry := range e.Entries {
		s.Rows++
		switch entry.Value.(type) {
		case blob.JSONValue:
			s.JSON++
		case blob.Record:
			s.Records++
		default:
			s.Unrecoverable++
		}
		if !entry.KeyOK {
			s.KeyMissing++
		}
	}
	return s
}

// TotalStats sums Stats over list.
func TotalStats(list []ExtensionData) Stats {
	var s Stats
	for _, e := range list {
		s.Add(e.Stats())
	}
	return s
}

// Options configures a Service.
type Options struct {
	// Workers bounds concurrent row decoding. Zero means GOMAXPROCS.
	Workers int
	Logger  logging.Logger
}

// Service decodes databases with a shared decoder.
type Service struct {
	decoder *blob.Decoder
	workers int
	logger  logging.Logger
}

// NewService returns a Service using decoder, or blob.NewDecoder when nil.
func NewService(decoder *blob.Decoder, opts Options) *Service {
	if decoder == nil {
		decoder = blob.NewDecoder()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &Service{decoder: decoder, workers: opts.Workers, logger: opts.Logger}
}

// RecoverDatabase reads and decodes every row of the database at path. Read
// failures are reported in the result, not returned.
func (s *Service) RecoverDatabase(ctx context.Context, path string) ExtensionData {
	out := ExtensionData{
		UUID:         discover.ExtensionUUID(path),
		DatabaseName: filepath.Base(path),
		DatabasePath: path,
	}
	log := s.logger.With(logging.String("db", path))
	log.Debug("processing database")

	start := time.Now()
	rows, err := storage.ReadAll(ctx, path)
	if err != nil {
		log.Warn("reading database failed", logging.Error(err))
		out.Err = err
		return out
	}

	entries, err := s.decodeRows(ctx, rows)
	if err != nil {
		out.Err = fmt.Errorf("recovery: decoding %s: %w", path, err)
		return out
	}
	out.Entries = entries

	stats := out.Stats()
	log.Info("database recovered",
		logging.String("uuid", out.UUID),
		logging.Int("rows", stats.Rows),
		logging.Int("json", stats.JSON),
		logging.Int("records", stats.Records),
		logging.Int("unrecoverable", stats.Unrecoverable),
		logging.Duration("elapsed", time.Since(start)),
	)
	return out
}

// RecoverAll recovers each path in order. A failing file does not stop the
// batch.
func (s *Service) RecoverAll(ctx context.Context, paths []string) []ExtensionData {
	out := make([]ExtensionData, 0, len(paths))
	for _, path := range paths {
		if ctx.Err() != nil {
			out = append(out, ExtensionData{
				UUID:         discover.ExtensionUUID(path),
				DatabaseName: filepath.Base(path),
				DatabasePath: path,
				Err:          ctx.Err(),
			})
			continue
		}
		out = append(out, s.RecoverDatabase(ctx, path))
	}
	return out
}

// decodeRows decodes rows concurrently. Results keep row order.
func (s *Service) decodeRows(ctx context.Context, rows []storage.Row) ([]Entry, error) {
	entries := make([]Entry, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, row := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = Entry{
				Decoded: s.decode(row),
				Row:     i + 1,
				StoreID: row.StoreID,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// decode runs the decoder on one row. A panic inside the decoder marks the
// row unrecoverable instead of failing the database.
func (s *Service) decode(row storage.Row) (d blob.Decoded) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("decoder panic", logging.String("key_hex", blob.HexPrefix(row.Key, 20)),
				logging.String("panic", fmt.Sprint(r)))
			d = blob.Decoded{KeyHex: blob.HexPrefix(row.Key, 20), Value: blob.Unrecoverable{}}
		}
	}()
	return s.decoder.Decode(row.Key, row.Data)
}
