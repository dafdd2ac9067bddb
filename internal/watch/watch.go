// Package watch reports changes to IndexedDB files on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"

	"github.com/janekbaraniewski/extrecover/internal/logging"
)

// DefaultDebounce is how long a database must stay quiet before a change
// is reported.
const DefaultDebounce = 500 * time.Millisecond

// sidecarSuffixes are files SQLite writes next to a database.
var sidecarSuffixes = []string{"-wal", "-shm", "-journal"}

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	Logger   logging.Logger
}

// Watcher watches the directories holding a set of database files.
type Watcher struct {
	fs       *fsnotify.Watcher
	dbs      map[string]bool
	debounce time.Duration
	logger   logging.Logger
}

// New starts watching the directories of paths. Events are only delivered
// once Run is called.
func New(paths []string, opts Options) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("watch: no databases to watch")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{
		fs:       fsw,
		dbs:      make(map[string]bool, len(paths)),
		debounce: opts.Debounce,
		logger:   opts.Logger,
	}
	for _, p := range paths {
		w.dbs[filepath.Clean(p)] = true
	}
	dirs := lo.Uniq(lo.Map(paths, func(p string, _ int) string { return filepath.Dir(filepath.Clean(p)) }))
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch: adding %s: %w", dir, err)
		}
		w.logger.Debug("watching directory", logging.String("dir", dir))
	}
	return w, nil
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// Run delivers changed database paths to onChange until ctx is done. Bursts
// of writes to a database and its sidecar files are folded into one call.
// Paths changed in the same burst are delivered in sorted order.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	defer w.fs.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			db, ok := w.databaseFor(ev.Name)
			if !ok {
				continue
			}
			w.logger.Debug("database event", logging.String("db", db), logging.String("op", ev.Op.String()))
			pending[db] = true
			timer.Reset(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", logging.Error(err))
		case <-timer.C:
			changed := lo.Keys(pending)
			slices.Sort(changed)
			clear(pending)
			for _, db := range changed {
				onChange(db)
			}
		}
	}
}

// databaseFor maps an event path, possibly a sidecar file, to a watched
// database.
func (w *Watcher) databaseFor(name string) (string, bool) {
	name = filepath.Clean(name)
	if w.dbs[name] {
		return name, true
	}
	for _, suffix := range sidecarSuffixes {
		if base, ok := strings.CutSuffix(name, suffix); ok && w.dbs[base] {
			return base, true
		}
	}
	return "", false
}
