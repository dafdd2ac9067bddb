// Package discover locates Firefox extension IndexedDB files on disk.
package discover

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/lo"
)

// ExtensionDirPrefix is the directory name prefix Firefox uses for
// extension origins under storage/default.
const ExtensionDirPrefix = "moz-extension+++"

// ErrInvalidPath is returned when a path is neither a .sqlite file nor a
// directory.
var ErrInvalidPath = errors.New("discover: path is neither a .sqlite file nor a directory")

// Databases resolves path to the extension databases it names. A .sqlite
// file is returned as is; a directory is searched for
// moz-extension+++*/idb/*.sqlite. A leading ~ is expanded.
func Databases(path string) ([]string, error) {
	path = ExpandHome(path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	if !info.IsDir() {
		if strings.HasSuffix(path, ".sqlite") {
			return []string{path}, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}

	matches, err := filepath.Glob(filepath.Join(globEscape(path), ExtensionDirPrefix+"*", "idb", "*.sqlite"))
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	matches = lo.Filter(matches, func(p string, _ int) bool { return fileExists(p) })
	slices.Sort(matches)
	return matches, nil
}

// ResolveDir returns the first existing directory matching pattern. Patterns
// without glob characters are returned unchanged when they exist.
func ResolveDir(pattern string) (string, bool) {
	pattern = ExpandHome(pattern)
	if !hasMeta(pattern) {
		return pattern, dirExists(pattern)
	}
	matches, _ := doublestar.FilepathGlob(pattern)
	slices.Sort(matches)
	for _, m := range matches {
		if dirExists(m) {
			return m, true
		}
	}
	return "", false
}

// ExtensionUUID returns the internal UUID encoded in an extension database
// path, or "unknown".
func ExtensionUUID(path string) string {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if uuid, ok := strings.CutPrefix(part, ExtensionDirPrefix); ok {
			return uuid
		}
	}
	return "unknown"
}

// Glob expands each pattern and returns the regular files matched, in
// pattern order without duplicates. A "**" segment matches any number of
// directories, including none.
func Glob(patterns ...string) ([]string, error) {
	var out []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(ExpandHome(pattern), doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("discover: pattern %q: %w", pattern, err)
		}
		matches = lo.Filter(matches, func(p string, _ int) bool { return fileExists(p) })
		slices.Sort(matches)
		out = append(out, matches...)
	}
	return lo.Uniq(out), nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home := homeDir()
	if home == "" {
		return path
	}
	return filepath.Join(home, path[1:])
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, `*?[`)
}

// globEscape quotes glob metacharacters in a literal directory path.
// Extension directories contain '+' only, but user paths may not.
func globEscape(path string) string {
	if !hasMeta(path) {
		return path
	}
	var b strings.Builder
	for _, r := range path {
		if strings.ContainsRune(`*?[\`, r) && filepath.Separator != '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func homeDir() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return h
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
