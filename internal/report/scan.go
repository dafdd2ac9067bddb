package report

import (
	"fmt"
	"strings"

	"github.com/janekbaraniewski/extrecover/internal/recovery"
)

// Scan renders the outcome of probing a set of SQLite files. Other SQLite
// files are only listed when showAll is set.
func Scan(res recovery.ScanResult, showAll bool, opts Options) string {
	s := newStyles(opts.Color)
	var b strings.Builder
	line := func(parts ...string) {
		b.WriteString(strings.Join(parts, ""))
		b.WriteByte('\n')
	}
	heading := func(title string) {
		line(rule(s, "="))
		line(s.section.Render(title))
		line(rule(s, "="))
	}

	heading(fmt.Sprintf("INDEXEDDB DATABASES FOUND: %d", len(res.IndexedDB)))
	if len(res.IndexedDB) == 0 {
		line(s.dim.Render("(none)"))
	}
	for _, db := range res.IndexedDB {
		line(s.ok.Render("✓"), fmt.Sprintf(" %4d entries: ", db.Count), s.value.Render(db.Path))
	}
	line()

	heading(fmt.Sprintf("OTHER SQLITE DATABASES: %d", len(res.Other)))
	switch {
	case len(res.Other) == 0:
		line(s.dim.Render("(none)"))
	case showAll:
		for _, p := range res.Other {
			line("  ", p)
		}
	default:
		line(fmt.Sprintf("Found %d non-IndexedDB SQLite files", len(res.Other)))
		line(s.dim.Render("(Use --show-all to list them)"))
	}

	if len(res.Errors) > 0 {
		line()
		heading(fmt.Sprintf("ERRORS: %d", len(res.Errors)))
		for _, fe := range res.Errors {
			line(s.bad.Render("✗"), " ", fe.Path)
			line("  Error: ", fe.Err.Error())
		}
	}

	line()
	heading("SUMMARY")
	line(field(s, "Total files scanned", fmt.Sprint(res.Total)))
	line(field(s, "IndexedDB databases", fmt.Sprint(len(res.IndexedDB))))
	line(field(s, "Other databases", fmt.Sprint(len(res.Other))))
	line(field(s, "Errors", fmt.Sprint(len(res.Errors))))
	if len(res.IndexedDB) > 0 {
		line()
		line("To extract data from an IndexedDB database, run:")
		line("  extrecover extract <database.sqlite>")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Search renders the databases containing term.
func Search(res recovery.SearchResult, term string, opts Options) string {
	s := newStyles(opts.Color)
	var b strings.Builder
	if len(res.Hits) == 0 {
		b.WriteString(fmt.Sprintf("No extensions found containing '%s'", term))
	} else {
		b.WriteString(fmt.Sprintf("Found %d extension(s) containing '%s':\n\n", len(res.Hits), term))
		for _, hit := range res.Hits {
			b.WriteString("  " + s.value.Render(hit.Path) + s.dim.Render(fmt.Sprintf(" (%d matching rows)", hit.Matches)) + "\n")
		}
	}
	for _, fe := range res.Errors {
		b.WriteString("\n" + s.bad.Render("Error reading "+fe.Path+": "+fe.Err.Error()))
	}
	return strings.TrimRight(b.String(), "\n")
}
