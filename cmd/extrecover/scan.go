package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/extrecover/internal/discover"
	"github.com/janekbaraniewski/extrecover/internal/report"
)

func newScanCommand(a *app) *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:   "scan <pattern>...",
		Short: "Find IndexedDB databases among SQLite files matching glob patterns",
		Long: `Probe every file matching the patterns and report which are IndexedDB
databases. Quote patterns so the shell does not expand them; "**" matches any
number of directories.`,
		Example: `  extrecover scan '~/.mozilla/firefox/*/storage/default/**/*.sqlite'`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := discover.Glob(args...)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return a.fail("No files found matching pattern(s)")
			}
			fmt.Fprintf(a.stderr, "Scanning %d database files...\n\n", len(paths))

			res := a.service().Inspect(cmd.Context(), paths)
			_, err = fmt.Fprintln(a.stdout, report.Scan(res, showAll, a.renderOptions()))
			return err
		},
	}
	cmd.Flags().BoolVar(&showAll, "show-all", false, "list non-IndexedDB SQLite files too")
	return cmd
}

func newFindCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <term> [storage-path]",
		Short: "List extension databases whose raw keys or data contain a term",
		Long: `Search every moz-extension+++*/idb/*.sqlite database under a storage
directory. The path may be a glob; the first matching directory is used. It
defaults to the default Firefox profile's storage/default directory.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := args[0]
			pattern := defaultStoragePattern()
			if len(args) > 1 {
				pattern = args[1]
			}
			dir, ok := discover.ResolveDir(pattern)
			if !ok {
				return a.fail("No paths found matching: %s", pattern)
			}
			fmt.Fprintf(a.stderr, "Searching for '%s' in %s\n\n", term, dir)

			dbs, err := discover.Databases(dir)
			if err != nil {
				return err
			}
			if len(dbs) == 0 {
				return a.fail("No extension databases found")
			}

			res := a.service().Search(cmd.Context(), dbs, term)
			if _, err := fmt.Fprintln(a.stdout, report.Search(res, term, a.renderOptions())); err != nil {
				return err
			}
			if len(res.Hits) == 0 {
				return errNoResults
			}
			return nil
		},
	}
}

// defaultStoragePattern points at the default profile from profiles.ini,
// falling back to a glob over *.default profiles.
func defaultStoragePattern() string {
	root := discover.DefaultProfilesRoot()
	profiles, err := discover.Profiles(root)
	if err == nil {
		for _, p := range profiles {
			if p.Default {
				return p.StorageDir()
			}
		}
	}
	return filepath.Join(root, "*.default*", "storage", "default")
}

