package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/extrecover/internal/discover"
)

func newProfilesCommand(a *app) *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List Firefox profiles and how many extension databases each holds",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if root == "" {
				root = discover.DefaultProfilesRoot()
			}
			profiles, err := discover.Profiles(root)
			if err != nil {
				return err
			}
			if len(profiles) == 0 {
				return a.fail("No profiles listed in %s", root)
			}

			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDEFAULT\tDATABASES\tSTORAGE")
			for _, p := range profiles {
				def := "-"
				if p.Default {
					def = "yes"
				}
				count := "-"
				if dbs, err := discover.Databases(p.StorageDir()); err == nil {
					count = fmt.Sprint(len(dbs))
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, def, count, p.StorageDir())
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "directory holding profiles.ini (default: the OS Firefox directory)")
	return cmd
}
