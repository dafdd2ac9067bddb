package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/extrecover/internal/fixture"
)

const defaultFixturePath = "./test_extension_storage.sqlite"

func newFixtureCommand(a *app) *cobra.Command {
	var structured bool

	cmd := &cobra.Command{
		Use:   "fixture [path]",
		Short: "Write test databases to try the recovery commands on",
		Long: `Write a sample database when path ends in .sqlite, otherwise a storage
directory holding two moz-extension+++<uuid> extensions. With --structured the
database holds structured-clone style records and no JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := defaultFixturePath
			if len(args) > 0 {
				path = args[0]
			}

			switch {
			case structured:
				if err := fixture.CreateStructuredDatabase(path); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "✓ Created structured test database: %s\n", path)
			case strings.HasSuffix(path, ".sqlite"):
				if err := fixture.CreateDatabase(path); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "✓ Created test database: %s\n", path)
			default:
				paths, err := fixture.CreateProfileTree(path)
				if err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintf(a.stdout, "✓ Created %s\n", p)
				}
				fmt.Fprintf(a.stdout, "\nTest with: extrecover %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&structured, "structured", false, "write structured-clone records instead of JSON")
	return cmd
}
