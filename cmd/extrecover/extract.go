package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/extrecover/internal/blob"
	"github.com/janekbaraniewski/extrecover/internal/report"
	"github.com/janekbaraniewski/extrecover/internal/storage"
)

// writeResult sends v to outPath, or to stdout as JSON when outPath is empty.
func (a *app) writeResult(outPath string, v any) error {
	if outPath == "" {
		return report.WriteJSON(a.stdout, v)
	}
	if err := report.WriteFile(outPath, v); err != nil {
		return err
	}
	fmt.Fprintf(a.stderr, "\n✓✓✓ Saved to: %s\n", outPath)
	return nil
}

func optionalArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

func newExtractCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <database.sqlite> [output.json]",
		Short: "Export a key to JSON map from one database",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stderr, "Extracting data from: %s\n", args[0])
			res, err := a.service().ExtractKeyed(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stderr, "Extracted %d keys (%d without a readable key, %d without JSON)\n",
				len(res.Data), res.NoKey, res.NoData)
			return a.writeResult(optionalArg(args, 1), res.Data)
		},
	}
}

func newGroupsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "groups <database.sqlite> [output.json]",
		Short: "Rebuild highlight groups and domain rules from structured-clone blobs",
		Long: `Classify every data blob against the configured schemas (group and domain by
default) without relying on JSON payloads.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stderr, "Extracting schema records from: %s\n", args[0])
			res, err := a.service().ExtractSchemas(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stderr, "Groups found: %d\nDomains found: %d\n", len(res.Groups), len(res.Domains))
			if len(res.Other) > 0 {
				fmt.Fprintf(a.stderr, "Other records: %d\n", len(res.Other))
			}
			fmt.Fprintf(a.stderr, "Skipped: %d\n", res.Skipped)
			return a.writeResult(optionalArg(args, 1), res)
		},
	}
}

func newParseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <database.sqlite> [output.json]",
		Short: "Recover field/value pairs from every blob with the generic field scan",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stderr, "Parsing IndexedDB structured data from: %s\n", args[0])
			dec := a.cfg.NewDecoder()
			dec.Generic = a.cfg.GenericScanner()
			res, err := a.serviceWith(dec).ExtractStructured(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stderr, "Recovered %d entries (%d could not be parsed)\n", len(res.Entries), res.Failed)
			return a.writeResult(optionalArg(args, 1), res.Entries)
		},
	}
}

func newStringsCommand(a *app) *cobra.Command {
	var minRun int

	cmd := &cobra.Command{
		Use:   "strings <database.sqlite>",
		Short: "Print the readable text runs of every row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := storage.ReadAll(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("min") {
				minRun = a.cfg.Decoder.MinRun
			}
			for i, row := range rows {
				for _, col := range []blob.Input{row.Key, row.Data} {
					b, ok := col.([]byte)
					if !ok {
						continue
					}
					for s := range blob.Extract(b, minRun) {
						if _, err := fmt.Fprintf(a.stdout, "%d\t%s\n", i+1, s); err != nil {
							return err
						}
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&minRun, "min", "n", blob.DefaultMinRun, "minimum run length")
	return cmd
}
