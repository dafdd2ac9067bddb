package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/extrecover/internal/logging"
	"github.com/janekbaraniewski/extrecover/internal/recovery"
	"github.com/janekbaraniewski/extrecover/internal/report"
	"github.com/janekbaraniewski/extrecover/internal/tui"
	"github.com/janekbaraniewski/extrecover/internal/watch"
)

func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <path>",
		Short: "Re-run recovery whenever an extension database changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dbs, err := a.databases(args[0])
			if err != nil {
				return err
			}
			svc := a.service()
			opts := a.renderOptions()

			if err := report.Render(a.stdout, report.FormatSummary, svc.RecoverAll(ctx, dbs), opts); err != nil {
				return err
			}

			w, err := watch.New(dbs, watch.Options{
				Debounce: time.Duration(a.cfg.Watch.DebounceMillis) * time.Millisecond,
				Logger:   a.logger,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stderr, "Watching %d database(s); press Ctrl+C to stop\n", len(dbs))

			return w.Run(ctx, func(path string) {
				a.logger.Info("database changed", logging.String("db", path))
				list := []recovery.ExtensionData{svc.RecoverDatabase(ctx, path)}
				if err := report.Render(a.stdout, report.FormatSummary, list, opts); err != nil {
					a.logger.Error("rendering summary failed", logging.Error(err))
				}
			})
		},
	}
}

func newBrowseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse <path>",
		Short: "Browse recovered entries interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbs, err := a.databases(args[0])
			if err != nil {
				return err
			}
			return tui.Run(a.service().RecoverAll(cmd.Context(), dbs))
		},
	}
}
