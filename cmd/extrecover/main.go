package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/extrecover/internal/blob"
	"github.com/janekbaraniewski/extrecover/internal/config"
	"github.com/janekbaraniewski/extrecover/internal/logging"
	"github.com/janekbaraniewski/extrecover/internal/recovery"
	"github.com/janekbaraniewski/extrecover/internal/report"
	"github.com/janekbaraniewski/extrecover/internal/version"
)

// errNoResults ends a run that found nothing to report. The message was
// already printed.
var errNoResults = errors.New("no results")

// app carries what every command needs once flags are parsed.
type app struct {
	cfg    config.Config
	logger logging.Logger
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool
	generic    bool
	noColor    bool
	workers    int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	root := newRootCommand(a)
	err := root.ExecuteContext(ctx)
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err != nil {
		if !errors.Is(err, errNoResults) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	var (
		search    string
		format    string
		outputDir string
	)

	root := &cobra.Command{
		Use:   "extrecover <path>",
		Short: "Recover chrome.storage.local data from Firefox extension IndexedDB storage",
		Long: `Recover extension data from a Firefox profile's storage directory or from a
single moz-extension+++<uuid>/idb/*.sqlite database file.`,
		Example: `  extrecover ~/.mozilla/firefox/abc123.default/storage/default
  extrecover path/to/moz-extension+++uuid/idb/database.sqlite --format pretty
  extrecover ~/.mozilla/firefox/abc123.default/storage/default --search example.com
  extrecover database.sqlite --output-dir ./recovered --format all`,
		Version:           version.Short(),
		Args:              cobra.ExactArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd) },
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRecover(cmd.Context(), args[0], search, format, outputDir)
		},
	}
	root.SetVersionTemplate("extrecover {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "settings file (default "+config.ConfigPath()+")")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging on stderr")
	pf.BoolVar(&a.generic, "generic", false, "fall back to the generic field scan for blobs no schema matches")
	pf.BoolVar(&a.noColor, "no-color", false, "disable coloured output")
	pf.IntVar(&a.workers, "workers", 0, "concurrent row decoders (default one per CPU)")

	f := root.Flags()
	f.StringVarP(&search, "search", "s", "", "only keep databases whose keys or data contain this term")
	f.StringVarP(&format, "format", "f", report.FormatSummary, "output format: summary, pretty, json or all")
	f.StringVarP(&outputDir, "output-dir", "o", "", "save recovered data to this directory, one file per data type")

	root.AddCommand(
		newScanCommand(a),
		newFindCommand(a),
		newExtractCommand(a),
		newGroupsCommand(a),
		newParseCommand(a),
		newStringsCommand(a),
		newProfilesCommand(a),
		newWatchCommand(a),
		newBrowseCommand(a),
		newFixtureCommand(a),
		newVersionCommand(a),
	)
	return root
}

// setup loads the config, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return fmt.Errorf("%w (config path: %s)", err, path)
	}

	flags := cmd.Flags()
	if flags.Changed("generic") {
		cfg.Decoder.GenericFallback = a.generic
	}
	if flags.Changed("workers") {
		cfg.Recovery.Workers = a.workers
	}
	if a.verbose || os.Getenv("EXTRECOVER_DEBUG") != "" {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger
	a.logger.Debug("config loaded", logging.String("path", path), logging.Int("schemas", len(cfg.Schemas)))
	return nil
}

func (a *app) service() *recovery.Service {
	return a.serviceWith(a.cfg.NewDecoder())
}

func (a *app) serviceWith(dec *blob.Decoder) *recovery.Service {
	return recovery.NewService(dec, recovery.Options{
		Workers: a.cfg.Recovery.Workers,
		Logger:  a.logger,
	})
}

func (a *app) renderOptions() report.Options {
	return report.Options{Color: !a.noColor}
}

// fail prints msg to stderr and ends the run with a non-zero status.
func (a *app) fail(format string, args ...any) error {
	fmt.Fprintf(a.stderr, format+"\n", args...)
	return errNoResults
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(a.stdout, "extrecover %s\n", version.String())
			return err
		},
	}
}
