package main

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/janekbaraniewski/extrecover/internal/discover"
	"github.com/janekbaraniewski/extrecover/internal/logging"
	"github.com/janekbaraniewski/extrecover/internal/recovery"
	"github.com/janekbaraniewski/extrecover/internal/report"
)

func (a *app) runRecover(ctx context.Context, path, search, format, outputDir string) error {
	if !slices.Contains(report.Formats, format) {
		return fmt.Errorf("invalid --format %q (want one of %v)", format, report.Formats)
	}

	dbs, err := a.databases(path)
	if err != nil {
		return err
	}

	svc := a.service()
	list := svc.RecoverAll(ctx, dbs)
	if search != "" {
		list = recovery.Matching(list, search)
		if len(list) == 0 {
			return a.fail("No extensions found containing search term: %s", search)
		}
		a.logger.Info("search matched", logging.String("term", search), logging.Int("databases", len(list)))
	}

	if err := report.Render(a.stdout, format, list, a.renderOptions()); err != nil {
		return err
	}

	if outputDir != "" {
		saved, err := report.Save(list, outputDir)
		if err != nil {
			return err
		}
		for _, f := range saved.Files {
			fmt.Fprintf(a.stderr, "✓ Saved %s\n", f)
		}
		fmt.Fprintf(a.stderr, "\n✓✓✓ Data recovery complete! Files saved to: %s\n", outputDir)
	}
	return nil
}

// databases resolves path to extension databases, failing the run when
// there are none.
func (a *app) databases(path string) ([]string, error) {
	dbs, err := discover.Databases(path)
	if err != nil && !errors.Is(err, discover.ErrInvalidPath) {
		return nil, err
	}
	if err != nil {
		a.logger.Warn("invalid path", logging.String("path", path))
	}
	if len(dbs) == 0 {
		return nil, a.fail("Error: No extension databases found")
	}
	a.logger.Debug("databases found", logging.String("path", path), logging.Int("count", len(dbs)))
	return dbs, nil
}
