// Package report renders recovered extension data and writes it to disk.
package report

import (
	"fmt"
	"io"
	"slices"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/extrecover/internal/recovery"
)

// Output formats accepted by Render.
const (
	FormatSummary = "summary"
	FormatPretty  = "pretty"
	FormatJSON    = "json"
	FormatAll     = "all"
)

// Formats lists the accepted format names.
var Formats = []string{FormatSummary, FormatPretty, FormatJSON, FormatAll}

// unknownType labels entries without a data type.
const unknownType = "unknown"

// ruleWidth is the width of the separator lines.
const ruleWidth = 80

// Options controls text rendering.
type Options struct {
	Color bool
	// Width caps preview lines in pretty output. Zero leaves them whole.
	Width int
}

// Render writes list to w in format. "all" writes summary, pretty and JSON
// in that order.
func Render(w io.Writer, format string, list []recovery.ExtensionData, opts Options) error {
	if !slices.Contains(Formats, format) {
		return fmt.Errorf("report: unknown format %q (want one of %v)", format, Formats)
	}
	if format == FormatSummary || format == FormatAll {
		if _, err := io.WriteString(w, Summary(list, opts)+"\n"); err != nil {
			return err
		}
	}
	if format == FormatPretty || format == FormatAll {
		if _, err := io.WriteString(w, Pretty(list, opts)+"\n"); err != nil {
			return err
		}
	}
	if format == FormatJSON || format == FormatAll {
		if err := WriteJSON(w, JSON(list)); err != nil {
			return err
		}
	}
	return nil
}

func dataType(e recovery.Entry) string {
	if e.DataType == "" {
		return unknownType
	}
	return e.DataType
}

// byType groups entries by data type, types sorted by name.
func byType(entries []recovery.Entry) ([]string, map[string][]recovery.Entry) {
	groups := lo.GroupBy(entries, dataType)
	types := lo.Keys(groups)
	slices.Sort(types)
	return types, groups
}
