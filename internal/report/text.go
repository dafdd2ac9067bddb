package report

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/samber/lo"

	"github.com/janekbaraniewski/extrecover/internal/blob"
	"github.com/janekbaraniewski/extrecover/internal/recovery"
)

// maxJSONLines caps the JSON shown per entry in pretty output.
const maxJSONLines = 20

func rule(s styles, ch string) string {
	return s.border.Render(strings.Repeat(ch, ruleWidth))
}

func keyLabel(e recovery.Entry) string {
	if !e.KeyOK {
		return "(binary)"
	}
	return e.Key
}

func field(s styles, label, value string) string {
	return s.label.Render(label+":") + " " + s.value.Render(value)
}

// Summary lists every database with its entry counts per type and its keys.
func Summary(list []recovery.ExtensionData, opts Options) string {
	s := newStyles(opts.Color)
	var b strings.Builder
	line := func(parts ...string) {
		b.WriteString(strings.Join(parts, ""))
		b.WriteByte('\n')
	}

	line(rule(s, "="))
	line(s.title.Render("Firefox Extension Storage Recovery - Summary"))
	line(rule(s, "="))
	line()

	for _, ext := range list {
		line(field(s, "Extension UUID", ext.UUID))
		line(field(s, "Database", ext.DatabaseName))
		line(field(s, "Path", ext.DatabasePath))
		if ext.Err != nil {
			line(s.bad.Render("Error: " + ext.Err.Error()))
			line()
			line(rule(s, "-"))
			line()
			continue
		}
		line(field(s, "Total entries", strconv.Itoa(len(ext.Entries))))
		line()

		line(s.section.Render("Entries by type:"))
		line(typeTable(s, ext.Entries))
		line()

		line(s.section.Render("Keys found:"))
		for _, e := range ext.Entries {
			mark := s.bad.Render("✗")
			if e.HasJSON {
				mark = s.ok.Render("✓")
			}
			line("  [", mark, "] ", s.value.Render(keyLabel(e)), s.dim.Render(" (type: "+dataType(e)+")"))
		}
		line()
		line(rule(s, "-"))
		line()
	}

	total := recovery.TotalStats(list)
	failed := lo.CountBy(list, func(e recovery.ExtensionData) bool { return e.Err != nil })
	line(s.section.Render("Totals:"), " ",
		fmt.Sprintf("%d databases (%d failed), %d entries: %d JSON, %d records, %d unrecoverable, %d without key",
			len(list), failed, total.Rows, total.JSON, total.Records, total.Unrecoverable, total.KeyMissing))
	return strings.TrimRight(b.String(), "\n")
}

func typeTable(s styles, entries []recovery.Entry) string {
	types, groups := byType(entries)
	rows := lo.Map(types, func(dtype string, _ int) []string {
		group := groups[dtype]
		jsonCount := lo.CountBy(group, func(e recovery.Entry) bool { return e.HasJSON })
		recordCount := lo.CountBy(group, func(e recovery.Entry) bool {
			_, ok := e.Value.(blob.Record)
			return ok
		})
		return []string{dtype, strconv.Itoa(len(group)), strconv.Itoa(jsonCount), strconv.Itoa(recordCount)}
	})
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.border).
		Headers("TYPE", "ENTRIES", "JSON", "RECORDS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			st := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return st.Inherit(s.header)
			}
			return st.Inherit(s.value)
		})
	return t.String()
}

// Pretty shows every entry with its decoded content.
func Pretty(list []recovery.ExtensionData, opts Options) string {
	s := newStyles(opts.Color)
	var b strings.Builder
	line := func(parts ...string) {
		b.WriteString(strings.Join(parts, ""))
		b.WriteByte('\n')
	}

	for _, ext := range list {
		line(rule(s, "="))
		line(field(s, "Extension UUID", ext.UUID))
		line(field(s, "Database", ext.DatabaseName))
		line(rule(s, "="))
		line()
		if ext.Err != nil {
			line(s.bad.Render("Error: " + ext.Err.Error()))
			line()
			continue
		}

		for _, e := range ext.Entries {
			line(s.section.Render(fmt.Sprintf("Entry %d:", e.Row)))
			line("  ", field(s, "Key", keyLabel(e)))
			line("  ", field(s, "Key hex", e.KeyHex))
			line("  ", field(s, "Has JSON", strconv.FormatBool(e.HasJSON)))
			line("  ", field(s, "Data type", dataType(e)))

			switch v := e.Value.(type) {
			case blob.JSONValue:
				line("  ", s.label.Render("Data (JSON):"))
				for _, l := range jsonPreview(v.Data) {
					line("    ", l)
				}
			case blob.Record:
				title := "Record:"
				if v.Tagged() {
					title = "Record (" + v.Schema + "):"
				}
				line("  ", s.label.Render(title))
				names := lo.Keys(v.Fields)
				slices.Sort(names)
				for _, name := range names {
					line("    ", field(s, name, clip(v.Fields[name], opts.Width)))
				}
			default:
				line("  ", field(s, "Data preview", clip(e.Preview, opts.Width)))
				if len(e.Strings) > 0 {
					line("  ", field(s, "Readable strings", clip(strings.Join(e.Strings, ", "), opts.Width)))
				}
			}
			line()
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func jsonPreview(data any) []string {
	raw, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return []string{fmt.Sprint(data)}
	}
	lines := strings.Split(string(raw), "\n")
	if len(lines) > maxJSONLines+1 {
		return append(lines[:maxJSONLines], "... (truncated)")
	}
	return lines
}

func clip(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
