package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// chromeLines is the header, blank line and help footer around the body.
const chromeLines = 4

func (m Model) View() string {
	var b strings.Builder
	visible := m.filtered()

	title := headerStyle.Render("extrecover") + dimStyle.Render(fmt.Sprintf(" · %d/%d entries", len(visible), len(m.items)))
	if m.filter != "" || m.filtering {
		title += "  " + filterStyle.Render("/"+m.filter)
		if m.filtering {
			title += filterStyle.Render("▏")
		}
	}
	if m.mode == modeDetail {
		title += "  " + sectionHeaderStyle.Render("detail")
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	bodyHeight := max(m.height-chromeLines, 1)
	if m.mode == modeDetail {
		b.WriteString(m.renderDetail(bodyHeight))
	} else {
		b.WriteString(m.renderList(visible, bodyHeight))
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderList(visible []Item, height int) string {
	if len(visible) == 0 {
		return dimStyle.Render("  no entries")
	}

	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := min(start+height, len(visible))

	keyW := max(m.width/3, 12)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		it := visible[i]
		kind := it.kind()
		dtype := it.Entry.DataType
		if dtype == "" {
			dtype = "unknown"
		}
		row := fmt.Sprintf("%-*s  %-10s  %-13s  %s",
			keyW, ansi.Truncate(it.key(), keyW, "…"), dtype, kind, it.UUID)
		row = ansi.Truncate(row, max(m.width-2, 10), "…")
		if i == m.cursor {
			lines = append(lines, selectedStyle.Render("▸ "+row))
			continue
		}
		style, ok := kindStyles[kind]
		if !ok {
			style = valueStyle
		}
		lines = append(lines, "  "+style.Render(row))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDetail(height int) string {
	it, ok := m.selected()
	if !ok {
		return dimStyle.Render("  nothing selected")
	}
	lines := detailLines(it)

	viewH := max(height-1, 1)
	offset := clamp(m.detailOffset, 0, max(len(lines)-viewH, 0))
	end := min(offset+viewH, len(lines))

	out := make([]string, 0, viewH+1)
	for i, l := range lines[offset:end] {
		l = ansi.Truncate(l, max(m.width-2, 10), "…")
		if offset+i < detailHeaderLines {
			label, rest, _ := strings.Cut(l, ":")
			out = append(out, labelStyle.Render(label+":")+valueStyle.Render(rest))
			continue
		}
		out = append(out, valueStyle.Render(l))
	}
	if bar := renderScrollBarLine(m.width, offset, viewH, len(lines)); bar != "" {
		out = append(out, bar)
	}
	return strings.Join(out, "\n")
}

func (m Model) renderHelp() string {
	key := func(k, desc string) string {
		return helpKeyStyle.Render(k) + helpStyle.Render(" "+desc)
	}
	var parts []string
	switch {
	case m.filtering:
		parts = []string{key("enter", "apply"), key("esc", "clear")}
	case m.mode == modeDetail:
		parts = []string{key("j/k", "scroll"), key("enter/esc", "back"), key("q", "quit")}
	default:
		parts = []string{key("j/k", "move"), key("enter", "details"), key("/", "filter"), key("q", "quit")}
	}
	return strings.Join(parts, helpStyle.Render("  ·  "))
}
