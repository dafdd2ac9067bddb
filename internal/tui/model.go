// Package tui is an interactive browser over recovered entries.
package tui

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/janekbaraniewski/extrecover/internal/blob"
	"github.com/janekbaraniewski/extrecover/internal/recovery"
)

type viewMode int

const (
	modeList   viewMode = iota // moving through entries
	modeDetail                 // scrolling one entry
)

// Item is one entry with the database it came from.
type Item struct {
	UUID     string
	Database string
	Entry    recovery.Entry
}

func (it Item) key() string {
	if it.Entry.KeyOK {
		return it.Entry.Key
	}
	return "(binary)"
}

func (it Item) kind() string {
	return blob.Kind(it.Entry.Value)
}

// matches reports whether the lowercase filter occurs in the item's key,
// type, UUID or preview.
func (it Item) matches(filter string) bool {
	if filter == "" {
		return true
	}
	return lo.SomeBy([]string{it.key(), it.Entry.DataType, it.UUID, it.Entry.Preview}, func(s string) bool {
		return strings.Contains(strings.ToLower(s), filter)
	})
}

type Model struct {
	items     []Item
	cursor    int
	mode      viewMode
	filter    string
	filtering bool
	width     int
	height    int

	detailOffset int // vertical scroll offset of the detail view
}

// NewModel flattens list into browsable items. Databases that failed to
// read contribute nothing.
func NewModel(list []recovery.ExtensionData) Model {
	var items []Item
	for _, ext := range list {
		if ext.Err != nil {
			continue
		}
		for _, e := range ext.Entries {
			items = append(items, Item{UUID: ext.UUID, Database: ext.DatabaseName, Entry: e})
		}
	}
	return Model{items: items, width: 100, height: 30}
}

// Run opens the browser full screen and blocks until the user quits.
func Run(list []recovery.ExtensionData) error {
	_, err := tea.NewProgram(NewModel(list), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKey(msg)
	}
	if m.mode == modeDetail {
		return m.handleDetailKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.filtered()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = max(len(visible)-1, 0)
	case "enter", "right", "l":
		if len(visible) > 0 {
			m.mode = modeDetail
			m.detailOffset = 0
		}
	case "/":
		m.filtering = true
		m.filter = ""
	case "esc":
		m.filter = ""
		m.cursor = 0
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter", "esc", "left", "h", "backspace":
		m.mode = modeList
	case "up", "k":
		if m.detailOffset > 0 {
			m.detailOffset--
		}
	case "down", "j":
		m.detailOffset++ // capped during render
	case "g":
		m.detailOffset = 0
	case "G":
		m.detailOffset = 9999 // capped during render
	}
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filtering = false
		m.cursor = 0
	case "esc":
		m.filter = ""
		m.filtering = false
		m.cursor = 0
	case "backspace":
		if len(m.filter) > 0 {
			m.filter = m.filter[:len(m.filter)-1]
		}
	case "ctrl+c":
		return m, tea.Quit
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.filter += string(msg.Runes)
			if msg.Type == tea.KeySpace && len(msg.Runes) == 0 {
				m.filter += " "
			}
		}
	}
	return m, nil
}

func (m Model) filtered() []Item {
	needle := strings.ToLower(m.filter)
	return lo.Filter(m.items, func(it Item, _ int) bool { return it.matches(needle) })
}

func (m Model) selected() (Item, bool) {
	visible := m.filtered()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return Item{}, false
	}
	return visible[m.cursor], true
}

// detailHeaderLines is how many "Label: value" lines open the detail view.
const detailHeaderLines = 7

// detailLines renders the selected entry without styling.
func detailLines(it Item) []string {
	e := it.Entry
	lines := []string{
		"Extension: " + it.UUID,
		"Database:  " + it.Database,
		fmt.Sprintf("Row:       %d (store %d)", e.Row, e.StoreID),
		"Key:       " + it.key(),
		"Key hex:   " + e.KeyHex,
		"Type:      " + lo.Ternary(e.DataType == "", "unknown", e.DataType),
		"Kind:      " + it.kind(),
		"",
	}
	switch v := e.Value.(type) {
	case blob.JSONValue:
		raw, err := json.MarshalIndent(v.Data, "", "  ")
		if err != nil {
			lines = append(lines, fmt.Sprint(v.Data))
			break
		}
		lines = append(lines, strings.Split(string(raw), "\n")...)
	case blob.Record:
		if v.Tagged() {
			lines = append(lines, "Schema: "+v.Schema)
		}
		names := lo.Keys(v.Fields)
		slices.Sort(names)
		for _, name := range names {
			lines = append(lines, fmt.Sprintf("  %s: %s", name, v.Fields[name]))
		}
	default:
		lines = append(lines, "Preview: "+e.Preview)
		if len(e.Strings) > 0 {
			lines = append(lines, "", "Readable strings:")
			for _, s := range e.Strings {
				lines = append(lines, "  "+s)
			}
		}
	}
	return lines
}
