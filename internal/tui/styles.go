package tui

import "github.com/charmbracelet/lipgloss"

// ─── Color Palette (Catppuccin Mocha) ───────────────────────────────────────

var (
	colorSurface1 = lipgloss.Color("#45475A") // lighter surface
	colorText     = lipgloss.Color("#CDD6F4") // primary text
	colorSubtext  = lipgloss.Color("#A6ADC8") // secondary text
	colorDim      = lipgloss.Color("#585B70") // muted, borders
	colorOverlay  = lipgloss.Color("#45475A") // selected bg

	colorAccent   = lipgloss.Color("#CBA6F7") // mauve
	colorBlue     = lipgloss.Color("#89B4FA") // section headers
	colorSapphire = lipgloss.Color("#74C7EC") // keys
	colorGreen    = lipgloss.Color("#A6E3A1") // JSON entries
	colorYellow   = lipgloss.Color("#F9E2AF") // records
	colorRed      = lipgloss.Color("#F38BA8") // unrecoverable
	colorLavender = lipgloss.Color("#B4BEFE") // titles
)

// ─── Reusable Styles ────────────────────────────────────────────────────────

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorLavender)

	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorSapphire).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorSubtext)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorText)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			Background(colorOverlay)

	filterStyle = lipgloss.NewStyle().
			Foreground(colorAccent)
)

// kindStyles colour the value kind column.
var kindStyles = map[string]lipgloss.Style{
	"json":          lipgloss.NewStyle().Foreground(colorGreen),
	"record":        lipgloss.NewStyle().Foreground(colorYellow),
	"unrecoverable": lipgloss.NewStyle().Foreground(colorRed),
}
