package report

import "github.com/charmbracelet/lipgloss"

var (
	colorText     = lipgloss.Color("#CDD6F4")
	colorSubtext  = lipgloss.Color("#A6ADC8")
	colorDim      = lipgloss.Color("#585B70")
	colorAccent   = lipgloss.Color("#CBA6F7")
	colorBlue     = lipgloss.Color("#89B4FA")
	colorGreen    = lipgloss.Color("#A6E3A1")
	colorRed      = lipgloss.Color("#F38BA8")
	colorLavender = lipgloss.Color("#B4BEFE")
)

// styles is the set used by the text renderers. The zero value renders
// plain text.
type styles struct {
	title   lipgloss.Style
	section lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	dim     lipgloss.Style
	ok      lipgloss.Style
	bad     lipgloss.Style
	border  lipgloss.Style
	header  lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{
			title: plain, section: plain, label: plain, value: plain, dim: plain,
			ok: plain, bad: plain, border: plain, header: plain,
		}
	}
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(colorLavender),
		section: lipgloss.NewStyle().Bold(true).Foreground(colorBlue),
		label:   lipgloss.NewStyle().Foreground(colorSubtext),
		value:   lipgloss.NewStyle().Foreground(colorText),
		dim:     lipgloss.NewStyle().Foreground(colorDim),
		ok:      lipgloss.NewStyle().Foreground(colorGreen),
		bad:     lipgloss.NewStyle().Foreground(colorRed),
		border:  lipgloss.NewStyle().Foreground(colorDim),
		header:  lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	}
}
