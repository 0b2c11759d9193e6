package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/camdaq/pcoclient/pco"
)

// Theme defines the colors for the watch screen.
type Theme struct {
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string

	StatusColors map[pco.Status]string
}

// DefaultTheme returns the palette used by pcoctl watch.
func DefaultTheme() Theme {
	return Theme{
		Text:    "#F8F8F2",
		Muted:   "#6272A4",
		Faint:   "#44475A",
		Accent:  "#8BE9FD",
		Success: "#50FA7B",
		Warning: "#F1FA8C",
		Danger:  "#FF5555",
		StatusColors: map[pco.Status]string{
			pco.StatusUnconfigured: "#6272A4",
			pco.StatusConfigured:   "#8BE9FD",
			pco.StatusStarting:     "#F1FA8C",
			pco.StatusReceiving:    "#50FA7B",
			pco.StatusWriting:      "#50FA7B",
			pco.StatusStopping:     "#FFB86C",
			pco.StatusKilling:      "#FF5555",
			pco.StatusFinished:     "#BD93F9",
			pco.StatusError:        "#FF5555",
			pco.StatusUnknown:      "#6272A4",
		},
	}
}

// Styles contains pre-built lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	Logo        lipgloss.Style

	statusColors map[pco.Status]string
}

// Styles returns lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text:         lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		MutedText:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		FaintText:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint)),
		AccentText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),
		SuccessText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)).Bold(true),
		WarningText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		DangerText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true),
		Logo:         lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)).Bold(true),
		statusColors: t.StatusColors,
	}
}

// StatusStyle returns the style for a writer status badge.
func (s Styles) StatusStyle(status pco.Status) lipgloss.Style {
	color, ok := s.statusColors[status]
	if !ok {
		color = "#6272A4"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}
