package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used for text output.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Header3 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Info    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	// File categories in split output.
	Category map[string]lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
	StatusSkipped lipgloss.Style
}

// NewStyles builds styles bound to r. Without a TTY the renderer is forced
// to the ASCII profile so no escape codes leak into pipes.
func NewStyles(r *lipgloss.Renderer, isTTY bool) *Styles {
	if !isTTY {
		r.SetColorProfile(termenv.Ascii)
	}

	s := &Styles{
		Header1: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2: r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Header3: r.NewStyle().Bold(true),
		Bold:    r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Info:    r.NewStyle().Foreground(lipgloss.Color("4")),
		Success: r.NewStyle().Foreground(lipgloss.Color("2")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("3")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),

		StatusSuccess: r.NewStyle().Foreground(lipgloss.Color("2")),
		StatusFailed:  r.NewStyle().Foreground(lipgloss.Color("1")),
		StatusSkipped: r.NewStyle().Foreground(lipgloss.Color("8")),
	}
	s.Category = map[string]lipgloss.Style{
		"DDL":       r.NewStyle().Foreground(lipgloss.Color("5")),
		"TempTable": r.NewStyle().Foreground(lipgloss.Color("3")),
		"CTE":       r.NewStyle().Foreground(lipgloss.Color("6")),
		"Subquery":  r.NewStyle().Foreground(lipgloss.Color("4")),
		"Main":      r.NewStyle().Bold(true),
	}
	return s
}

// ForStatus returns the style and symbol for a status string.
func (s *Styles) ForStatus(status string) (lipgloss.Style, string) {
	switch status {
	case "success":
		return s.StatusSuccess, "✓"
	case "failed", "error":
		return s.StatusFailed, "✗"
	default:
		return s.StatusSkipped, "-"
	}
}
