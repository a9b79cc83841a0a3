// Package ui renders askcmd's terminal output and confirmation prompt.
package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the palette. Every style is bound to one renderer, so colour
// follows the capabilities of the writer the renderer was created for.
type Styles struct {
	Dim      lipgloss.Style
	Heading  lipgloss.Style
	Label    lipgloss.Style
	Command  lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	TableHdr lipgloss.Style
	Cell     lipgloss.Style
}

// NewStyles builds the palette for w.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Dim:      r.NewStyle().Foreground(lipgloss.Color("8")),            // gray
		Heading:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("4")), // blue
		Label:    r.NewStyle().Bold(true),
		Command:  r.NewStyle().Foreground(lipgloss.Color("6")), // cyan
		Success:  r.NewStyle().Foreground(lipgloss.Color("2")), // green
		Warning:  r.NewStyle().Foreground(lipgloss.Color("3")), // yellow
		Error:    r.NewStyle().Foreground(lipgloss.Color("1")), // red
		TableHdr: r.NewStyle().Bold(true).PaddingRight(2),
		Cell:     r.NewStyle().PaddingRight(2),
	}
}

// Status and result markers.
const (
	markSuccess = "✓"
	markWarning = "!"
)
