package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/contacts/internal/contacts"
)

// Colors indexed by notice and prompt kind.
var kindColors = map[contacts.Kind]lipgloss.AdaptiveColor{
	contacts.KindSuccess:  {Light: "2", Dark: "10"},
	contacts.KindError:    {Light: "1", Dark: "9"},
	contacts.KindWarning:  {Light: "208", Dark: "208"},
	contacts.KindQuestion: {Light: "4", Dark: "12"},
}

var (
	accentColor = lipgloss.AdaptiveColor{Light: "4", Dark: "12"}
	dimColor    = lipgloss.AdaptiveColor{Light: "240", Dark: "245"}

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	nameStyle     = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(dimColor)
	labelStyle    = lipgloss.NewStyle().Foreground(dimColor)
)

// KindStyle returns a style colored for the given kind. Unknown kinds are dim.
func KindStyle(k contacts.Kind) lipgloss.Style {
	c, ok := kindColors[k]
	if !ok {
		c = dimColor
	}
	return lipgloss.NewStyle().Foreground(c)
}

// KindIcon returns the glyph shown next to a notice or prompt title.
func KindIcon(k contacts.Kind) string {
	switch k {
	case contacts.KindSuccess:
		return "✓"
	case contacts.KindError:
		return "✗"
	case contacts.KindWarning:
		return "!"
	case contacts.KindQuestion:
		return "?"
	}
	return "•"
}

// DialogBorder returns a rounded border colored for the given kind.
func DialogBorder(k contacts.Kind) lipgloss.Style {
	c, ok := kindColors[k]
	if !ok {
		c = accentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c).
		Padding(1, 2)
}
