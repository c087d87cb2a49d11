package app

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"hubview/internal/derive"
	"hubview/internal/types"
)

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	groupStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	activityStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Bold(true)
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	entityIDStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Faint(true)
	dividerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	iconStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	iconOffStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	stateStyles = map[derive.DisplayClass]lipgloss.Style{
		derive.ClassButton:      lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Bold(true).Underline(true),
		derive.ClassUnavailable: lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true),
		derive.ClassOff:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		derive.ClassOn:          lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true),
		derive.ClassDefault:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	}
)

func stateStyle(class derive.DisplayClass) lipgloss.Style {
	if style, ok := stateStyles[class]; ok {
		return style
	}
	return stateStyles[derive.ClassDefault]
}

// glyphStyle colours an icon: dimmed when off, the entity's own colour when
// it reports one.
func glyphStyle(style derive.IconStyle) lipgloss.Style {
	switch {
	case style.Off:
		return iconOffStyle
	case style.Color != nil:
		return lipgloss.NewStyle().Foreground(rgbColor(*style.Color))
	default:
		return iconStyle
	}
}

func rgbColor(c types.RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
