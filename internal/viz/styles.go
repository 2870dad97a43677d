package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle   = lipgloss.NewStyle().Padding(0, 1)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 1).Width(panelWidth - 2)
	headerStyle   = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	inputStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("86")).Padding(0, 1)
)

// TermColor turns a CSS rgb() or rgba() colour into a terminal hex colour.
// Alpha is dropped. Anything else is returned unchanged.
func TermColor(css string) lipgloss.Color {
	var r, g, b int
	var a float64
	if _, err := fmt.Sscanf(css, "rgba(%d, %d, %d, %g)", &r, &g, &b, &a); err == nil {
		return lipgloss.Color(hexColor(r, g, b))
	}
	if _, err := fmt.Sscanf(css, "rgb(%d, %d, %d)", &r, &g, &b); err == nil {
		return lipgloss.Color(hexColor(r, g, b))
	}
	return lipgloss.Color(css)
}

// Swatch renders a coloured dot followed by label.
func Swatch(css, label string) string {
	return lipgloss.NewStyle().Foreground(TermColor(css)).Render("●") + " " + label
}

// Truncate shortens s to width cells with an ellipsis.
func Truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// Separator draws a muted rule of the given width.
func Separator(width int) string {
	return helpStyle.Render(strings.Repeat("─", max(width, 0)))
}

func hexColor(r, g, b int) string {
	return "#" + hexByte(r) + hexByte(g) + hexByte(b)
}

func hexByte(v int) string {
	v = min(max(v, 0), 255)
	const hex = "0123456789abcdef"
	return string(hex[v/16]) + string(hex[v%16])
}
