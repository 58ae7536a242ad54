package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	accent = lipgloss.Color("#3B82F6")
	muted  = lipgloss.Color("#6B7280")
	green  = lipgloss.Color("#4ADE80")
	red    = lipgloss.Color("#F87171")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	errorStyle   = lipgloss.NewStyle().Foreground(red)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24"))
	upStyle      = lipgloss.NewStyle().Foreground(green)
	downStyle    = lipgloss.NewStyle().Foreground(red)
	labelStyle   = lipgloss.NewStyle().Foreground(muted).Width(22)
	currentStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Background(accent).Foreground(lipgloss.Color("#FFFFFF"))
)

// changeStyle colours a rendered percentage by its sign.
func changeStyle(d decimal.NullDecimal, text string) string {
	switch {
	case !d.Valid:
		return mutedStyle.Render(text)
	case d.Decimal.IsNegative():
		return downStyle.Render(text)
	default:
		return upStyle.Render(text)
	}
}

func helpLine(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, pairs[i]+" "+mutedStyle.Render(pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}
