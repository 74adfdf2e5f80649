package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/glyphcam/internal/render"
)

func statusStyle(fg, bg render.RGB) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(fg.Hex())).
		Background(lipgloss.Color(bg.Hex()))
}

func spinnerStyle(fg, bg render.RGB) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(fg.Hex())).
		Background(lipgloss.Color(bg.Hex()))
}
