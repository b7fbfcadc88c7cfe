package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	keyword   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Render
	paragraph = lipgloss.NewStyle().Width(78).Padding(0, 0, 0, 2).Render
	faint     = lipgloss.NewStyle().Faint(true).Render
)

// setupColor honours NO_COLOR and CLICOLOR_FORCE.
func setupColor() {
	lipgloss.SetColorProfile(termenv.EnvColorProfile())
}
