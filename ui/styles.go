package ui

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	normalDim   = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	gray        = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	midGray     = lipgloss.AdaptiveColor{Light: "#B2B2B2", Dark: "#4A4A4A"}
	brightGray  = lipgloss.AdaptiveColor{Light: "#847A85", Dark: "#979797"}
	cream       = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	yellowGreen = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#ECFD65"}
	fuchsia     = lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	green       = lipgloss.Color("#04B575")
	red         = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
)

// Styles.
var (
	dimStyle        = lipgloss.NewStyle().Foreground(normalDim).Render
	grayFg          = lipgloss.NewStyle().Foreground(gray).Render
	midGrayFg       = lipgloss.NewStyle().Foreground(midGray).Render
	brightGrayFg    = lipgloss.NewStyle().Foreground(brightGray).Render
	fuchsiaFg       = lipgloss.NewStyle().Foreground(fuchsia).Render
	yellowFg        = lipgloss.NewStyle().Foreground(yellowGreen).Render
	errorTitleStyle = lipgloss.NewStyle().Foreground(cream).Background(red).Padding(0, 1).Render
	errorFg         = lipgloss.NewStyle().Foreground(red).Render

	titleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(green).
			Padding(0, 1).
			Bold(true)

	labelStyle = lipgloss.NewStyle().Width(14)

	buttonStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(green).
			Padding(0, 2)

	disabledButtonStyle = lipgloss.NewStyle().
				Foreground(gray).
				Background(midGray).
				Padding(0, 2)

	stopButtonStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(red).
			Padding(0, 2)

	focusedBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(fuchsia)

	blurredBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(midGray)
)
