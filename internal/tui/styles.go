package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// caption preview, mimics the rendered subtitle box
	StyleCaption = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true).
			Align(lipgloss.Center).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSubtle).
			Padding(0, 2)
)

const logoASCII = `
 _                                _     
| |__  _   _ _ __ _ __  ___ _   _| |__  
| '_ \| | | | '__| '_ \/ __| | | | '_ \ 
| |_) | |_| | |  | | | \__ \ |_| | |_) |
|_.__/ \__,_|_|  |_| |_|___/\__,_|_.__/ `

// Logo returns the burnsub ASCII art
func Logo() string {
	return StyleHeader.Render(strings.Trim(logoASCII, "\n"))
}
