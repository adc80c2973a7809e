package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for the burnsub configure screens
var (
	ColorPrimary   = lipgloss.Color("#F97316") // Orange - main accent
	ColorSecondary = lipgloss.Color("#FACC15") // Yellow - subtitle text

	ColorSuccess = lipgloss.Color("#22C55E")
	ColorError   = lipgloss.Color("#EF4444")
	ColorWarning = lipgloss.Color("#F59E0B")

	ColorText   = lipgloss.Color("#F8FAFC")
	ColorMuted  = lipgloss.Color("#94A3B8")
	ColorSubtle = lipgloss.Color("#64748B")
)
