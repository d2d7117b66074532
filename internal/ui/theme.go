package ui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme for the application.
type Theme struct {
	Name string

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color

	Border       lipgloss.Color
	BorderActive lipgloss.Color
	Highlight    lipgloss.Color
}

var (
	Dark = Theme{
		Name:         "dark",
		Primary:      lipgloss.Color("#cdd6f4"),
		Secondary:    lipgloss.Color("#a6adc8"),
		Accent:       lipgloss.Color("#f5c2e7"),
		Muted:        lipgloss.Color("#6c7086"),
		Error:        lipgloss.Color("#f38ba8"),
		Border:       lipgloss.Color("#45475a"),
		BorderActive: lipgloss.Color("#89b4fa"),
		Highlight:    lipgloss.Color("#f9e2af"),
	}

	Light = Theme{
		Name:         "light",
		Primary:      lipgloss.Color("#4c4f69"),
		Secondary:    lipgloss.Color("#5c5f77"),
		Accent:       lipgloss.Color("#ea76cb"),
		Muted:        lipgloss.Color("#9ca0b0"),
		Error:        lipgloss.Color("#d20f39"),
		Border:       lipgloss.Color("#dce0e8"),
		BorderActive: lipgloss.Color("#1e66f5"),
		Highlight:    lipgloss.Color("#df8e1d"),
	}
)

// GetTheme returns a theme by name, defaulting to the dark scheme.
func GetTheme(name string) Theme {
	if name == "light" {
		return Light
	}
	return Dark
}
