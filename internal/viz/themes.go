package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

var (
	ThemePaper = Theme{
		Name:      "paper",
		Primary:   lipgloss.Color("#111827"), // gray-900
		Secondary: lipgloss.Color("#374151"),
		Accent:    lipgloss.Color("#6b7280"),
		Text:      lipgloss.Color("#1f2937"),
		Muted:     lipgloss.Color("#9ca3af"), // gray-400
		Success:   lipgloss.Color("#4b5563"),
		Warning:   lipgloss.Color("#92400e"),
		Error:     lipgloss.Color("#b91c1c"),
	}

	ThemeInk = Theme{
		Name:      "ink",
		Primary:   lipgloss.Color("#f9fafb"),
		Secondary: lipgloss.Color("#d1d5db"),
		Accent:    lipgloss.Color("#93c5fd"),
		Text:      lipgloss.Color("#e5e7eb"),
		Muted:     lipgloss.Color("#6b7280"),
		Success:   lipgloss.Color("#86efac"),
		Warning:   lipgloss.Color("#fcd34d"),
		Error:     lipgloss.Color("#fca5a5"),
	}

	ThemeSand = Theme{
		Name:      "sand",
		Primary:   lipgloss.Color("#78350f"),
		Secondary: lipgloss.Color("#92400e"),
		Accent:    lipgloss.Color("#d97706"),
		Text:      lipgloss.Color("#451a03"),
		Muted:     lipgloss.Color("#a8a29e"),
		Success:   lipgloss.Color("#65a30d"),
		Warning:   lipgloss.Color("#ca8a04"),
		Error:     lipgloss.Color("#dc2626"),
	}

	// Default theme
	CurrentTheme = ThemePaper

	Themes = []Theme{
		ThemePaper,
		ThemeInk,
		ThemeSand,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemePaper
}

// SetTheme changes the current theme
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme cycles CurrentTheme through Themes.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = ThemePaper
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
