package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the live view.
type Theme struct {
	Name   string
	Canvas lipgloss.Color // braille dots
	Header lipgloss.Color
	Graph  lipgloss.Color
	Border lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:   "cyberpunk",
		Canvas: lipgloss.Color("#00ffff"),
		Header: lipgloss.Color("#ff00ff"),
		Graph:  lipgloss.Color("#ffff00"),
		Border: lipgloss.Color("#444466"),
	}

	ThemeRetroGreen = Theme{
		Name:   "retro",
		Canvas: lipgloss.Color("#00ff00"),
		Header: lipgloss.Color("#88ff88"),
		Graph:  lipgloss.Color("#00cc00"),
		Border: lipgloss.Color("#005500"),
	}

	ThemeMinimal = Theme{
		Name:   "minimal",
		Canvas: lipgloss.Color("#ffffff"),
		Header: lipgloss.Color("#ffffff"),
		Graph:  lipgloss.Color("#0088ff"),
		Border: lipgloss.Color("#888888"),
	}

	ThemeSunset = Theme{
		Name:   "sunset",
		Canvas: lipgloss.Color("#feca57"),
		Header: lipgloss.Color("#ff6b6b"),
		Graph:  lipgloss.Color("#ff9ff3"),
		Border: lipgloss.Color("#8b6b8c"),
	}

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeSunset,
	}
)

// GetTheme returns the named theme, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after current, wrapping around.
func NextTheme(current Theme) Theme {
	for i, t := range Themes {
		if t.Name == current.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
