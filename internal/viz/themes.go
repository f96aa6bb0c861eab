package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the live view. Canvas is the colour of the braille arena,
// Title and Accent the ends of heading gradients.
type Theme struct {
	Name   string
	Title  lipgloss.Color
	Accent lipgloss.Color
	Canvas lipgloss.Color
	Muted  lipgloss.Color
	Good   lipgloss.Color
	Warn   lipgloss.Color
	Bad    lipgloss.Color
}

var (
	ThemeArena = Theme{
		Name:   "arena",
		Title:  lipgloss.Color("#00d7d7"),
		Accent: lipgloss.Color("#ff5fd7"),
		Canvas: lipgloss.Color("#d0d0d0"),
		Muted:  lipgloss.Color("#666688"),
		Good:   lipgloss.Color("#00ff88"),
		Warn:   lipgloss.Color("#ffcc00"),
		Bad:    lipgloss.Color("#ff4444"),
	}

	ThemePhosphor = Theme{
		Name:   "phosphor",
		Title:  lipgloss.Color("#33ff33"),
		Accent: lipgloss.Color("#aaffaa"),
		Canvas: lipgloss.Color("#33ff33"),
		Muted:  lipgloss.Color("#1f6f1f"),
		Good:   lipgloss.Color("#aaffaa"),
		Warn:   lipgloss.Color("#ffff55"),
		Bad:    lipgloss.Color("#ff5555"),
	}

	ThemePaper = Theme{
		Name:   "paper",
		Title:  lipgloss.Color("#303030"),
		Accent: lipgloss.Color("#0087d7"),
		Canvas: lipgloss.Color("#1c1c1c"),
		Muted:  lipgloss.Color("#8a8a8a"),
		Good:   lipgloss.Color("#008700"),
		Warn:   lipgloss.Color("#af8700"),
		Bad:    lipgloss.Color("#d70000"),
	}

	ThemeDusk = Theme{
		Name:   "dusk",
		Title:  lipgloss.Color("#ff875f"),
		Accent: lipgloss.Color("#ffd75f"),
		Canvas: lipgloss.Color("#ffd7af"),
		Muted:  lipgloss.Color("#8b6b8c"),
		Good:   lipgloss.Color("#5fd068"),
		Warn:   lipgloss.Color("#ffc048"),
		Bad:    lipgloss.Color("#ff4757"),
	}

	CurrentTheme = ThemeArena

	Themes = []Theme{ThemeArena, ThemePhosphor, ThemePaper, ThemeDusk}
)

// GetTheme returns the named theme, or the arena theme for unknown names.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeArena
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one and returns it.
func NextTheme() Theme {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return CurrentTheme
		}
	}
	CurrentTheme = Themes[0]
	return CurrentTheme
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
