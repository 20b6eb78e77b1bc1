package render

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// TUITheme is the color scheme of the chat screen
type TUITheme struct {
	Name        string
	Description string

	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	// User is the accent for "You" lines, Assistant for "Neuro" lines
	User      lipgloss.Color
	Assistant lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

var (
	// NeuroTheme is the default palette: dark glass with mint and pink
	NeuroTheme = TUITheme{
		Name:        "neuro",
		Description: "Neuro - dark glass with mint and pink accents",

		Background: lipgloss.Color("#0f1117"),
		Surface:    lipgloss.Color("#1a1d29"),
		Border:     lipgloss.Color("#3a3f5c"),

		User:      lipgloss.Color("#8fd4ff"),
		Assistant: lipgloss.Color("#8fffd4"),
		Accent:    lipgloss.Color("#c9a6ff"),
		Warning:   lipgloss.Color("#ffd68f"),
		Error:     lipgloss.Color("#ff99aa"),

		Text:     lipgloss.Color("#e6e9f5"),
		TextDim:  lipgloss.Color("#7a809e"),
		TextMute: lipgloss.Color("#3a3f5c"),
	}

	TokyoNightTheme = TUITheme{
		Name:        "tokyonight",
		Description: "Tokyo Night - dark theme with blue accents",

		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#24283b"),
		Border:     lipgloss.Color("#414868"),

		User:      lipgloss.Color("#7aa2f7"),
		Assistant: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),

		Text:     lipgloss.Color("#c0caf5"),
		TextDim:  lipgloss.Color("#565f89"),
		TextMute: lipgloss.Color("#3b4261"),
	}

	DraculaTheme = TUITheme{
		Name:        "dracula",
		Description: "Dracula - dark theme with vibrant colors",

		Background: lipgloss.Color("#282a36"),
		Surface:    lipgloss.Color("#44475a"),
		Border:     lipgloss.Color("#6272a4"),

		User:      lipgloss.Color("#8be9fd"),
		Assistant: lipgloss.Color("#50fa7b"),
		Accent:    lipgloss.Color("#ff79c6"),
		Warning:   lipgloss.Color("#f1fa8c"),
		Error:     lipgloss.Color("#ff5555"),

		Text:     lipgloss.Color("#f8f8f2"),
		TextDim:  lipgloss.Color("#6272a4"),
		TextMute: lipgloss.Color("#44475a"),
	}
)

var (
	themeMu         sync.RWMutex
	currentTUITheme = NeuroTheme
)

// GetTUITheme returns the active theme
func GetTUITheme() TUITheme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTUITheme
}

// SetTUITheme activates the named theme. Unknown names leave it unchanged.
func SetTUITheme(name string) bool {
	theme, ok := GetTUIThemeByName(name)
	if !ok {
		return false
	}
	themeMu.Lock()
	currentTUITheme = theme
	themeMu.Unlock()
	return true
}

// GetTUIThemeByName looks a theme up by name
func GetTUIThemeByName(name string) (TUITheme, bool) {
	for _, t := range AvailableTUIThemes() {
		if t.Name == name {
			return t, true
		}
	}
	return TUITheme{}, false
}

// AvailableTUIThemes lists the built-in themes, default first
func AvailableTUIThemes() []TUITheme {
	return []TUITheme{NeuroTheme, TokyoNightTheme, DraculaTheme}
}

// TUIThemeNames returns the names of AvailableTUIThemes
func TUIThemeNames() []string {
	themes := AvailableTUIThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
