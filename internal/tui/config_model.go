package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/neuroai/neurochat/internal/config"
	"github.com/neuroai/neurochat/internal/render"
)

// configView represents the current view in the settings menu
type configView int

const (
	viewMain configView = iota
	viewThemeSelect    // markdown style
	viewTUIThemeSelect // color theme
)

// Menu item indices for the main view
const (
	menuSound = iota
	menuCopyToClipboard
	menuRevealSpeed
	menuTheme
	menuTUITheme
	menuExit
	menuItemCount
)

// feedbackClearMsg is sent to clear feedback messages
type feedbackClearMsg struct{}

// ConfigModel is the settings menu for local client settings
type ConfigModel struct {
	config     config.Config
	configPath string

	view           configView
	cursor         int
	themeCursor    int
	tuiThemeCursor int

	feedback        string
	feedbackTimeout time.Duration

	width  int
	height int
	ready  bool
}

// NewConfigModel creates a settings menu editing cfg, saved to configPath
func NewConfigModel(cfg config.Config, configPath string) ConfigModel {
	themeCursor := indexOf(render.MarkdownStyles(), cfg.Markdown.Style)
	tuiThemeCursor := indexOf(render.TUIThemeNames(), cfg.TUITheme)

	if cfg.TUITheme != "" && render.SetTUITheme(cfg.TUITheme) {
		UpdateTheme()
	}

	return ConfigModel{
		config:          cfg,
		configPath:      configPath,
		view:            viewMain,
		themeCursor:     themeCursor,
		tuiThemeCursor:  tuiThemeCursor,
		feedbackTimeout: 2 * time.Second,
	}
}

func indexOf(items []string, value string) int {
	for i, item := range items {
		if item == value {
			return i
		}
	}
	return 0
}

// Config returns the settings as currently edited
func (m ConfigModel) Config() config.Config {
	return m.config
}

// Init initializes the model
func (m ConfigModel) Init() tea.Cmd {
	return nil
}

func clearFeedback(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return feedbackClearMsg{}
	})
}

// Update handles messages and updates the model
func (m ConfigModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case feedbackClearMsg:
		m.feedback = ""

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.view != viewMain {
				m.view = viewMain
				return m, nil
			}
			return m, tea.Quit

		case "up", "k":
			m.moveCursor(-1)

		case "down", "j":
			m.moveCursor(1)

		case "enter", " ":
			return m.handleSelect()
		}
	}

	return m, nil
}

func (m *ConfigModel) moveCursor(delta int) {
	wrap := func(v, n int) int {
		return ((v % n) + n) % n
	}
	switch m.view {
	case viewMain:
		m.cursor = wrap(m.cursor+delta, menuItemCount)
	case viewThemeSelect:
		m.themeCursor = wrap(m.themeCursor+delta, len(render.MarkdownStyles()))
	case viewTUIThemeSelect:
		m.tuiThemeCursor = wrap(m.tuiThemeCursor+delta, len(render.TUIThemeNames()))
	}
}

// save persists the settings and sets the feedback line
func (m *ConfigModel) save(success string) tea.Cmd {
	if err := config.SaveConfigTo(m.configPath, m.config); err != nil {
		m.feedback = fmt.Sprintf("Error: %v", err)
	} else {
		m.feedback = success
	}
	return clearFeedback(m.feedbackTimeout)
}

func (m ConfigModel) handleSelect() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.view {
	case viewMain:
		switch m.cursor {
		case menuSound:
			m.config.Sound = !m.config.Sound
			cmd = m.save("Reveal tone " + enabledWord(m.config.Sound))

		case menuCopyToClipboard:
			m.config.CopyToClipboard = !m.config.CopyToClipboard
			cmd = m.save("Copy to clipboard " + enabledWord(m.config.CopyToClipboard))

		case menuRevealSpeed:
			m.config.RevealDelay = nextSpeed(m.config.RevealDelay)
			cmd = m.save("Reveal delay set to " + m.config.RevealDelay.Std().String())

		case menuTheme:
			m.view = viewThemeSelect

		case menuTUITheme:
			m.view = viewTUIThemeSelect

		case menuExit:
			return m, tea.Quit
		}

	case viewThemeSelect:
		m.config.Markdown.Style = render.MarkdownStyles()[m.themeCursor]
		m.view = viewMain
		cmd = m.save("Markdown style set to " + m.config.Markdown.Style)

	case viewTUIThemeSelect:
		selected := render.TUIThemeNames()[m.tuiThemeCursor]
		m.config.TUITheme = selected
		render.SetTUITheme(selected)
		UpdateTheme()
		m.view = viewMain
		cmd = m.save("Color theme set to " + selected)
	}

	return m, cmd
}

// nextSpeed cycles through config.RevealSpeeds
func nextSpeed(current config.Duration) config.Duration {
	speeds := config.RevealSpeeds()
	for i, s := range speeds {
		if s == current {
			return speeds[(i+1)%len(speeds)]
		}
	}
	return speeds[0]
}

func enabledWord(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}

// View renders the settings menu
func (m ConfigModel) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string
	sections = append(sections, configHeaderStyle.Width(contentWidth).Render(configTitleStyle.Render("✦ Neuro settings")))

	paths := lipgloss.JoinVertical(lipgloss.Left,
		configSectionTitleStyle.Render("Paths"),
		fmt.Sprintf("   Config:  %s", configPathStyle.Render(m.configPath)),
		fmt.Sprintf("   Log:     %s", configPathStyle.Render(m.config.LogFile)),
		fmt.Sprintf("   Backend: %s", configValueStyle.Render(m.config.BaseURL)),
	)
	sections = append(sections, configPanelStyle.Width(contentWidth).Render(paths))

	var body string
	switch m.view {
	case viewThemeSelect:
		body = m.renderList("Markdown style", render.MarkdownStyles(), m.themeCursor, m.config.Markdown.Style)
	case viewTUIThemeSelect:
		body = m.renderList("Color theme", render.TUIThemeNames(), m.tuiThemeCursor, m.config.TUITheme)
	default:
		body = m.renderMainMenu()
	}
	sections = append(sections, configPanelStyle.Width(contentWidth).Render(body))

	if m.feedback != "" {
		sections = append(sections, configFeedbackStyle.Render("✓ "+m.feedback))
	}

	sections = append(sections, m.renderStatusBar(contentWidth))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ConfigModel) renderMainMenu() string {
	rows := []struct {
		label string
		value string
	}{
		{"Reveal Tone", m.renderBoolValue(m.config.Sound)},
		{"Copy to Clipboard", m.renderBoolValue(m.config.CopyToClipboard)},
		{"Reveal Delay", configValueStyle.Render(m.config.RevealDelay.Std().String())},
		{"Markdown Style", configValueStyle.Render(m.config.Markdown.Style)},
		{"Color Theme", configValueStyle.Render(m.config.TUITheme)},
	}

	items := []string{configSectionTitleStyle.Render("Settings"), ""}
	for i, row := range rows {
		items = append(items, m.menuLine(i, fmt.Sprintf("%-20s", row.label))+row.value)
	}
	items = append(items, "", m.menuLine(menuExit, "Exit"))

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (m ConfigModel) menuLine(index int, label string) string {
	if m.cursor == index {
		return configCursorStyle.Render("▸ ") + configMenuSelectedStyle.Render(label)
	}
	return "  " + configMenuItemStyle.Render(label)
}

func (m ConfigModel) renderList(title string, names []string, cursor int, current string) string {
	items := []string{configSectionTitleStyle.Render(title), ""}
	for i, name := range names {
		line := "  " + configMenuItemStyle.Render(name)
		if i == cursor {
			line = configCursorStyle.Render("▸ ") + configMenuSelectedStyle.Render(name)
		}
		if name == current {
			line += configEnabledStyle.Render(" (current)")
		}
		items = append(items, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (m ConfigModel) renderBoolValue(value bool) string {
	if value {
		return configEnabledStyle.Render("enabled")
	}
	return configDisabledStyle.Render("disabled")
}

func (m ConfigModel) renderStatusBar(width int) string {
	back := "Exit"
	if m.view != viewMain {
		back = "Back"
	}
	items := []string{
		statusKeyStyle.Render("↑↓") + statusDescStyle.Render(" Navigate"),
		statusKeyStyle.Render("Enter") + statusDescStyle.Render(" Select"),
		statusKeyStyle.Render("Esc") + statusDescStyle.Render(" "+back),
	}
	return configStatusBarStyle.Width(width).Render(strings.Join(items, "  │  "))
}

// RunConfig starts the settings menu
func RunConfig(cfg config.Config, configPath string) error {
	p := tea.NewProgram(
		NewConfigModel(cfg, configPath),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
