package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/neuroai/neurochat/internal/api"
	"github.com/neuroai/neurochat/internal/audio"
	"github.com/neuroai/neurochat/internal/config"
	apierrors "github.com/neuroai/neurochat/internal/errors"
	"github.com/neuroai/neurochat/internal/models"
	"github.com/neuroai/neurochat/internal/render"
	"github.com/neuroai/neurochat/internal/reveal"
	"github.com/neuroai/neurochat/internal/status"
)

// Inline texts shown in the log
const (
	thinkingText        = "…thinking…"
	connectionErrorText = "[connection error]"
)

// Message types for the TUI
type (
	pingMsg     struct{ result status.Result }
	pollTickMsg time.Time
	revealTickMsg struct {
		generation int
	}
	configLoadedMsg struct {
		cfg *models.BackendConfig
		err error
	}
	historyLoadedMsg struct {
		messages []models.Message
		err      error
	}
	chatReplyMsg struct {
		id    int
		reply string
		err   error
	}
	modelToggledMsg struct {
		prev bool
		next bool
		cfg  *models.BackendConfig
		err  error
	}
	apiKeySavedMsg struct {
		err error
	}
	historyClearedMsg struct {
		err error
	}
)

// Options wires the chat model to its collaborators
type Options struct {
	Context context.Context
	Client  api.BackendClientInterface
	Config  config.Config
	Logger  zerolog.Logger
	// Beeper sounds the reveal tone. Nil means silent.
	Beeper audio.Beeper
	// Copy writes to the system clipboard. Nil uses atotto/clipboard.
	Copy func(string) error
}

// Model represents the chat TUI state
type Model struct {
	ctx    context.Context
	client api.BackendClientInterface
	logger zerolog.Logger
	beeper *audio.Toggle
	copyFn func(string) error

	renderOpts   render.Options
	pollInterval time.Duration
	revealDelay  time.Duration

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// Log state
	messages []chatMessage
	nextID   int
	reveal   *reveal.Animation
	waiting  int // chat requests in flight

	// Backend state
	status         status.Status
	useAlternate   bool
	hasAPIKey      bool
	modelAvailable bool

	ready  bool
	width  int
	height int
}

// chatMessage is one line of the log
type chatMessage struct {
	id        int
	role      models.Role
	content   string
	thinking  bool
	revealing bool

	// glamour output cache for finished assistant replies
	rendered      string
	renderedWidth int
}

// NewChatModel creates a new chat TUI model
func NewChatModel(opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Say something to Neuro... (/help for commands)"
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	var beeper audio.Beeper = audio.Nop{}
	if opts.Beeper != nil {
		beeper = opts.Beeper
	}

	copyFn := opts.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	pollInterval := opts.Config.PollInterval.Std()
	if pollInterval <= 0 {
		pollInterval = status.DefaultInterval
	}
	revealDelay := opts.Config.RevealDelay.Std()
	if revealDelay <= 0 {
		revealDelay = 50 * time.Millisecond
	}

	return Model{
		ctx:          ctx,
		client:       opts.Client,
		logger:       opts.Logger,
		beeper:       audio.NewToggle(beeper, opts.Config.Sound),
		copyFn:       copyFn,
		renderOpts:   render.OptionsFromConfig(opts.Config),
		pollInterval: pollInterval,
		revealDelay:  revealDelay,
		textarea:     ta,
		spinner:      s,
		reveal:       reveal.New(),
		status:       status.Unknown,
	}
}

// Init checks the server, loads config and loads history in parallel
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.checkServer(),
		m.loadConfig(),
		m.loadHistory(),
	)
}

func (m Model) pollTick() tea.Cmd {
	return tea.Tick(m.pollInterval, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

func (m Model) revealTick(generation int) tea.Cmd {
	return tea.Tick(m.revealDelay, func(time.Time) tea.Msg {
		return revealTickMsg{generation: generation}
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		inputHeight := 5
		statusHeight := 1

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - 2
		if vpHeight < 5 {
			vpHeight = 5
		}
		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.viewport.KeyMap = viewport.KeyMap{
				PageDown: key.NewBinding(key.WithKeys("pgdown")),
				PageUp:   key.NewBinding(key.WithKeys("pgup")),
			}
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.reveal.Active() {
				cmd = m.skipReveal()
				return m, cmd
			}
			return m, tea.Quit

		case "ctrl+t":
			cmd = m.toggleModel()
			return m, cmd

		case "ctrl+l":
			return m, m.clearHistory()

		case "enter":
			return m.submit()
		}

	case pingMsg:
		m.status = msg.result.Status
		cmds = append(cmds, m.pollTick())

	case pollTickMsg:
		cmds = append(cmds, m.checkServer())

	case configLoadedMsg:
		if msg.err != nil {
			m.logger.Warn().Err(msg.err).Msg("load config failed")
		} else if msg.cfg != nil {
			m.useAlternate = msg.cfg.UseAlternateModel
			m.hasAPIKey = msg.cfg.HasAPIKey
			m.modelAvailable = msg.cfg.ModelAvailable
		}

	case historyLoadedMsg:
		if msg.err != nil {
			m.logger.Debug().Err(msg.err).Msg("history not loaded")
			break
		}
		m.replaceLog(msg.messages)

	case chatReplyMsg:
		if m.waiting > 0 {
			m.waiting--
		}
		cmds = append(cmds, m.handleReply(msg))

	case revealTickMsg:
		if !m.reveal.Active() || msg.generation != m.reveal.Generation() {
			break
		}
		frame := m.reveal.Step()
		if frame.Tone {
			m.beeper.Beep()
		}
		m.applyFrame(frame)
		if m.reveal.Active() {
			cmds = append(cmds, m.revealTick(m.reveal.Generation()))
		}

	case modelToggledMsg:
		if msg.err != nil {
			m.useAlternate = msg.prev
			m.logger.Warn().Err(msg.err).Bool("use_gemini", msg.next).Msg("model switch failed")
			if apierrors.IsAPIError(msg.err) {
				m.appendMessage(models.RoleInfo, "Failed to switch model")
			} else {
				m.appendMessage(models.RoleInfo, "Error switching model mode")
			}
			break
		}
		if msg.cfg != nil {
			m.modelAvailable = msg.cfg.ModelAvailable
			m.hasAPIKey = msg.cfg.HasAPIKey
		}
		m.appendMessage(models.RoleInfo, "Switched to "+models.ModeName(msg.next))

	case apiKeySavedMsg:
		switch {
		case msg.err == nil:
			m.hasAPIKey = true
			m.appendMessage(models.RoleInfo, "API key saved successfully!")
		case apierrors.IsAPIError(msg.err):
			m.logger.Warn().Err(msg.err).Msg("api key rejected")
			m.appendMessage(models.RoleInfo, "Failed to save API key.")
		default:
			m.logger.Warn().Err(msg.err).Msg("api key save failed")
			m.appendMessage(models.RoleInfo, "Error saving API key.")
		}

	case historyClearedMsg:
		switch {
		case msg.err == nil:
			m.reveal.Cancel()
			m.messages = nil
			m.updateViewport()
			cmds = append(cmds, m.loadHistory())
		case apierrors.IsAPIError(msg.err):
			m.logger.Warn().Err(msg.err).Msg("clear history rejected")
			m.appendMessage(models.RoleInfo, "Failed to clear history.")
		default:
			m.logger.Warn().Err(msg.err).Msg("clear history failed")
			m.appendMessage(models.RoleInfo, "Error clearing history.")
		}

	case spinner.TickMsg:
		if m.waiting > 0 || m.reveal.Active() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if _, ok := msg.(tea.KeyMsg); ok {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit handles Enter: slash commands, or a chat message
func (m Model) submit() (tea.Model, tea.Cmd) {
	raw := m.textarea.Value()
	input := strings.TrimSpace(raw)
	if input == "" {
		return m, nil
	}
	m.textarea.Reset()

	if strings.HasPrefix(input, "/") {
		return m.runCommand(input)
	}

	// Chat text goes out as typed so indentation survives.
	m.appendMessage(models.RoleUser, raw)
	id := m.appendThinking()
	m.waiting++

	return m, tea.Batch(m.sendChat(id, raw), m.spinner.Tick)
}

// runCommand executes a slash command typed into the input
func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/quit", "/exit":
		return m, tea.Quit

	case "/clear":
		return m, m.clearHistory()

	case "/reload":
		return m, m.loadHistory()

	case "/model":
		cmd := m.toggleModel()
		return m, cmd

	case "/key":
		if arg == "" {
			m.appendMessage(models.RoleInfo, "Please enter an API key.")
			return m, nil
		}
		return m, m.saveAPIKey(arg)

	case "/copy":
		m.copyLastReply()
		return m, nil

	case "/sound":
		on := !m.beeper.Enabled()
		m.beeper.Set(on)
		if on {
			m.appendMessage(models.RoleInfo, "Sound on")
		} else {
			m.appendMessage(models.RoleInfo, "Sound off")
		}
		return m, nil

	case "/help":
		m.appendMessage(models.RoleInfo, helpText)
		return m, nil
	}

	m.appendMessage(models.RoleInfo, fmt.Sprintf("Unknown command %s. Type /help.", name))
	return m, nil
}

const helpText = `/clear   reset the conversation (Ctrl+L)
/reload  reload the conversation from the server
/model   switch between local model and Gemini API (Ctrl+T)
/key K   save a Gemini API key
/copy    copy the last reply
/sound   toggle the reveal tone
/quit    leave (Esc when idle)`

// handleReply places a chat result into the log and starts its reveal
func (m *Model) handleReply(msg chatReplyMsg) tea.Cmd {
	idx := m.indexOf(msg.id)
	if idx < 0 {
		// log was cleared or reloaded while the request was in flight
		m.nextID++
		m.messages = append(m.messages, chatMessage{id: m.nextID, role: models.RoleAssistant, thinking: true})
		msg.id = m.nextID
		idx = len(m.messages) - 1
	}

	if msg.err != nil {
		m.logger.Warn().Err(msg.err).Msg("chat request failed")
		text := connectionErrorText
		if code := apierrors.GetHTTPStatus(msg.err); code > 0 {
			text = fmt.Sprintf("[server error %d]", code)
		}
		m.messages[idx].thinking = false
		m.messages[idx].content = text
		m.updateViewport()
		m.viewport.GotoBottom()
		return nil
	}

	if m.reveal.Start(msg.id, msg.reply) {
		return m.revealTick(m.reveal.Generation())
	}
	return nil
}

func (m *Model) skipReveal() tea.Cmd {
	frame := m.reveal.Skip()
	m.applyFrame(frame)
	if m.reveal.Active() {
		return m.revealTick(m.reveal.Generation())
	}
	return nil
}

// applyFrame copies a reveal frame into the message it belongs to
func (m *Model) applyFrame(frame reveal.Frame) {
	idx := m.indexOf(frame.Key)
	if idx < 0 {
		return
	}
	msg := &m.messages[idx]
	msg.thinking = false
	msg.content = frame.Text
	msg.revealing = !frame.Done
	msg.rendered = ""
	m.updateViewport()
	m.viewport.GotoBottom()
}

func (m *Model) appendMessage(role models.Role, content string) int {
	m.nextID++
	m.messages = append(m.messages, chatMessage{
		id:      m.nextID,
		role:    role,
		content: content,
	})
	m.updateViewport()
	m.viewport.GotoBottom()
	return m.nextID
}

func (m *Model) appendThinking() int {
	id := m.appendMessage(models.RoleAssistant, "")
	m.messages[len(m.messages)-1].thinking = true
	m.updateViewport()
	return id
}

// replaceLog swaps the log for the server's memory
func (m *Model) replaceLog(msgs []models.Message) {
	m.reveal.Cancel()
	m.messages = make([]chatMessage, 0, len(msgs))
	for _, msg := range msgs {
		m.nextID++
		m.messages = append(m.messages, chatMessage{
			id:      m.nextID,
			role:    msg.Role,
			content: msg.Content,
		})
	}
	m.updateViewport()
	m.viewport.GotoBottom()
}

func (m Model) indexOf(id int) int {
	for i := range m.messages {
		if m.messages[i].id == id {
			return i
		}
	}
	return -1
}

func (m *Model) copyLastReply() {
	for i := len(m.messages) - 1; i >= 0; i-- {
		msg := m.messages[i]
		if msg.role != models.RoleAssistant || msg.thinking || msg.revealing {
			continue
		}
		if err := m.copyFn(msg.content); err != nil {
			m.logger.Warn().Err(err).Msg("clipboard write failed")
			m.appendMessage(models.RoleInfo, "Could not copy to clipboard.")
			return
		}
		m.appendMessage(models.RoleInfo, "Copied last reply to clipboard.")
		return
	}
	m.appendMessage(models.RoleInfo, "Nothing to copy yet.")
}

// Backend commands

func (m Model) checkServer() tea.Cmd {
	ctx, client, interval := m.ctx, m.client, m.pollInterval
	return func() tea.Msg {
		return pingMsg{result: status.CheckWithin(ctx, client, interval)}
	}
}

func (m Model) loadConfig() tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		cfg, err := client.GetConfig(ctx)
		return configLoadedMsg{cfg: cfg, err: err}
	}
}

func (m Model) loadHistory() tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		msgs, err := client.FetchHistory(ctx)
		return historyLoadedMsg{messages: msgs, err: err}
	}
}

func (m Model) sendChat(id int, text string) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		reply, err := client.SendChat(ctx, text)
		return chatReplyMsg{id: id, reply: reply, err: err}
	}
}

// toggleModel flips the switch right away; a failed save reverts it
func (m *Model) toggleModel() tea.Cmd {
	prev := m.useAlternate
	next := !prev
	m.useAlternate = next

	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		cfg, err := client.SetConfig(ctx, models.ConfigUpdate{UseAlternateModel: &next})
		return modelToggledMsg{prev: prev, next: next, cfg: cfg, err: err}
	}
}

func (m Model) saveAPIKey(apiKey string) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		_, err := client.SetConfig(ctx, models.ConfigUpdate{APIKey: &apiKey})
		return apiKeySavedMsg{err: err}
	}
}

func (m Model) clearHistory() tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		return historyClearedMsg{err: client.ClearHistory(ctx)}
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	var sections []string

	sections = append(sections, headerStyle.Width(contentWidth).Render(m.renderHeader()))

	var messagesContent string
	if len(m.messages) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	label := inputLabelStyle.Render("You")
	if m.waiting > 0 {
		label = lipgloss.JoinHorizontal(lipgloss.Center,
			label,
			m.spinner.View(),
			thinkingStyle.Render(" Neuro is thinking"),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, label, m.textarea.View()),
	))

	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	indicator := lipgloss.NewStyle().
		Foreground(m.status.Color()).
		Bold(true).
		Render("● " + m.status.String())

	mode := models.ModeName(m.useAlternate)
	if m.useAlternate && !m.modelAvailable {
		mode += " (unavailable)"
	}

	parts := []string{
		titleStyle.Render("✦ Neuro"),
		hintStyle.Render("  •  "),
		indicator,
		hintStyle.Render("  •  "),
		subtitleStyle.Render(mode),
	}
	if !m.beeper.Enabled() {
		parts = append(parts, hintStyle.Render("  •  muted"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		welcomeIconStyle.Width(width).Render("✦"),
		"",
		welcomeTitleStyle.Width(width).Render("Neuro is listening"),
		"",
		welcomeStyle.Width(width).Render("Type a message below and press Enter"),
	)

	topPadding := (m.viewport.Height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

func (m Model) renderStatusBar(width int) string {
	escDesc := "Quit"
	if m.reveal.Active() {
		escDesc = "Skip"
	}
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+T", "Model"},
		{"Ctrl+L", "Clear"},
		{"Esc", escDesc},
		{"PgUp/PgDn", "Scroll"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport redraws the log into the viewport
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	for i := range m.messages {
		msg := &m.messages[i]
		if i > 0 {
			content.WriteString("\n")
		}

		switch msg.role {
		case models.RoleUser:
			content.WriteString(userLabelStyle.Render("You"))
			content.WriteString("\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.content))

		case models.RoleInfo:
			content.WriteString(infoStyle.Width(bubbleWidth).Render(msg.content))

		default:
			content.WriteString(assistantLabelStyle.Render("Neuro"))
			content.WriteString("\n")

			var body string
			switch {
			case msg.thinking:
				body = thinkingStyle.Render(thinkingText)
			case msg.revealing:
				body = msg.content + cursorStyle.Render("▌")
			default:
				if msg.rendered == "" || msg.renderedWidth != bubbleWidth {
					msg.rendered = render.Reply(msg.content, m.renderOpts.WithWidth(bubbleWidth-4))
					msg.renderedWidth = bubbleWidth
				}
				body = msg.rendered
			}
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(body))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// RunChat starts the chat TUI
func RunChat(opts Options) error {
	p := tea.NewProgram(
		NewChatModel(opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
