package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/neuroai/neurochat/internal/api"
	"github.com/neuroai/neurochat/internal/audio"
	"github.com/neuroai/neurochat/internal/config"
	apierrors "github.com/neuroai/neurochat/internal/errors"
	"github.com/neuroai/neurochat/internal/models"
	"github.com/neuroai/neurochat/internal/status"
)

type testHarness struct {
	backend *api.MockBackend
	beeps   int
	copied  []string
}

func newTestModel(t *testing.T) (Model, *testHarness) {
	t.Helper()
	h := &testHarness{backend: api.NewMockBackend()}

	cfg := config.DefaultConfig()
	m := NewChatModel(Options{
		Client: h.backend,
		Config: cfg,
		Beeper: audio.BeeperFunc(func() { h.beeps++ }),
		Copy: func(s string) error {
			h.copied = append(h.copied, s)
			return nil
		},
	})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, h
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func typeAndSend(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.textarea.SetValue(text)
	return update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

// drainReveal feeds ticks until no reveal is active
func drainReveal(t *testing.T, m Model) (Model, int) {
	t.Helper()
	ticks := 0
	for m.reveal.Active() {
		m, _ = update(t, m, revealTickMsg{generation: m.reveal.Generation()})
		ticks++
		if ticks > 10000 {
			t.Fatal("reveal never finished")
		}
	}
	return m, ticks
}

func lastMessage(m Model) chatMessage {
	if len(m.messages) == 0 {
		return chatMessage{}
	}
	return m.messages[len(m.messages)-1]
}

func infoLines(m Model) []string {
	var out []string
	for _, msg := range m.messages {
		if msg.role == models.RoleInfo {
			out = append(out, msg.content)
		}
	}
	return out
}

func TestSend_EmptyInputDoesNothing(t *testing.T) {
	for _, input := range []string{"", "   ", "\t"} {
		m, h := newTestModel(t)

		m, cmd := typeAndSend(t, m, input)
		if cmd != nil {
			t.Errorf("input %q: expected no command", input)
		}
		if len(m.messages) != 0 {
			t.Errorf("input %q: expected empty log, got %d messages", input, len(m.messages))
		}
		if h.backend.ChatCalls != 0 {
			t.Errorf("input %q: expected no chat request", input)
		}
	}
}

func TestSend_AppendsUserAndThinking(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := typeAndSend(t, m, "hello")
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if len(m.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(m.messages))
	}
	if m.messages[0].role != models.RoleUser || m.messages[0].content != "hello" {
		t.Errorf("unexpected user message: %+v", m.messages[0])
	}
	if !m.messages[1].thinking || m.messages[1].role != models.RoleAssistant {
		t.Errorf("expected thinking placeholder, got %+v", m.messages[1])
	}
	if m.textarea.Value() != "" {
		t.Errorf("expected input reset, got %q", m.textarea.Value())
	}
	if m.waiting != 1 {
		t.Errorf("expected 1 request in flight, got %d", m.waiting)
	}
	if !strings.Contains(m.viewport.View(), thinkingText) {
		t.Error("expected placeholder to be rendered")
	}
}

func TestSend_KeepsLeadingIndentation(t *testing.T) {
	m, h := newTestModel(t)
	text := "    indented code\n      next line"

	m, cmd := typeAndSend(t, m, text)
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if m.messages[0].content != text {
		t.Errorf("user message = %q, want %q", m.messages[0].content, text)
	}

	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatalf("expected a batch, got %T", cmd())
	}
	for _, c := range batch {
		if c != nil {
			c()
		}
	}
	if h.backend.ChatCalls != 1 {
		t.Fatalf("expected 1 chat request, got %d", h.backend.ChatCalls)
	}
	if got := h.backend.Memory[0].Content; got != text {
		t.Errorf("sent %q, want %q", got, text)
	}
}

func TestReply_RevealsOneRunePerTick(t *testing.T) {
	m, h := newTestModel(t)
	h.backend.ReplyFor = func(string) string { return "héllo" }

	m, _ = typeAndSend(t, m, "hi")
	id := m.messages[1].id

	m, cmd := update(t, m, m.sendChat(id, "hi")())
	if cmd == nil {
		t.Fatal("expected reveal tick to be scheduled")
	}
	if m.waiting != 0 {
		t.Errorf("expected no requests in flight, got %d", m.waiting)
	}

	want := []string{"h", "hé", "hél", "héll", "héllo"}
	for i, prefix := range want {
		m, _ = update(t, m, revealTickMsg{generation: m.reveal.Generation()})
		got := m.messages[1]
		if got.content != prefix {
			t.Fatalf("tick %d: content = %q, want %q", i, got.content, prefix)
		}
		if got.thinking {
			t.Fatalf("tick %d: placeholder should be gone", i)
		}
	}

	if m.reveal.Active() {
		t.Error("reveal should be idle after the last rune")
	}
	if m.messages[1].revealing {
		t.Error("message should be marked finished")
	}
	if h.beeps != 3 {
		t.Errorf("expected tone on indexes 0, 2, 4 (3 beeps), got %d", h.beeps)
	}
}

func TestReply_SoundDisabled(t *testing.T) {
	m, h := newTestModel(t)
	m.beeper.Set(false)

	m, _ = typeAndSend(t, m, "hi")
	m, _ = update(t, m, m.sendChat(m.messages[1].id, "hi")())
	m, _ = drainReveal(t, m)

	if h.beeps != 0 {
		t.Errorf("expected no beeps when muted, got %d", h.beeps)
	}
}

func TestReply_QueuedWhileRevealing(t *testing.T) {
	m, h := newTestModel(t)
	h.backend.ReplyFor = func(text string) string { return "re:" + text }

	m, _ = typeAndSend(t, m, "one")
	firstID := m.messages[1].id
	m, _ = typeAndSend(t, m, "two")
	secondID := m.messages[3].id

	m, _ = update(t, m, m.sendChat(firstID, "one")())
	m, _ = update(t, m, revealTickMsg{generation: m.reveal.Generation()})

	m, cmd := update(t, m, m.sendChat(secondID, "two")())
	if cmd != nil {
		t.Error("queued reply should not schedule its own tick")
	}
	if m.reveal.Pending() != 1 {
		t.Fatalf("expected 1 queued reply, got %d", m.reveal.Pending())
	}
	if !m.messages[3].thinking {
		t.Error("queued reply should keep its placeholder")
	}
	if m.messages[1].content != "r" {
		t.Errorf("first reveal disturbed: %q", m.messages[1].content)
	}

	m, ticks := drainReveal(t, m)

	if m.messages[1].content != "re:one" || m.messages[3].content != "re:two" {
		t.Errorf("unexpected final contents: %q %q", m.messages[1].content, m.messages[3].content)
	}
	if want := len("re:one") - 1 + len("re:two"); ticks != want {
		t.Errorf("expected %d ticks, got %d", want, ticks)
	}
}

func TestReply_StaleTickIgnored(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = typeAndSend(t, m, "hi")
	m, _ = update(t, m, m.sendChat(m.messages[1].id, "hi")())
	stale := m.reveal.Generation() - 1

	m, _ = update(t, m, revealTickMsg{generation: stale})
	if m.messages[1].content != "" || !m.messages[1].thinking {
		t.Errorf("stale tick should not advance the reveal: %+v", m.messages[1])
	}
}

func TestEsc_SkipsRevealThenQuits(t *testing.T) {
	m, h := newTestModel(t)
	h.backend.ReplyFor = func(string) string { return "a long answer" }

	m, _ = typeAndSend(t, m, "hi")
	m, _ = update(t, m, m.sendChat(m.messages[1].id, "hi")())
	m, _ = update(t, m, revealTickMsg{generation: m.reveal.Generation()})
	gen := m.reveal.Generation()

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.messages[1].content != "a long answer" || m.messages[1].revealing {
		t.Errorf("expected full text after skip, got %+v", m.messages[1])
	}
	if m.reveal.Active() {
		t.Error("reveal should be idle after skip")
	}

	m, _ = update(t, m, revealTickMsg{generation: gen})
	if m.messages[1].content != "a long answer" {
		t.Error("tick after skip should be ignored")
	}

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Esc while idle should quit")
	}
}

func TestReply_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server error", apierrors.NewAPIError(500, models.EndpointChat, "boom"), "[server error 500]"},
		{"not found", apierrors.NewAPIError(404, models.EndpointChat, "missing"), "[server error 404]"},
		{"network", apierrors.NewNetworkError("chat", models.EndpointChat, errors.New("refused")), "[connection error]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, h := newTestModel(t)
			h.backend.ChatErr = tt.err

			m, _ = typeAndSend(t, m, "hi")
			m, _ = update(t, m, m.sendChat(m.messages[1].id, "hi")())

			got := m.messages[1]
			if got.content != tt.want || got.thinking {
				t.Errorf("got %+v, want content %q", got, tt.want)
			}
			if m.reveal.Active() {
				t.Error("errors should not be revealed")
			}
		})
	}
}

func TestPing_SetsStatus(t *testing.T) {
	m, h := newTestModel(t)
	if m.status != status.Unknown {
		t.Fatalf("expected unknown status before first ping, got %v", m.status)
	}

	m, cmd := update(t, m, m.checkServer()())
	if m.status != status.Online {
		t.Errorf("expected online, got %v", m.status)
	}
	if cmd == nil {
		t.Error("expected next poll to be scheduled")
	}
	if !strings.Contains(m.View(), "online") {
		t.Error("header should show online")
	}

	h.backend.PingErr = apierrors.NewNetworkError("ping", models.EndpointPing, errors.New("refused"))
	m, _ = update(t, m, m.checkServer()())
	if m.status != status.Offline {
		t.Errorf("expected offline, got %v", m.status)
	}
	if !strings.Contains(m.View(), "offline") {
		t.Error("header should show offline")
	}
}

func TestInit_LoadsHistory(t *testing.T) {
	m, h := newTestModel(t)
	h.backend.Memory = []models.Message{
		{Role: models.RoleUser, Content: "earlier"},
		{Role: models.RoleAssistant, Content: "reply"},
	}

	if m.Init() == nil {
		t.Fatal("expected startup commands")
	}

	m, _ = update(t, m, m.loadHistory()())
	if len(m.messages) != 2 || m.messages[0].content != "earlier" || m.messages[1].role != models.RoleAssistant {
		t.Errorf("unexpected log: %+v", m.messages)
	}
}

func TestInit_HistoryFailureIgnored(t *testing.T) {
	m, h := newTestModel(t)
	m.appendMessage(models.RoleInfo, "keep me")
	h.backend.MemoryErr = apierrors.ErrHistoryUnavailable

	m, _ = update(t, m, m.loadHistory()())
	if len(m.messages) != 1 || m.messages[0].content != "keep me" {
		t.Errorf("failed fetch should leave the log alone: %+v", m.messages)
	}
}

func TestLoadConfig(t *testing.T) {
	m, h := newTestModel(t)
	h.backend.Config = models.BackendConfig{UseAlternateModel: true, HasAPIKey: true, ModelAvailable: true}

	m, _ = update(t, m, m.loadConfig()())
	if !m.useAlternate || !m.hasAPIKey || !m.modelAvailable {
		t.Errorf("config not applied: alt=%v key=%v avail=%v", m.useAlternate, m.hasAPIKey, m.modelAvailable)
	}
}

func TestClear(t *testing.T) {
	m, h := newTestModel(t)
	h.backend.Memory = []models.Message{{Role: models.RoleUser, Content: "old"}}
	m, _ = update(t, m, m.loadHistory()())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	if cmd == nil {
		t.Fatal("expected clear command")
	}
	m, cmd = update(t, m, cmd())
	if len(m.messages) != 0 {
		t.Fatalf("expected empty log after clear, got %+v", m.messages)
	}
	if cmd == nil {
		t.Fatal("expected history reload after clear")
	}

	h.backend.Memory = []models.Message{{Role: models.RoleAssistant, Content: "fresh start"}}
	m, _ = update(t, m, m.loadHistory()())
	if len(m.messages) != 1 || m.messages[0].content != "fresh start" {
		t.Errorf("expected log repopulated, got %+v", m.messages)
	}
}

func TestClear_Failures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rejected", apierrors.NewAPIError(500, models.EndpointClearMemory, ""), "Failed to clear history."},
		{"network", apierrors.NewNetworkError("clear", models.EndpointClearMemory, errors.New("down")), "Error clearing history."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, h := newTestModel(t)
			m.appendMessage(models.RoleUser, "keep")
			h.backend.ClearErr = tt.err

			m, _ = update(t, m, m.clearHistory()())
			if len(m.messages) != 2 || m.messages[0].content != "keep" {
				t.Errorf("log should survive a failed clear: %+v", m.messages)
			}
			if got := lastMessage(m).content; got != tt.want {
				t.Errorf("info = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToggleModel(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m, h := newTestModel(t)

		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
		if !m.useAlternate {
			t.Fatal("toggle should flip immediately")
		}
		m, _ = update(t, m, cmd())

		if !m.useAlternate {
			t.Error("toggle should stay on after success")
		}
		if got := lastMessage(m).content; got != "Switched to Gemini API" {
			t.Errorf("info = %q", got)
		}
		if h.backend.LastUpdate.UseAlternateModel == nil || !*h.backend.LastUpdate.UseAlternateModel {
			t.Error("expected use_gemini=true to be sent")
		}

		m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
		m, _ = update(t, m, cmd())
		if got := lastMessage(m).content; got != "Switched to Local Model" {
			t.Errorf("info = %q", got)
		}
	})

	failures := []struct {
		name string
		err  error
		want string
	}{
		{"rejected", apierrors.NewAPIError(400, models.EndpointConfig, "bad"), "Failed to switch model"},
		{"network", apierrors.NewNetworkError("config", models.EndpointConfig, errors.New("down")), "Error switching model mode"},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			m, h := newTestModel(t)
			h.backend.SetErr = tt.err

			m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
			if !m.useAlternate {
				t.Fatal("toggle should flip immediately")
			}
			m, _ = update(t, m, cmd())

			if m.useAlternate {
				t.Error("toggle should revert after a failed save")
			}
			if got := lastMessage(m).content; got != tt.want {
				t.Errorf("info = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIKeyCommand(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		m, h := newTestModel(t)
		m, cmd := typeAndSend(t, m, "/key   ")
		if cmd != nil {
			t.Error("expected no request for an empty key")
		}
		if got := lastMessage(m).content; got != "Please enter an API key." {
			t.Errorf("info = %q", got)
		}
		if h.backend.SetCalls != 0 {
			t.Error("expected no config request")
		}
	})

	t.Run("saved", func(t *testing.T) {
		m, h := newTestModel(t)
		m, cmd := typeAndSend(t, m, "/key sk-secret")
		if cmd == nil {
			t.Fatal("expected save command")
		}
		m, _ = update(t, m, cmd())

		if got := lastMessage(m).content; got != "API key saved successfully!" {
			t.Errorf("info = %q", got)
		}
		if h.backend.LastUpdate.APIKey == nil || *h.backend.LastUpdate.APIKey != "sk-secret" {
			t.Error("expected key to be sent")
		}
		for _, msg := range m.messages {
			if strings.Contains(msg.content, "sk-secret") {
				t.Error("key must never be echoed into the log")
			}
		}
		if m.textarea.Value() != "" {
			t.Error("input should be cleared")
		}
	})

	failures := []struct {
		name string
		err  error
		want string
	}{
		{"rejected", apierrors.NewAPIError(400, models.EndpointConfig, ""), "Failed to save API key."},
		{"network", apierrors.NewNetworkError("config", models.EndpointConfig, errors.New("down")), "Error saving API key."},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			m, h := newTestModel(t)
			h.backend.SetErr = tt.err
			m, cmd := typeAndSend(t, m, "/key k")
			m, _ = update(t, m, cmd())
			if got := lastMessage(m).content; got != tt.want {
				t.Errorf("info = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCopyCommand(t *testing.T) {
	m, h := newTestModel(t)

	m, _ = typeAndSend(t, m, "/copy")
	if got := lastMessage(m).content; got != "Nothing to copy yet." {
		t.Errorf("info = %q", got)
	}

	h.backend.Memory = []models.Message{
		{Role: models.RoleUser, Content: "q"},
		{Role: models.RoleAssistant, Content: "the answer"},
	}
	m, _ = update(t, m, m.loadHistory()())
	m, _ = typeAndSend(t, m, "/copy")

	if len(h.copied) != 1 || h.copied[0] != "the answer" {
		t.Errorf("copied = %v", h.copied)
	}
}

func TestSoundCommand(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = typeAndSend(t, m, "/sound")
	if m.beeper.Enabled() {
		t.Error("expected sound off")
	}
	m, _ = typeAndSend(t, m, "/sound")
	if !m.beeper.Enabled() {
		t.Error("expected sound back on")
	}
	if lines := infoLines(m); len(lines) != 2 || lines[0] != "Sound off" || lines[1] != "Sound on" {
		t.Errorf("unexpected info lines: %v", lines)
	}
}

func TestUnknownCommand(t *testing.T) {
	m, h := newTestModel(t)

	m, _ = typeAndSend(t, m, "/bogus")
	if !strings.Contains(lastMessage(m).content, "Unknown command /bogus") {
		t.Errorf("info = %q", lastMessage(m).content)
	}
	if h.backend.ChatCalls != 0 {
		t.Error("slash commands must not be sent as chat")
	}
}

func TestQuitKeys(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c: expected quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c: expected QuitMsg")
	}

	_, cmd = typeAndSend(t, m, "/quit")
	if cmd == nil {
		t.Fatal("/quit: expected quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("/quit: expected QuitMsg")
	}
}

func TestView(t *testing.T) {
	m := NewChatModel(Options{Client: api.NewMockBackend(), Config: config.DefaultConfig()})
	if !strings.Contains(m.View(), "Initializing") {
		t.Error("expected initializing view before first resize")
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	view := m.View()
	for _, want := range []string{"Neuro", "checking", "Local Model", "Enter"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m.appendMessage(models.RoleUser, "hello there")
	if !strings.Contains(m.View(), "hello there") {
		t.Error("view should show the log")
	}
}

func TestFormatError(t *testing.T) {
	if FormatError(nil) != "" {
		t.Error("nil error should format empty")
	}

	out := FormatError(apierrors.NewAPIError(503, models.EndpointChat, "overloaded"))
	for _, want := range []string{"503", models.EndpointChat, "backend failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted error missing %q: %s", want, out)
		}
	}

	out = FormatError(apierrors.NewNetworkError("ping", models.EndpointPing, errors.New("refused")))
	if !strings.Contains(out, "Is the backend running") {
		t.Errorf("expected network hint: %s", out)
	}
}

// stalledPingBackend never answers a ping until the caller gives up
type stalledPingBackend struct {
	*api.MockBackend
}

func (b stalledPingBackend) Ping(ctx context.Context) (*models.PingResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestPing_StalledPingGoesOfflineAndKeepsPolling(t *testing.T) {
	m, h := newTestModel(t)
	m, _ = update(t, m, m.checkServer()())
	if m.status != status.Online {
		t.Fatalf("expected online, got %v", m.status)
	}

	m.client = stalledPingBackend{h.backend}
	m.pollInterval = 20 * time.Millisecond

	done := make(chan tea.Msg, 1)
	go func() { done <- m.checkServer()() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ping was not bounded by the poll interval")
	}

	m, cmd := update(t, m, msg)
	if m.status != status.Offline {
		t.Errorf("a stalled ping should count as offline, got %v", m.status)
	}
	if cmd == nil {
		t.Error("the next poll should still be scheduled")
	}
}
