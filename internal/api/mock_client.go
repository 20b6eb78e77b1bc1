package api

import (
	"context"
	"strings"
	"sync"

	apierrors "github.com/neuroai/neurochat/internal/errors"
	"github.com/neuroai/neurochat/internal/models"
)

// MockBackend is an in-memory BackendClientInterface for tests.
// It keeps a memory log the way the real backend does.
type MockBackend struct {
	mu sync.Mutex

	URL      string
	Memory   []models.Message
	Config   models.BackendConfig
	ReplyFor func(text string) string

	PingErr   error
	ChatErr   error
	MemoryErr error
	ConfigErr error
	SetErr    error
	ClearErr  error

	PingCalls   int
	ChatCalls   int
	MemoryCalls int
	SetCalls    int
	ClearCalls  int
	LastUpdate  models.ConfigUpdate
}

// NewMockBackend creates a MockBackend that echoes messages back
func NewMockBackend() *MockBackend {
	return &MockBackend{
		URL: models.DefaultBaseURL,
		ReplyFor: func(text string) string {
			return "echo: " + text
		},
	}
}

var _ BackendClientInterface = (*MockBackend)(nil)

// BaseURL implements BackendClientInterface
func (m *MockBackend) BaseURL() string {
	return m.URL
}

// Ping implements BackendClientInterface
func (m *MockBackend) Ping(ctx context.Context) (*models.PingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PingCalls++
	if m.PingErr != nil {
		return nil, m.PingErr
	}
	return &models.PingResult{Online: true, ModelMode: models.ModeName(m.Config.UseAlternateModel)}, nil
}

// SendChat implements BackendClientInterface
func (m *MockBackend) SendChat(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apierrors.ErrEmptyMessage
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatCalls++
	if m.ChatErr != nil {
		return "", m.ChatErr
	}
	reply := m.ReplyFor(text)
	m.Memory = append(m.Memory,
		models.Message{Role: models.RoleUser, Content: text},
		models.Message{Role: models.RoleAssistant, Content: reply},
	)
	return reply, nil
}

// FetchHistory implements BackendClientInterface
func (m *MockBackend) FetchHistory(ctx context.Context) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MemoryCalls++
	if m.MemoryErr != nil {
		return nil, m.MemoryErr
	}
	out := make([]models.Message, len(m.Memory))
	copy(out, m.Memory)
	return out, nil
}

// GetConfig implements BackendClientInterface
func (m *MockBackend) GetConfig(ctx context.Context) (*models.BackendConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ConfigErr != nil {
		return nil, m.ConfigErr
	}
	cfg := m.Config
	return &cfg, nil
}

// SetConfig implements BackendClientInterface
func (m *MockBackend) SetConfig(ctx context.Context, update models.ConfigUpdate) (*models.BackendConfig, error) {
	if update.IsEmpty() {
		return nil, apierrors.ErrEmptyUpdate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	m.LastUpdate = update
	if m.SetErr != nil {
		return nil, m.SetErr
	}
	if update.UseAlternateModel != nil {
		m.Config.UseAlternateModel = *update.UseAlternateModel
	}
	if update.APIKey != nil {
		m.Config.HasAPIKey = *update.APIKey != ""
	}
	cfg := m.Config
	return &cfg, nil
}

// ClearHistory implements BackendClientInterface
func (m *MockBackend) ClearHistory(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.Memory = nil
	return nil
}
