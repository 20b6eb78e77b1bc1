package api

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/neuroai/neurochat/internal/errors"
	"github.com/neuroai/neurochat/internal/models"
)

// Ping checks whether the backend is reachable. Any 2xx counts as online.
func (c *BackendClient) Ping(ctx context.Context) (*models.PingResult, error) {
	resp, err := c.do(ctx, http.MethodGet, models.EndpointPing, nil)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, newAPIError(resp, models.EndpointPing)
	}

	result := &models.PingResult{Online: true}
	if gjson.ValidBytes(resp.body) {
		result.ModelMode = gjson.GetBytes(resp.body, "model_mode").String()
	}
	return result, nil
}

// SendChat posts a user message and returns the backend reply.
// The reply is read from "response", then "reply", then falls back to a placeholder.
func (c *BackendClient) SendChat(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apierrors.ErrEmptyMessage
	}

	resp, err := c.do(ctx, http.MethodPost, models.EndpointChat, map[string]string{"message": text})
	if err != nil {
		return "", err
	}
	if !resp.ok() {
		return "", newAPIError(resp, models.EndpointChat)
	}
	if !gjson.ValidBytes(resp.body) {
		return "", apierrors.NewParseError("chat response is not JSON", models.EndpointChat)
	}

	reply, ok := extractReply(resp.body)
	if !ok {
		c.logger.Warn().Str("endpoint", models.EndpointChat).Msg("chat response has no reply field")
	}
	return reply, nil
}

// extractReply reads the first present, non-null reply field
func extractReply(body []byte) (string, bool) {
	for _, path := range []string{"response", "reply"} {
		v := gjson.GetBytes(body, path)
		if v.Exists() && v.Type != gjson.Null {
			return v.String(), true
		}
	}
	return models.NoResponsePlaceholder, false
}

// FetchHistory returns the backend memory in order.
// Non-2xx answers yield ErrHistoryUnavailable, which callers may ignore.
func (c *BackendClient) FetchHistory(ctx context.Context) ([]models.Message, error) {
	resp, err := c.do(ctx, http.MethodGet, models.EndpointMemory, nil)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, fmt.Errorf("%w: %w", apierrors.ErrHistoryUnavailable, newAPIError(resp, models.EndpointMemory))
	}

	parsed := gjson.ParseBytes(resp.body)
	if !gjson.ValidBytes(resp.body) || !parsed.IsArray() {
		return nil, apierrors.NewParseError("memory is not a JSON array", models.EndpointMemory)
	}

	messages := make([]models.Message, 0)
	parsed.ForEach(func(_, item gjson.Result) bool {
		messages = append(messages, models.Message{
			Role:    models.ParseRole(item.Get("role").String()),
			Content: item.Get("content").String(),
		})
		return true
	})
	return messages, nil
}

// GetConfig reads the backend model selection state
func (c *BackendClient) GetConfig(ctx context.Context) (*models.BackendConfig, error) {
	resp, err := c.do(ctx, http.MethodGet, models.EndpointConfig, nil)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, newAPIError(resp, models.EndpointConfig)
	}
	if !gjson.ValidBytes(resp.body) {
		return nil, apierrors.NewParseError("config response is not JSON", models.EndpointConfig)
	}

	return &models.BackendConfig{
		UseAlternateModel: gjson.GetBytes(resp.body, "use_gemini").Bool(),
		HasAPIKey:         gjson.GetBytes(resp.body, "has_api_key").Bool(),
		ModelAvailable:    gjson.GetBytes(resp.body, "model_available").Bool(),
	}, nil
}

// SetConfig writes a partial config update. The returned config reflects
// the update plus whatever the backend reported back.
func (c *BackendClient) SetConfig(ctx context.Context, update models.ConfigUpdate) (*models.BackendConfig, error) {
	if update.IsEmpty() {
		return nil, apierrors.ErrEmptyUpdate
	}

	c.logger.Debug().Str("update", update.String()).Msg("updating backend config")

	resp, err := c.do(ctx, http.MethodPost, models.EndpointConfig, update)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, newAPIError(resp, models.EndpointConfig)
	}

	result := &models.BackendConfig{}
	if update.UseAlternateModel != nil {
		result.UseAlternateModel = *update.UseAlternateModel
	}
	if update.APIKey != nil {
		result.HasAPIKey = *update.APIKey != ""
	}
	if gjson.ValidBytes(resp.body) {
		if v := gjson.GetBytes(resp.body, "use_gemini"); v.Exists() {
			result.UseAlternateModel = v.Bool()
		}
		if v := gjson.GetBytes(resp.body, "has_api_key"); v.Exists() {
			result.HasAPIKey = v.Bool()
		}
		result.ModelAvailable = gjson.GetBytes(resp.body, "model_available").Bool()
	}
	return result, nil
}

// ClearHistory asks the backend to reset its memory
func (c *BackendClient) ClearHistory(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, models.EndpointClearMemory, nil)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return newAPIError(resp, models.EndpointClearMemory)
	}
	return nil
}

// newAPIError builds an APIError, preferring the backend's own message field
func newAPIError(resp *response, endpoint string) *apierrors.APIError {
	msg := ""
	if gjson.ValidBytes(resp.body) {
		for _, path := range []string{"message", "error"} {
			if v := gjson.GetBytes(resp.body, path); v.Exists() && v.String() != "" {
				msg = v.String()
				break
			}
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(resp.body))
	}
	if len(msg) > maxErrorSnippet {
		cut := maxErrorSnippet
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut] + "..."
	}
	if msg == "" {
		msg = http.StatusText(resp.status)
	}
	return apierrors.NewAPIError(resp.status, endpoint, msg)
}
