// Package api provides the neurochat backend client implementation.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apierrors "github.com/neuroai/neurochat/internal/errors"
	"github.com/neuroai/neurochat/internal/models"
)

// maxBodySize caps how much of a response body is read
const maxBodySize = 4 << 20

// maxErrorSnippet caps the body excerpt carried by an APIError
const maxErrorSnippet = 512

// BackendClientInterface is the set of backend operations used by the TUI and commands
type BackendClientInterface interface {
	Ping(ctx context.Context) (*models.PingResult, error)
	SendChat(ctx context.Context, text string) (string, error)
	FetchHistory(ctx context.Context) ([]models.Message, error)
	GetConfig(ctx context.Context) (*models.BackendConfig, error)
	SetConfig(ctx context.Context, update models.ConfigUpdate) (*models.BackendConfig, error)
	ClearHistory(ctx context.Context) error
	BaseURL() string
}

// BackendClient talks JSON over HTTP to the chat backend
type BackendClient struct {
	httpClient tls_client.HttpClient
	baseURL    string
	timeout    time.Duration
	logger     zerolog.Logger
}

// ClientOption is a function that configures the client
type ClientOption func(*BackendClient)

// WithBaseURL sets the backend address
func WithBaseURL(baseURL string) ClientOption {
	return func(c *BackendClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout bounds every request. Zero leaves requests unbounded.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *BackendClient) {
		c.timeout = timeout
	}
}

// WithHTTPClient injects the transport (used by tests)
func WithHTTPClient(httpClient tls_client.HttpClient) ClientOption {
	return func(c *BackendClient) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the request logger
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *BackendClient) {
		c.logger = logger
	}
}

// NewClient creates a new BackendClient
func NewClient(opts ...ClientOption) (*BackendClient, error) {
	client := &BackendClient{
		baseURL: models.DefaultBaseURL,
		logger:  zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	u, err := url.Parse(client.baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid backend URL %q", client.baseURL)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(timeoutSeconds(client.timeout)),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// timeoutSeconds rounds a positive timeout up to whole seconds
func timeoutSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// BaseURL returns the backend address
func (c *BackendClient) BaseURL() string {
	return c.baseURL
}

// GetHTTPClient returns the underlying HTTP client
func (c *BackendClient) GetHTTPClient() tls_client.HttpClient {
	return c.httpClient
}

// response is a fully read backend answer
type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// do performs one request. body, when non-nil, is sent as JSON.
func (c *BackendClient) do(ctx context.Context, method, endpoint string, body any) (*response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("method", method).
			Str("endpoint", endpoint).
			Str("request_id", requestID).
			Dur("elapsed", time.Since(start)).
			Msg("backend request failed")
		return nil, apierrors.NewNetworkError(operationName(endpoint), endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, apierrors.NewNetworkError(operationName(endpoint), endpoint, err)
	}

	event := c.logger.Debug()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		event = c.logger.Warn()
	}
	event.
		Str("method", method).
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend request")

	return &response{status: resp.StatusCode, body: data}, nil
}

// operationName maps an endpoint to the word used in error messages
func operationName(endpoint string) string {
	switch endpoint {
	case models.EndpointPing:
		return "ping"
	case models.EndpointChat:
		return "chat"
	case models.EndpointMemory:
		return "fetch history"
	case models.EndpointClearMemory:
		return "clear history"
	case models.EndpointConfig:
		return "config"
	default:
		return strings.TrimPrefix(endpoint, "/")
	}
}
