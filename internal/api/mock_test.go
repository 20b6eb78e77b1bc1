package api

import (
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/bogdanfinn/tls-client/bandwidth"
)

// mockRoute is the canned answer for one "METHOD /path"
type mockRoute struct {
	status int
	body   string
	err    error
}

// recordedRequest is what the mock saw
type recordedRequest struct {
	Method string
	Path   string
	Body   []byte
	Header fhttp.Header
	HasDL  bool
}

// MockHttpClient is a routing mock implementation of tls_client.HttpClient for testing
type MockHttpClient struct {
	mu       sync.Mutex
	routes   map[string]mockRoute
	requests []recordedRequest
}

// newMockHttpClient creates an empty routing mock
func newMockHttpClient() *MockHttpClient {
	return &MockHttpClient{routes: make(map[string]mockRoute)}
}

// on registers a canned response
func (m *MockHttpClient) on(method, path string, status int, body string) *MockHttpClient {
	m.routes[method+" "+path] = mockRoute{status: status, body: body}
	return m
}

// fail registers a transport error
func (m *MockHttpClient) fail(method, path string, err error) *MockHttpClient {
	m.routes[method+" "+path] = mockRoute{err: err}
	return m
}

// calls returns a copy of the recorded requests
func (m *MockHttpClient) calls() []recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]recordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Do implements the tls_client.HttpClient interface
func (m *MockHttpClient) Do(req *fhttp.Request) (*fhttp.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	_, hasDeadline := req.Context().Deadline()

	m.mu.Lock()
	m.requests = append(m.requests, recordedRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		Body:   body,
		Header: req.Header.Clone(),
		HasDL:  hasDeadline,
	})
	route, ok := m.routes[req.Method+" "+req.URL.Path]
	m.mu.Unlock()

	if !ok {
		route = mockRoute{status: 404, body: `{"error":"not found"}`}
	}
	if route.err != nil {
		return nil, route.err
	}
	return &fhttp.Response{
		StatusCode: route.status,
		Body:       io.NopCloser(strings.NewReader(route.body)),
		Header:     make(fhttp.Header),
	}, nil
}

// GetCookies implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetCookies(u *url.URL) []*fhttp.Cookie {
	return nil
}

// SetCookies implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetCookies(u *url.URL, cookies []*fhttp.Cookie) {}

// SetCookieJar implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetCookieJar(jar fhttp.CookieJar) {}

// GetCookieJar implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetCookieJar() fhttp.CookieJar {
	return nil
}

// SetProxy implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetProxy(proxyUrl string) error {
	return nil
}

// GetProxy implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetProxy() string {
	return ""
}

// SetFollowRedirect implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetFollowRedirect(followRedirect bool) {}

// GetFollowRedirect implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetFollowRedirect() bool {
	return false
}

// CloseIdleConnections implements the tls_client.HttpClient interface
func (m *MockHttpClient) CloseIdleConnections() {}

// Get implements the tls_client.HttpClient interface
func (m *MockHttpClient) Get(url string) (*fhttp.Response, error) {
	return nil, errors.New("not supported by mock")
}

// Head implements the tls_client.HttpClient interface
func (m *MockHttpClient) Head(url string) (*fhttp.Response, error) {
	return nil, errors.New("not supported by mock")
}

// Post implements the tls_client.HttpClient interface
func (m *MockHttpClient) Post(url, contentType string, body io.Reader) (*fhttp.Response, error) {
	return nil, errors.New("not supported by mock")
}

// GetBandwidthTracker implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetBandwidthTracker() bandwidth.BandwidthTracker {
	return nil
}
