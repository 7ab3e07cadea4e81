// Package testutil provides an in-process Riot API stand-in and match
// fixtures for tests.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockRiot is a configurable mock Riot API server for testing.
type MockRiot struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	paged    map[string]pagedRoute

	requests []*url.URL
}

type pagedRoute struct {
	param string
	pages map[string]MockResponse
}

// NewMockRiot creates a new mock server. Unknown paths answer 404 with a
// Riot-style status body.
func NewMockRiot() *MockRiot {
	mock := &MockRiot{
		handlers: make(map[string]http.HandlerFunc),
		paged:    make(map[string]pagedRoute),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests = append(mock.requests, r.URL)
		handler, hasHandler := mock.handlers[r.URL.Path]
		route, hasPages := mock.paged[r.URL.Path]
		mock.mu.Unlock()

		switch {
		case hasHandler:
			handler(w, r)
		case hasPages:
			resp, ok := route.pages[r.URL.Query().Get(route.param)]
			if !ok {
				resp = NewJSONResponse(`[]`)
			}
			writeResponse(w, resp)
		default:
			writeResponse(w, NewStatusResponse(http.StatusNotFound, "Data not found"))
		}
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockRiot) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockRiot) Close() {
	m.server.Close()
}

// SetHandler sets a custom handler for a specific path.
func (m *MockRiot) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockRiot) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, resp)
	})
}

// SetPages configures responses for a paginated path keyed by the value of
// a query parameter (e.g. "page" or "beginIndex"). Pages not listed answer
// with an empty JSON array.
func (m *MockRiot) SetPages(path, param string, pages map[string]MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paged[path] = pagedRoute{param: param, pages: pages}
}

// RequestCount returns the number of requests made to the server.
func (m *MockRiot) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// Requests returns the URLs of all requests received so far.
func (m *MockRiot) Requests() []*url.URL {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*url.URL, len(m.requests))
	copy(out, m.requests)
	return out
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewJSONResponse creates a 200 OK response with a JSON body.
func NewJSONResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json;charset=utf-8",
		},
	}
}

// NewStatusResponse creates an error response shaped like the Riot API's
// {"status": {"message": ..., "status_code": ...}} body.
func NewStatusResponse(code int, message string) MockResponse {
	return MockResponse{
		StatusCode: code,
		Body:       fmt.Sprintf(`{"status":{"message":%q,"status_code":%d}}`, message, code),
		Headers: map[string]string{
			"Content-Type": "application/json;charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	resp := NewStatusResponse(http.StatusTooManyRequests, "Rate limit exceeded")
	resp.Headers["Retry-After"] = "121"
	return resp
}
