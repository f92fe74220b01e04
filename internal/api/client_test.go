package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

type stubTokens struct {
	token string
}

func (s *stubTokens) Load() (string, error) { return s.token, nil }

func newTestClient(t *testing.T, baseURL, origin string, tokens TokenStore) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL:   baseURL,
		AppOrigin: origin,
		Timeout:   5 * time.Second,
		Tokens:    tokens,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestBearerInjectionAndRequestID(t *testing.T) {
	var gotAuth, gotReqID string
	router := mux.NewRouter()
	router.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		fmt.Fprint(w, `{"id":"u1"}`)
	}).Methods(http.MethodGet)
	server := httptest.NewServer(router)
	defer server.Close()

	client := newTestClient(t, server.URL+"/api", "http://localhost", &stubTokens{token: "tok-123"})

	var out struct {
		ID string `json:"id"`
	}
	if err := client.Get(context.Background(), "/auth/me", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out.ID != "u1" {
		t.Errorf("decoded ID = %q, want u1", out.ID)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
	if gotReqID == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestNoTokenMeansNoAuthHeader(t *testing.T) {
	var sawAuth bool
	router := mux.NewRouter()
	router.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		fmt.Fprint(w, `{}`)
	})
	server := httptest.NewServer(router)
	defer server.Close()

	client := newTestClient(t, server.URL, "http://localhost", &stubTokens{})
	if err := client.Get(context.Background(), "/ping", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sawAuth {
		t.Error("Authorization header sent without a stored token")
	}
}

func TestSchemeRewrite(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/api/ok", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true}`)
	})
	server := httptest.NewServer(router)
	defer server.Close()

	// A https base address must be rewritten back to the http scheme the
	// API is actually served on.
	secureBase := "https://" + strings.TrimPrefix(server.URL, "http://") + "/api"
	client := newTestClient(t, secureBase, "https://app.example.com", nil)

	var out struct {
		OK bool `json:"ok"`
	}
	if err := client.Get(context.Background(), "/ok", &out); err != nil {
		t.Fatalf("Get through rewritten scheme: %v", err)
	}
	if !out.OK {
		t.Error("payload not decoded through rewritten scheme")
	}
}

func TestServerErrorNormalization(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/fail", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":"quota exhausted","code":"NO_FREE_GAMES"}`)
	})
	server := httptest.NewServer(router)
	defer server.Close()

	client := newTestClient(t, server.URL, "http://localhost", nil)

	err := client.Post(context.Background(), "/fail", map[string]string{"x": "y"}, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusForbidden {
		t.Errorf("Status = %d, want %d", apiErr.Status, http.StatusForbidden)
	}
	if apiErr.Message != "quota exhausted" {
		t.Errorf("Message = %q, want server-supplied message", apiErr.Message)
	}
	if apiErr.Code != "NO_FREE_GAMES" {
		t.Errorf("Code = %q, want NO_FREE_GAMES", apiErr.Code)
	}
}

func TestRedirectsAreNotFollowed(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	})
	server := httptest.NewServer(router)
	defer server.Close()

	client := newTestClient(t, server.URL, "http://localhost", nil)

	err := client.Get(context.Background(), "/moved", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusFound {
		t.Errorf("Status = %d, want %d (redirect surfaced, not followed)", apiErr.Status, http.StatusFound)
	}
}

// blockedTransport fails every request the way a client-side block does.
type blockedTransport struct {
	attempts int
}

func (b *blockedTransport) RoundTrip(*http.Request) (*http.Response, error) {
	b.attempts++
	return nil, errors.New("request blocked by client")
}

func TestBlockedTransportFallsBackOnce(t *testing.T) {
	var (
		serverHits int
		gotAuth    string
		gotCache   string
	)
	router := mux.NewRouter()
	router.HandleFunc("/game/start", func(w http.ResponseWriter, r *http.Request) {
		serverHits++
		gotAuth = r.Header.Get("Authorization")
		gotCache = r.Header.Get("Cache-Control")
		fmt.Fprint(w, `{"success":true,"sessionId":"s1"}`)
	}).Methods(http.MethodPost)
	server := httptest.NewServer(router)
	defer server.Close()

	client := newTestClient(t, server.URL, "https://app.example.com", &stubTokens{token: "tok-9"})

	blocked := &blockedTransport{}
	client.primary.Transport = blocked

	var out struct {
		Success   bool   `json:"success"`
		SessionID string `json:"sessionId"`
	}
	err := client.Post(context.Background(), "/game/start", map[string]string{"gameType": "MEMORY_FLASH"}, &out)
	if err != nil {
		t.Fatalf("Post with fallback: %v", err)
	}

	if blocked.attempts != 1 {
		t.Errorf("primary attempts = %d, want 1", blocked.attempts)
	}
	if serverHits != 1 {
		t.Errorf("fallback attempts = %d, want exactly 1", serverHits)
	}
	if !out.Success || out.SessionID != "s1" {
		t.Errorf("payload not delivered transparently: %+v", out)
	}
	if gotAuth != "Bearer tok-9" {
		t.Errorf("fallback Authorization = %q, want bearer re-attached", gotAuth)
	}
	if gotCache != "no-cache" {
		t.Errorf("fallback Cache-Control = %q, want no-cache", gotCache)
	}
}

func TestFallbackFailureSurfacesMixedContentCode(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1", "https://app.example.com", nil)

	blocked := &blockedTransport{}
	client.primary.Transport = blocked
	client.fallback.Transport = blocked

	err := client.Get(context.Background(), "/anything", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Code != CodeMixedContentBlocked {
		t.Errorf("Code = %q, want %s", apiErr.Code, CodeMixedContentBlocked)
	}
	if apiErr.Status != 0 {
		t.Errorf("Status = %d, want 0 when no response received", apiErr.Status)
	}
	// Exactly one fallback retry, no further attempts.
	if blocked.attempts != 2 {
		t.Errorf("total attempts = %d, want 2 (primary + one fallback)", blocked.attempts)
	}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestBlockedClassification(t *testing.T) {
	secure := &Client{secureOrigin: true}
	insecure := &Client{secureOrigin: false}

	cases := []struct {
		name   string
		client *Client
		err    error
		want   bool
	}{
		{"nil", secure, nil, false},
		{"blocked message", insecure, errors.New("net::ERR_BLOCKED_BY_CLIENT"), true},
		{"mixed content message", insecure, errors.New("Mixed Content: request blocked"), true},
		{"network layer", insecure, &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"timeout is generic", secure, &url.Error{Op: "Get", URL: "http://x", Err: timeoutError{}}, false},
		{"no response on secure origin", secure, &url.Error{Op: "Get", URL: "http://x", Err: errors.New("EOF")}, true},
		{"no response on insecure origin", insecure, &url.Error{Op: "Get", URL: "http://x", Err: errors.New("EOF")}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.client.isBlockedTransport(tc.err); got != tc.want {
				t.Errorf("isBlockedTransport(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestNoResponseIsStatusZero(t *testing.T) {
	// Nothing listens here; the origin is insecure so no fallback fires.
	client := newTestClient(t, "http://127.0.0.1:1", "http://localhost", nil)
	client.primary.Transport = roundTripperFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("no route to host boom")
	})

	err := client.Get(context.Background(), "/x", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != 0 {
		t.Errorf("Status = %d, want 0", apiErr.Status)
	}
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
