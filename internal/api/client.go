package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RunjeethNikam/braintrain/internal/logging"
)

// CodeMixedContentBlocked marks errors from the blocked-transport path.
const CodeMixedContentBlocked = "MIXED_CONTENT_BLOCKED"

// TokenStore is the durable token slot the client reads on every request.
type TokenStore interface {
	Load() (string, error)
}

// APIError is the normalized error every caller sees. Status is 0 when no
// response was received.
type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error (%d): %s [%s]", e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Message)
}

// Config carries the fixed client configuration resolved once at startup.
type Config struct {
	// BaseURL is the backend base address. A https scheme here is rewritten
	// to http: the API is served over plain http and secure-scheme targets
	// only arise from misconfiguration.
	BaseURL string

	// AppOrigin is the origin this client presents as. A https origin arms
	// the blocked-transport heuristic for requests that produced no response.
	AppOrigin string

	Timeout time.Duration

	Tokens TokenStore

	Logger *logging.Logger
}

// Client is the uniform request path for every backend call.
type Client struct {
	baseURL      string
	secureOrigin bool
	tokens       TokenStore
	log          *logging.Logger

	primary  *http.Client
	fallback *http.Client
}

// NewClient creates a new API client
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api: base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	secureOrigin := false
	if origin, err := url.Parse(cfg.AppOrigin); err == nil {
		secureOrigin = origin.Scheme == "https"
	}

	// Redirects are not followed and no cookie jar is installed: both are
	// incompatible with the insecure-transport fallback path.
	noRedirect := func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Client{
		baseURL:      rewriteInsecure(strings.TrimRight(cfg.BaseURL, "/")),
		secureOrigin: secureOrigin,
		tokens:       cfg.Tokens,
		log:          logger,
		primary: &http.Client{
			Timeout:       timeout,
			CheckRedirect: noRedirect,
		},
		fallback: &http.Client{
			Timeout:       timeout,
			CheckRedirect: noRedirect,
			Transport: &http.Transport{
				Proxy:             http.ProxyFromEnvironment,
				DisableKeepAlives: true,
			},
		},
	}, nil
}

// rewriteInsecure downgrades an accidentally-secure target back to the
// insecure scheme actually serving the API.
func rewriteInsecure(target string) string {
	if strings.HasPrefix(target, "https://") {
		return "http://" + strings.TrimPrefix(target, "https://")
	}
	return target
}

// Get makes a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post makes a POST request and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put makes a PUT request and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete makes a DELETE request and decodes the response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &APIError{Message: fmt.Sprintf("failed to encode request body: %v", err), Status: 0}
		}
	}

	target := rewriteInsecure(c.baseURL + path)

	resp, err := c.send(ctx, c.primary, method, target, payload, false)
	if err != nil {
		if !c.isBlockedTransport(err) {
			return &APIError{Message: "Network error - please check your connection", Status: 0}
		}

		// One retry through the fallback transport. Its own failure is
		// surfaced as-is, no further fallback.
		c.log.Warnf("request blocked, retrying via fallback transport: %s %s", method, target)
		resp, err = c.send(ctx, c.fallback, method, target, payload, true)
		if err != nil {
			return &APIError{
				Message: fmt.Sprintf("Request blocked and fallback transport failed: %v", err),
				Status:  0,
				Code:    CodeMixedContentBlocked,
			}
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Message: "failed to read response body", Status: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return serverError(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &APIError{Message: "failed to decode server response", Status: resp.StatusCode}
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, hc *http.Client, method, target string, payload []byte, noCache bool) (*http.Response, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, err
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if noCache {
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
	}

	// Attach the bearer credential whenever a token exists in durable storage.
	if c.tokens != nil {
		if token, err := c.tokens.Load(); err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return hc.Do(req)
}

// isBlockedTransport classifies a transport failure as the blocked/insecure
// condition that warrants the fallback retry. The match set is heuristic;
// anything else counts as a generic network failure.
func (c *Client) isBlockedTransport(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "blocked") || strings.Contains(msg, "mixed content") ||
		strings.Contains(msg, "err_blocked_by_client") || strings.Contains(msg, "err_network") {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		// Timeouts are generic failures, never the blocked condition.
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	// No response at all while the app origin is on the secure scheme.
	if c.secureOrigin {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return true
		}
	}

	return false
}

// serverError maps a non-success response body to the normalized error,
// preferring server-supplied message and code fields.
func serverError(status int, raw []byte) *APIError {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	_ = json.Unmarshal(raw, &body)

	message := body.Error
	if message == "" {
		message = body.Message
	}
	if message == "" {
		message = "Server error occurred"
	}

	return &APIError{Message: message, Status: status, Code: body.Code}
}
