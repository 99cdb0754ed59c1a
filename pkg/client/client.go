// Package client is the Go SDK for the IdentityHub API.
//
// It implements the client side of the session lifecycle: persisted
// access token and workspace selection, transparent single-flight token
// refresh on 401, and workspace context switching. The refresh token is
// held only in the HTTP cookie jar and never exposed.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrSessionExpired is returned when the refresh exchange is rejected.
// It is terminal for the session: the stored token and workspace
// selection are already cleared when a caller sees this error.
var ErrSessionExpired = errors.New("session expired: refresh rejected")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Options configures a Client.
type Options struct {
	// BaseURL of the IdentityHub server, e.g. "https://api.example.com".
	BaseURL string
	// Store persists the session across restarts. Defaults to an
	// in-memory store.
	Store SessionStore
	// OnSessionExpired is invoked exactly once per failed refresh,
	// after the session state has been cleared. The dashboard hooks
	// navigation to the login page here.
	OnSessionExpired func()
	// Timeout for individual requests. Defaults to 30s. A stuck
	// refresh call is bounded by the same timeout.
	Timeout time.Duration
}

// Client is an IdentityHub API client.
type Client struct {
	baseURL *url.URL
	httpc   *http.Client // interceptor chain: headers + refresh coordination
	bare    *http.Client // same cookie jar, no interceptors; used for the refresh call itself

	store SessionStore

	mu      sync.Mutex
	session Session

	refreshGroup     singleflight.Group
	onSessionExpired func()
}

// New creates a client and loads any persisted session from the store.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", opts.BaseURL)
	}

	store := opts.Store
	if store == nil {
		store = NewMemoryStore()
	}
	session, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	// The refresh cookie rides in the jar, shared between the
	// intercepted client and the bare one.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:          base,
		store:            store,
		session:          session,
		onSessionExpired: opts.OnSessionExpired,
	}
	c.bare = &http.Client{Jar: jar, Timeout: timeout}
	c.httpc = &http.Client{
		Jar:       jar,
		Timeout:   timeout,
		Transport: &transport{base: http.DefaultTransport, client: c},
	}
	return c, nil
}

// currentSession returns a snapshot of the session state.
func (c *Client) currentSession() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// CurrentWorkspace returns the active workspace ID, empty when none is
// selected. No selection is a valid state.
func (c *Client) CurrentWorkspace() string {
	return c.currentSession().WorkspaceID
}

// SwitchWorkspace selects the active workspace and persists the choice.
// This is cache-invalidation-by-restart: nothing from the previous
// workspace survives the switch, and every request issued afterwards
// carries the new header.
func (c *Client) SwitchWorkspace(workspaceID string) error {
	c.mu.Lock()
	c.session.WorkspaceID = workspaceID
	session := c.session
	c.mu.Unlock()
	return c.store.Save(session)
}

func (c *Client) setAccessToken(token string) error {
	c.mu.Lock()
	c.session.AccessToken = token
	session := c.session
	c.mu.Unlock()
	return c.store.Save(session)
}

// clearSession wipes the access token and workspace selection, in
// memory and in the store.
func (c *Client) clearSession() {
	c.mu.Lock()
	c.session = Session{}
	c.mu.Unlock()
	_ = c.store.Clear()
}

// refreshAccessToken exchanges the refresh cookie for a new access
// token. Concurrent callers coalesce onto one in-flight exchange; all
// receive the same token or the same failure. On failure the session
// is cleared and OnSessionExpired fires exactly once.
func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	v, err, _ := c.refreshGroup.Do("refresh", func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.String()+"/auth/refresh", nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.bare.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			c.clearSession()
			if c.onSessionExpired != nil {
				c.onSessionExpired()
			}
			return nil, ErrSessionExpired
		}

		var body struct {
			AccessToken string `json:"accessToken"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("decode refresh response: %w", err)
		}
		if err := c.setAccessToken(body.AccessToken); err != nil {
			return nil, err
		}
		return body.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// newRequest builds a JSON API request. Bodies built here are
// replayable by the refresh retry.
func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do executes a request and decodes the JSON response into out when
// out is non-nil. Non-2xx responses become *APIError.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		// The transport wraps refresh failures; unwrap the url.Error
		// shell so callers can match ErrSessionExpired directly.
		if errors.Is(err, ErrSessionExpired) {
			return ErrSessionExpired
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
			apiErr.Message = envelope.Error
			apiErr.Code = envelope.Code
		}
		return apiErr
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
