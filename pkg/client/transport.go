package client

import (
	"io"
	"net/http"
	"strings"
)

// WorkspaceHeader carries the active workspace ID on every request that
// has a workspace selected. It is omitted, never empty, when no
// workspace is selected.
const WorkspaceHeader = "X-Workspace-Id"

// authPaths are endpoints that must never trigger a refresh attempt:
// retrying them on 401 would loop.
var authPaths = []string{
	"/auth/login",
	"/auth/register",
	"/auth/refresh",
	"/auth/logout",
}

func isAuthPath(path string) bool {
	for _, p := range authPaths {
		if strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}

// transport decorates requests with the session headers and coordinates
// token refresh on 401 responses.
//
// The refresh itself is single-flight: concurrent 401s coalesce onto
// one in-flight refresh call and all retry with its result. Each
// request is retried at most once; the retry goes straight to the base
// transport, so a second 401 surfaces to the caller.
type transport struct {
	base   http.RoundTripper
	client *Client
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	session := t.client.currentSession()

	resp, err := t.base.RoundTrip(decorate(req, session))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || isAuthPath(req.URL.Path) {
		return resp, nil
	}

	// The response is replaced by the retry; release its connection.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	token, err := t.client.refreshAccessToken(req.Context())
	if err != nil {
		return nil, err
	}

	retry, err := cloneRequest(req)
	if err != nil {
		return nil, err
	}
	session.AccessToken = token
	return t.base.RoundTrip(decorate(retry, session))
}

// decorate attaches the bearer token and workspace header to a copy of
// the request. The original request headers are never mutated.
func decorate(req *http.Request, session Session) *http.Request {
	out := req.Clone(req.Context())
	if session.AccessToken != "" {
		out.Header.Set("Authorization", "Bearer "+session.AccessToken)
	}
	if session.WorkspaceID != "" {
		out.Header.Set(WorkspaceHeader, session.WorkspaceID)
	}
	return out
}

// cloneRequest produces a replayable copy of req, rewinding the body
// where possible.
func cloneRequest(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())
	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		out.Body = body
	}
	return out, nil
}
