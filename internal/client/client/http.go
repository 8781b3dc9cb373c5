package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scubelic/llmwatcher/internal/buildinfo"
	"github.com/scubelic/llmwatcher/internal/common"
	"github.com/scubelic/llmwatcher/internal/logging"
)

const maxErrorBody = 64 << 10

// HTTPClient implements Client against the backend's JSON/form API.
// It keeps no per-user state; tokens are passed in on every call.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	logger  logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient validates baseURL and returns a client whose requests time
// out after timeout. Redirects are not followed.
func NewHTTPClient(baseURL string, timeout time.Duration, logger logging.Logger) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: missing host", baseURL)
	}

	hc := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   5 * time.Second,
			ResponseHeaderTimeout: timeout,
			MaxIdleConns:          4,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &HTTPClient{baseURL: u, http: hc, logger: logger.With("component", "backend")}, nil
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) error {
	body, err := json.Marshal(registerRequest{Email: email, Password: password})
	if err != nil {
		return &Error{Kind: ErrValidation, Op: "register", Err: err}
	}
	return c.do(ctx, "register", http.MethodPost, "/register", "application/json", bytes.NewReader(body), "", nil)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*Token, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var tok Token
	err := c.do(ctx, "login", http.MethodPost, "/token", "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()), "", &tok)
	if err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, &Error{Kind: ErrServer, Op: "login", Detail: "server returned an empty access token"}
	}
	return &tok, nil
}

func (c *HTTPClient) GetCurrentUser(ctx context.Context, token string) (*User, error) {
	var u User
	if err := c.do(ctx, "get current user", http.MethodGet, "/users/me", "", nil, token, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) StoreAPIKeys(ctx context.Context, token string, keys APIKeys) error {
	body, err := json.Marshal(keys)
	if err != nil {
		return &Error{Kind: ErrValidation, Op: "store api keys", Err: err}
	}
	return c.do(ctx, "store api keys", http.MethodPost, "/users/me/api_keys", "application/json", bytes.NewReader(body), token, nil)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, "/", "", nil, "", nil)
}

// do performs one request. A non-nil out receives the decoded 2xx body.
func (c *HTTPClient) do(ctx context.Context, op, method, path, contentType string, body io.Reader, token string, out any) error {
	endpoint := c.baseURL.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return &Error{Kind: ErrUnavailable, Op: op, Err: err}
	}

	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "llmwatcher-cli/"+buildinfo.Version)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	}

	log := c.logger.With("op", op, "method", method, "path", path, "request_id", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn(ctx, "request failed", "error", err, "duration", time.Since(start))
		return &Error{Kind: ErrUnavailable, Op: op, Err: err}
	}
	defer resp.Body.Close()

	log.Debug(ctx, "request completed", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := mapStatus(op, resp)
		log.Warn(ctx, "backend rejected request", "status", resp.StatusCode, "kind", apiErr.Kind)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: ErrServer, Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func mapStatus(op string, resp *http.Response) *Error {
	e := &Error{Op: op, Status: resp.StatusCode, Detail: readDetail(resp.Body)}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		e.Kind = ErrUnauthorized
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		e.Kind = ErrValidation
	default:
		e.Kind = ErrServer
	}
	return e
}

// readDetail extracts FastAPI's {"detail": ...}. A list of validation
// issues yields the first message.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var er errorResponse
	if err := json.Unmarshal(data, &er); err != nil {
		return ""
	}

	switch d := er.Detail.(type) {
	case string:
		return d
	case []any:
		if len(d) == 0 {
			return ""
		}
		if item, ok := d[0].(map[string]any); ok {
			if msg, ok := item["msg"].(string); ok {
				return msg
			}
		}
	}
	return ""
}
