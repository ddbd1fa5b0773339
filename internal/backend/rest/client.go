// Package rest implements service.Backend over the todo REST API.
//
// Endpoints, relative to the configured base URL:
//
//	POST   /register    {"username","password"}
//	POST   /login       {"username","password"} -> {"token"}
//	GET    /todos       ?priority=&status=&search=&tags=
//	POST   /todos       task fields -> task
//	PUT    /todos/{id}  partial task fields -> task
//	DELETE /todos/{id}
//
// Failures carry {"error": message} bodies.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"todo/internal/service"
)

// DefaultTimeout bounds each API call when Options.Timeout is zero.
const DefaultTimeout = 5 * time.Second

// maxErrorBody limits how much of a failure response is read.
const maxErrorBody = 4 << 10

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. http://localhost:3001/api.
	BaseURL string

	// Timeout bounds each call.
	Timeout time.Duration

	// Tokens supplies the bearer token for task requests.
	Tokens oauth2.TokenSource

	// Transport is the underlying round tripper. Defaults to
	// http.DefaultTransport.
	Transport http.RoundTripper
}

// Client talks to the todo REST API.
type Client struct {
	baseURL string
	timeout time.Duration
	authed  *http.Client // task endpoints, bearer token attached
	anon    *http.Client // login and register
}

var _ service.Backend = (*Client)(nil)

// New creates a Client.
func New(opts Options) *Client {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// The session is used as the source directly so a token replaced by a
	// later login is picked up on the next request.
	authed := &http.Client{Transport: &oauth2.Transport{Source: opts.Tokens, Base: base}}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		timeout: timeout,
		authed:  authed,
		anon:    &http.Client{Transport: base},
	}
}

// ListTasks implements service.Store.
func (c *Client) ListTasks(ctx context.Context, f service.Filter) ([]service.Task, error) {
	q := url.Values{}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Tag != "" {
		q.Set("tags", f.Tag)
	}

	var tasks []service.Task
	if err := c.do(ctx, c.authed, http.MethodGet, "/todos", q, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask implements service.Store.
func (c *Client) CreateTask(ctx context.Context, d service.Draft) (service.Task, error) {
	var t service.Task
	if err := c.do(ctx, c.authed, http.MethodPost, "/todos", nil, d, &t); err != nil {
		return service.Task{}, err
	}
	return t, nil
}

// UpdateTask implements service.Store.
func (c *Client) UpdateTask(ctx context.Context, id string, p service.Patch) (service.Task, error) {
	var t service.Task
	if err := c.do(ctx, c.authed, http.MethodPut, "/todos/"+url.PathEscape(id), nil, p, &t); err != nil {
		return service.Task{}, err
	}
	return t, nil
}

// DeleteTask implements service.Store.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, c.authed, http.MethodDelete, "/todos/"+url.PathEscape(id), nil, nil, nil)
}

// Login implements service.Authenticator.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (*oauth2.Token, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, c.anon, http.MethodPost, "/login", nil, creds, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &service.RemoteError{Kind: service.ErrAuth, Message: "no token in login response"}
	}
	return &oauth2.Token{AccessToken: resp.Token, TokenType: "Bearer"}, nil
}

// Register implements service.Authenticator.
func (c *Client) Register(ctx context.Context, creds service.Credentials) error {
	return c.do(ctx, c.anon, http.MethodPost, "/register", nil, creds, nil)
}

// CredentialsRequired implements service.Authenticator.
func (c *Client) CredentialsRequired() bool { return true }

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return &service.RemoteError{Kind: service.ErrTransport, Message: err.Error()}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := hc.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &service.RemoteError{
			Kind:    service.ErrTransport,
			Status:  resp.StatusCode,
			Message: "invalid response: " + err.Error(),
		}
	}
	return nil
}

// transportError classifies a failure to get any response. A missing or
// expired session token surfaces here through the oauth2 transport.
func transportError(err error) error {
	if errors.Is(err, service.ErrAuth) {
		return err
	}
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "request timed out"
	}
	return &service.RemoteError{Kind: service.ErrTransport, Message: msg}
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := ""
	if json.Unmarshal(data, &body) == nil {
		msg = body.Error
		if msg == "" {
			msg = body.Message
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(data))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	kind := service.ErrTransport
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = service.ErrAuth
	case http.StatusNotFound:
		kind = service.ErrNotFound
	}
	return &service.RemoteError{Kind: kind, Status: resp.StatusCode, Message: msg}
}
