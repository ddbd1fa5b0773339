// Package googletasks implements service.Backend on a Google Tasks list.
//
// Google Tasks has no priority, tags or in-progress state. Those fields are
// kept in a trailer line of the task notes, and filters are applied to the
// fetched tasks.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"todo/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// OAuth scope for Google Tasks
	tasksScope = "https://www.googleapis.com/auth/tasks"
)

// TokenStore holds the user's token. session.Session implements it.
type TokenStore interface {
	oauth2.TokenSource
	Save(tok *oauth2.Token) error
}

// Options configures a Client.
type Options struct {
	// ListID selects the task list. Defaults to DefaultListID.
	ListID string

	// Timeout bounds each API call. Defaults to APITimeout.
	Timeout time.Duration

	// OAuthClientPath is the oauth_client.json downloaded from the Google
	// Cloud console. A missing file disables login and token refresh.
	OAuthClientPath string

	// Tokens holds the session token.
	Tokens TokenStore

	// Out receives the login URL.
	Out io.Writer

	// Endpoint overrides the API base URL (for testing).
	Endpoint string

	// Transport overrides the underlying round tripper (for testing).
	Transport http.RoundTripper
}

// Client implements service.Backend using the Google Tasks API.
type Client struct {
	svc     *tasks.Service
	listID  string
	timeout time.Duration
	oauth   *oauth2.Config // nil without oauth_client.json
	tokens  TokenStore
	out     io.Writer

	mu sync.Mutex // serializes refreshes
}

var _ service.Backend = (*Client)(nil)

// New creates a Google Tasks client.
func New(ctx context.Context, opts Options) (*Client, error) {
	c := &Client{
		listID:  opts.ListID,
		timeout: opts.Timeout,
		tokens:  opts.Tokens,
		out:     opts.Out,
	}
	if c.listID == "" {
		c.listID = DefaultListID
	}
	if c.timeout <= 0 {
		c.timeout = APITimeout
	}
	if c.out == nil {
		c.out = io.Discard
	}

	if opts.OAuthClientPath != "" {
		clientJSON, err := os.ReadFile(opts.OAuthClientPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
		}
		if err == nil {
			c.oauth, err = google.ConfigFromJSON(clientJSON, tasksScope)
			if err != nil {
				return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
			}
		}
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	httpClient := &http.Client{Transport: &oauth2.Transport{Source: c, Base: base}}

	svcOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if opts.Endpoint != "" {
		svcOpts = append(svcOpts, option.WithEndpoint(opts.Endpoint))
	}
	svc, err := tasks.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	c.svc = svc
	return c, nil
}

// Token implements oauth2.TokenSource. An expired access token is
// refreshed through the OAuth client and the result saved to the session.
func (c *Client) Token() (*oauth2.Token, error) {
	tok, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}
	if tok.Valid() {
		return tok, nil
	}
	if c.oauth == nil {
		return nil, fmt.Errorf("%w: token expired and oauth_client.json is missing", service.ErrAuth)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	refreshed, err := c.oauth.TokenSource(ctx, tok).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: token refresh failed: %w", service.ErrAuth, err)
	}
	if err := c.tokens.Save(refreshed); err != nil {
		return nil, err
	}
	return refreshed, nil
}

// ListTasks implements service.Store. Tasks are returned in API order.
func (c *Client) ListTasks(ctx context.Context, f service.Filter) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	call := c.svc.Tasks.List(c.listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false)

	var result []service.Task
	err := call.Pages(ctx, func(resp *tasks.Tasks) error {
		for _, item := range resp.Items {
			if item.Deleted {
				continue
			}
			t := fromAPI(item)
			if f.Match(t) {
				result = append(result, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// CreateTask implements service.Store.
func (c *Client) CreateTask(ctx context.Context, d service.Draft) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body := toAPI(service.Task{
		Title:       d.Title,
		Description: d.Description,
		Priority:    d.Priority,
		Status:      d.Status,
		Deadline:    d.Deadline,
		Tags:        d.Tags,
	})
	body.NullFields = nil

	created, err := c.svc.Tasks.Insert(c.listID, body).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return fromAPI(created), nil
}

// UpdateTask implements service.Store. The stored task is fetched first so
// the notes trailer can be rebuilt with the merged fields.
func (c *Client) UpdateTask(ctx context.Context, id string, p service.Patch) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	current, err := c.svc.Tasks.Get(c.listID, id).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	merged := p.Apply(fromAPI(current))

	updated, err := c.svc.Tasks.Patch(c.listID, id, toAPI(merged)).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return fromAPI(updated), nil
}

// DeleteTask implements service.Store.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(c.listID, id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// Register implements service.Authenticator. Google accounts are created
// outside this client.
func (c *Client) Register(ctx context.Context, creds service.Credentials) error {
	return fmt.Errorf("%w: registration is not supported by the Google Tasks backend", service.ErrAuth)
}

// CredentialsRequired implements service.Authenticator.
func (c *Client) CredentialsRequired() bool { return false }

// wrapError classifies API errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, service.ErrAuth) {
		return err
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		kind := service.ErrTransport
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = service.ErrAuth
		case http.StatusNotFound:
			kind = service.ErrNotFound
		}
		msg := gerr.Message
		if msg == "" {
			msg = http.StatusText(gerr.Code)
		}
		return &service.RemoteError{Kind: kind, Status: gerr.Code, Message: msg}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &service.RemoteError{Kind: service.ErrTransport, Message: "request timed out"}
	}
	return &service.RemoteError{Kind: service.ErrTransport, Message: err.Error()}
}
