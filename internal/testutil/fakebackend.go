// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"todo/internal/service"
)

// FakeOwner is the owner id assigned to every task in FakeBackend.
const FakeOwner = "u1"

// FakeBackend is an in-memory implementation of service.Backend for testing.
type FakeBackend struct {
	mu     sync.Mutex
	tasks  []service.Task
	users  map[string]string // username -> password
	nextID int

	// Error injection for testing
	ListErr     error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error
	LoginErr    error
	RegisterErr error

	// Token is returned by Login. Defaults to "fake-token".
	Token string

	// Browser makes CredentialsRequired report false.
	Browser bool

	// Calls counts invocations per operation name.
	Calls map[string]int

	// LastFilter is the filter of the most recent ListTasks call.
	LastFilter service.Filter

	// LastPatch is the patch of the most recent UpdateTask call.
	LastPatch service.Patch
}

// NewFakeBackend creates an empty FakeBackend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		users:  make(map[string]string),
		nextID: 1,
		Calls:  make(map[string]int),
	}
}

// AddTask seeds a stored task. Missing priority/status get the defaults.
func (f *FakeBackend) AddTask(id, title string) service.Task {
	return f.Seed(service.Task{ID: id, Title: title})
}

// Seed stores t as-is apart from defaults for priority, status and owner.
func (f *FakeBackend) Seed(t service.Task) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.Priority == "" {
		t.Priority = service.PriorityMedium
	}
	if t.Status == "" {
		t.Status = service.StatusPending
	}
	if t.OwnerID == "" {
		t.OwnerID = FakeOwner
	}
	f.tasks = append(f.tasks, t.Clone())
	return t
}

// AddUser registers a user directly.
func (f *FakeBackend) AddUser(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[username] = password
}

// Stored returns a copy of all stored tasks in store order.
func (f *FakeBackend) Stored() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Task, len(f.tasks))
	for i, t := range f.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Remove deletes a stored task behind the client's back.
func (f *FakeBackend) Remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return
		}
	}
}

// CallCount returns the number of calls to op.
func (f *FakeBackend) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[op]
}

func (f *FakeBackend) record(op string) {
	f.Calls[op]++
}

// ListTasks implements service.Store.
func (f *FakeBackend) ListTasks(ctx context.Context, filter service.Filter) ([]service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list")
	f.LastFilter = filter
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	var out []service.Task
	for _, t := range f.tasks {
		if filter.Match(t) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

// CreateTask implements service.Store.
func (f *FakeBackend) CreateTask(ctx context.Context, d service.Draft) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create")
	if f.CreateErr != nil {
		return service.Task{}, f.CreateErr
	}

	t := service.Task{
		ID:          fmt.Sprintf("t%d", f.nextID),
		OwnerID:     FakeOwner,
		Title:       d.Title,
		Description: d.Description,
		Priority:    d.Priority,
		Status:      d.Status,
		Deadline:    d.Deadline,
		Tags:        append([]string(nil), d.Tags...),
	}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return t.Clone(), nil
}

// UpdateTask implements service.Store.
func (f *FakeBackend) UpdateTask(ctx context.Context, id string, p service.Patch) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update")
	f.LastPatch = p
	if f.UpdateErr != nil {
		return service.Task{}, f.UpdateErr
	}

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i] = p.Apply(t)
			return f.tasks[i].Clone(), nil
		}
	}
	return service.Task{}, &service.RemoteError{Kind: service.ErrNotFound, Status: 404}
}

// DeleteTask implements service.Store.
func (f *FakeBackend) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete")
	if f.DeleteErr != nil {
		return f.DeleteErr
	}

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &service.RemoteError{Kind: service.ErrNotFound, Status: 404}
}

// Login implements service.Authenticator.
func (f *FakeBackend) Login(ctx context.Context, creds service.Credentials) (*oauth2.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("login")
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	if !f.Browser {
		if pw, ok := f.users[creds.Username]; !ok || pw != creds.Password {
			return nil, &service.RemoteError{Kind: service.ErrAuth, Status: 401, Message: "Invalid username or password"}
		}
	}
	tok := f.Token
	if tok == "" {
		tok = "fake-token"
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

// Register implements service.Authenticator.
func (f *FakeBackend) Register(ctx context.Context, creds service.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("register")
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	if _, ok := f.users[creds.Username]; ok {
		return &service.RemoteError{Kind: service.ErrTransport, Status: 400, Message: "Username already exists"}
	}
	f.users[creds.Username] = creds.Password
	return nil
}

// CredentialsRequired implements service.Authenticator.
func (f *FakeBackend) CredentialsRequired() bool {
	return !f.Browser
}
