package service

import (
	"context"

	"golang.org/x/oauth2"
)

// Store is the remote task store. Task order in ListTasks results is the
// store's order and is kept by callers. Commands never import a backend
// directly; they go through this interface.
type Store interface {
	// ListTasks returns the tasks matching f.
	ListTasks(ctx context.Context, f Filter) ([]Task, error)

	// CreateTask stores d and returns the task with its assigned id.
	CreateTask(ctx context.Context, d Draft) (Task, error)

	// UpdateTask merges p into the task with the given id and returns the
	// stored result.
	UpdateTask(ctx context.Context, id string, p Patch) (Task, error)

	// DeleteTask removes the task with the given id.
	DeleteTask(ctx context.Context, id string) error
}

// Authenticator issues tokens for a backend.
type Authenticator interface {
	// Login exchanges credentials for a token.
	Login(ctx context.Context, creds Credentials) (*oauth2.Token, error)

	// Register creates an account. It does not log in.
	Register(ctx context.Context, creds Credentials) error

	// CredentialsRequired is false for backends that authenticate through
	// a browser flow and ignore the username/password.
	CredentialsRequired() bool
}

// Backend is a store together with the authenticator that issues its tokens.
type Backend interface {
	Store
	Authenticator
}
