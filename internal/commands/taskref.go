package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"todo/internal/service"
	"todo/internal/tasklist"
)

// TaskRef is a parsed task reference: a task id, or a 1-based position in
// the listed collection.
type TaskRef struct {
	Raw      string
	Position int // 0 if Raw is not all digits
}

var (
	// ErrTaskRefRequired indicates no task reference was provided.
	ErrTaskRefRequired = errors.New("task reference required")

	// ErrRefOutOfRange indicates a position past the end of the collection.
	ErrRefOutOfRange = errors.New("task number out of range")
)

// ParseTaskRef parses the task reference in the first argument.
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	raw := strings.TrimPrefix(strings.TrimSpace(args[0]), "#")
	if raw == "" {
		return TaskRef{}, ErrTaskRefRequired
	}

	ref := TaskRef{Raw: raw}
	if isAllDigits(raw) {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return TaskRef{}, fmt.Errorf("%w: %s", ErrRefOutOfRange, raw)
		}
		ref.Position = n
	}
	return ref, nil
}

// Resolve finds the referenced task in the collection, loading it first if
// needed. An exact id match wins over a position.
func (r TaskRef) Resolve(ctx context.Context, tasks *tasklist.Controller) (service.Task, error) {
	if err := tasks.EnsureLoaded(ctx); err != nil {
		return service.Task{}, err
	}
	if t, ok := tasks.Get(r.Raw); ok {
		return t, nil
	}
	if r.Position == 0 {
		return service.Task{}, fmt.Errorf("%w: %s", tasklist.ErrUnknownTask, r.Raw)
	}
	list := tasks.Tasks()
	if r.Position > len(list) {
		return service.Task{}, fmt.Errorf("%w: %d", ErrRefOutOfRange, r.Position)
	}
	return list[r.Position-1], nil
}

// resolveArg parses and resolves the task reference in args[0].
func resolveArg(ctx context.Context, env *Env, args []string) (service.Task, error) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return service.Task{}, err
	}
	return ref.Resolve(ctx, env.Tasks)
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
