// Package tasklist keeps the client's view of the task collection in sync
// with a remote store.
//
// A Controller owns the collection, the current filter and the edit state.
// Remote calls run without the lock held; results are applied one at a time
// under it. Loads carry a generation number and responses from a superseded
// load are discarded. Mutation results that arrive after a reset are dropped.
package tasklist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"todo/internal/service"
)

var (
	// ErrStale is returned by Load when a newer load was issued before the
	// response arrived. The collection is left to the newer load.
	ErrStale = errors.New("load superseded by a newer request")

	// ErrUnknownTask is returned when the id is not in the local collection.
	ErrUnknownTask = errors.New("unknown task")

	// ErrNotConfirmed is returned by Delete when the user declined.
	ErrNotConfirmed = errors.New("deletion not confirmed")
)

// Session is the authentication state the Controller depends on.
type Session interface {
	IsAuthenticated() bool

	// Expire transitions to unauthenticated after the store rejected the token.
	// The error reports a token file that could not be removed.
	Expire() error

	// OnLogout registers fn to run on every transition to unauthenticated.
	OnLogout(fn func())
}

// Controller maintains the in-memory task collection.
type Controller struct {
	store   service.Store
	session Session
	log     *log.Logger

	mu      sync.Mutex
	tasks   []service.Task
	filter  service.Filter
	gen     uint64 // latest issued load
	epoch   uint64 // bumped on every reset
	rev     uint64 // bumped on every change to tasks
	loaded  bool
	editing *service.Task
	dialog  bool
}

// New creates a Controller with an empty collection. The controller resets
// itself whenever sess logs out.
func New(store service.Store, sess Session, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c := &Controller{store: store, session: sess, log: logger}
	sess.OnLogout(c.Reset)
	return c
}

// Tasks returns a copy of the collection in display order.
func (c *Controller) Tasks() []service.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]service.Task, len(c.tasks))
	for i, t := range c.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Len returns the number of tasks in the collection.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tasks)
}

// Get returns the task with the given id.
func (c *Controller) Get(id string) (service.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(id); i >= 0 {
		return c.tasks[i].Clone(), true
	}
	return service.Task{}, false
}

// Filter returns the current filter criteria.
func (c *Controller) Filter() service.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Revision changes whenever the collection changes.
func (c *Controller) Revision() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rev
}

// Loaded reports whether a load has completed since the last reset.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Reset discards the collection and edit state and invalidates in-flight loads.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.epoch++
	c.rev++
	c.tasks = nil
	c.filter = service.Filter{}
	c.loaded = false
	c.editing = nil
	c.dialog = false
}

// Load replaces the collection with the tasks matching f, in store order.
// A response for a superseded load is dropped and ErrStale returned.
func (c *Controller) Load(ctx context.Context, f service.Filter) error {
	if err := c.requireAuth(); err != nil {
		return err
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.filter = f
	c.mu.Unlock()

	c.log.Debug("loading tasks", "gen", gen, "priority", f.Priority, "status", f.Status, "search", f.Search, "tag", f.Tag)
	tasks, err := c.store.ListTasks(ctx, f)
	if err != nil {
		if errors.Is(err, service.ErrAuth) {
			c.expire("load", err)
			return err
		}
		c.mu.Lock()
		current := gen == c.gen
		if current {
			c.replace(nil)
		}
		c.mu.Unlock()
		if !current {
			c.log.Debug("discarded stale load failure", "gen", gen, "err", err)
			return ErrStale
		}
		c.log.Error("failed to load tasks", "err", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.log.Debug("discarded stale load", "gen", gen, "latest", c.gen)
		return ErrStale
	}
	c.replace(c.dedupe(tasks))
	c.log.Debug("loaded tasks", "gen", gen, "count", len(c.tasks))
	return nil
}

// EnsureLoaded loads with the current filter unless a load already completed.
func (c *Controller) EnsureLoaded(ctx context.Context) error {
	c.mu.Lock()
	loaded, f := c.loaded, c.filter
	c.mu.Unlock()
	if loaded {
		return nil
	}
	return c.Load(ctx, f)
}

// SetFilter replaces the filter criteria and reloads.
func (c *Controller) SetFilter(ctx context.Context, f service.Filter) error {
	return c.Load(ctx, f)
}

// Create validates d, stores it and appends the stored task.
func (c *Controller) Create(ctx context.Context, d service.Draft) (service.Task, error) {
	if err := c.requireAuth(); err != nil {
		return service.Task{}, err
	}
	d = service.NormalizeDraft(d)
	if err := service.ValidateDraft(d); err != nil {
		return service.Task{}, err
	}

	epoch := c.currentEpoch()
	t, err := c.store.CreateTask(ctx, d)
	if err != nil {
		return service.Task{}, c.fail("create", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkEpoch("create", epoch); err != nil {
		return service.Task{}, err
	}
	if i := c.index(t.ID); i >= 0 {
		c.tasks[i] = t.Clone()
	} else {
		c.tasks = append(c.tasks, t.Clone())
	}
	c.rev++
	c.log.Debug("created task", "task_id", t.ID)
	return t, nil
}

// Update merges p into the task with the given id. On success the task is
// replaced in place. When the store reports the task gone it is removed
// locally and the error returned.
func (c *Controller) Update(ctx context.Context, id string, p service.Patch) (service.Task, error) {
	if err := c.requireAuth(); err != nil {
		return service.Task{}, err
	}
	if _, ok := c.Get(id); !ok {
		return service.Task{}, fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	p = service.NormalizePatch(p)
	if err := service.ValidatePatch(p); err != nil {
		return service.Task{}, err
	}

	epoch := c.currentEpoch()
	t, err := c.store.UpdateTask(ctx, id, p)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.remove(id)
		}
		return service.Task{}, c.fail("update", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkEpoch("update", epoch); err != nil {
		return service.Task{}, err
	}
	if i := c.index(id); i >= 0 {
		c.tasks[i] = t.Clone()
		c.rev++
	}
	c.log.Debug("updated task", "task_id", id)
	return t, nil
}

// Delete removes the task with the given id after confirm approves it.
// A task the store no longer has counts as deleted.
func (c *Controller) Delete(ctx context.Context, id string, confirm func(service.Task) bool) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	t, ok := c.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	if confirm == nil || !confirm(t) {
		return ErrNotConfirmed
	}

	if err := c.store.DeleteTask(ctx, id); err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			return c.fail("delete", err)
		}
		c.log.Debug("task already deleted", "task_id", id)
	}
	c.remove(id)
	c.log.Debug("deleted task", "task_id", id)
	return nil
}

// Reorder moves the task fromID to the position of toID. Nothing is sent
// to the store. It is a no-op when the ids are equal or either is absent.
func (c *Controller) Reorder(fromID, toID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fromID == toID {
		return
	}
	from, to := c.index(fromID), c.index(toID)
	if from < 0 || to < 0 {
		return
	}
	c.tasks = move(c.tasks, from, to)
	c.rev++
}

// move removes s[from] and inserts it at index to of the shortened slice.
func move(s []service.Task, from, to int) []service.Task {
	t := s[from]
	out := make([]service.Task, 0, len(s))
	out = append(out, s[:from]...)
	out = append(out, s[from+1:]...)
	out = append(out[:to], append([]service.Task{t}, out[to:]...)...)
	return out
}

// BeginEdit makes the task with the given id the currently edited one and
// opens the dialog.
func (c *Controller) BeginEdit(id string) (service.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return service.Task{}, fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	t := c.tasks[i].Clone()
	c.editing = &t
	c.dialog = true
	return t.Clone(), nil
}

// Editing returns the currently edited task, if any.
func (c *Controller) Editing() (service.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == nil {
		return service.Task{}, false
	}
	return c.editing.Clone(), true
}

// DialogOpen reports whether the task form is open.
func (c *Controller) DialogOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialog
}

// OpenDialog opens an empty form for a new task.
func (c *Controller) OpenDialog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editing = nil
	c.dialog = true
}

// CancelEdit closes the form without changes.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editing = nil
	c.dialog = false
}

// Submit stores the form: it updates the edited task when one is set and
// creates a new task otherwise. An update sends only the fields that differ
// from the edited task. The form closes on success and stays open with its
// state intact on failure.
func (c *Controller) Submit(ctx context.Context, d service.Draft) (service.Task, error) {
	editing, ok := c.Editing()

	var (
		t   service.Task
		err error
	)
	if ok {
		p := service.Changes(editing, d)
		if p.IsEmpty() {
			c.CancelEdit()
			return editing, nil
		}
		t, err = c.Update(ctx, editing.ID, p)
	} else {
		t, err = c.Create(ctx, d)
	}
	if err != nil {
		return service.Task{}, err
	}

	c.CancelEdit()
	return t, nil
}

func (c *Controller) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// checkEpoch rejects a result that arrived after a reset or logout.
// Caller holds mu.
func (c *Controller) checkEpoch(op string, epoch uint64) error {
	if epoch == c.epoch && c.session.IsAuthenticated() {
		return nil
	}
	c.log.Debug("discarded result after logout", "op", op)
	return fmt.Errorf("%w: logged out before %s completed", service.ErrAuth, op)
}

func (c *Controller) requireAuth() error {
	if c.session.IsAuthenticated() {
		return nil
	}
	return fmt.Errorf("%w: not logged in", service.ErrAuth)
}

// fail logs a failed mutation and forces a logout for auth failures.
func (c *Controller) fail(op string, err error) error {
	if errors.Is(err, service.ErrAuth) {
		c.expire(op, err)
		return err
	}
	c.log.Debug("operation failed", "op", op, "err", err)
	return err
}

func (c *Controller) expire(op string, err error) {
	c.log.Warn("session rejected, logging out", "op", op, "err", err)
	if rmErr := c.session.Expire(); rmErr != nil {
		c.log.Warn("stale token left behind", "err", rmErr)
	}
}

// replace sets the collection and marks it loaded. Caller holds mu.
func (c *Controller) replace(tasks []service.Task) {
	c.tasks = tasks
	c.loaded = true
	c.rev++
}

// dedupe keeps the first task for every id. Caller holds mu.
func (c *Controller) dedupe(tasks []service.Task) []service.Task {
	seen := make(map[string]bool, len(tasks))
	out := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			c.log.Warn("store returned duplicate task id", "task_id", t.ID)
			continue
		}
		seen[t.ID] = true
		out = append(out, t.Clone())
	}
	return out
}

func (c *Controller) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(id); i >= 0 {
		c.tasks = append(c.tasks[:i:i], c.tasks[i+1:]...)
		c.rev++
		if c.editing != nil && c.editing.ID == id {
			c.editing = nil
			c.dialog = false
		}
	}
}

// index returns the position of id or -1. Caller holds mu.
func (c *Controller) index(id string) int {
	for i, t := range c.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
