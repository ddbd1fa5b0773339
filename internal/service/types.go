// Package service defines the backend-agnostic task model and interfaces.
package service

import (
	"slices"
	"strings"
	"time"
)

// DateLayout is the canonical deadline format (ISO-8601 calendar date).
const DateLayout = "2006-01-02"

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Status is the progress state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Task represents one user-owned to-do item.
type Task struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"userId,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	Deadline    string   `json:"deadline,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Due returns the deadline as a date. ok is false when no deadline is set
// or it cannot be parsed. Timestamps are truncated to their date part.
func (t Task) Due() (time.Time, bool) {
	d := strings.TrimSpace(t.Deadline)
	if len(d) < len(DateLayout) {
		return time.Time{}, false
	}
	due, err := time.Parse(DateLayout, d[:len(DateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}

// Clone returns a copy of t that shares no slices with it.
func (t Task) Clone() Task {
	if t.Tags != nil {
		t.Tags = append([]string(nil), t.Tags...)
	}
	return t
}

// Draft is a task that has not been stored yet (no id, no owner).
type Draft struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority" validate:"oneof=low medium high"`
	Status      Status   `json:"status" validate:"oneof=pending in-progress completed"`
	Deadline    string   `json:"deadline,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Tags        []string `json:"tags,omitempty" validate:"dive,required"`
}

// Patch is a partial set of task fields. Nil fields are left unchanged.
type Patch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Deadline    *string   `json:"deadline,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Status == nil && p.Deadline == nil && p.Tags == nil
}

// Apply returns t with every non-nil field of p merged in.
func (p Patch) Apply(t Task) Task {
	t = t.Clone()
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Deadline != nil {
		t.Deadline = *p.Deadline
	}
	if p.Tags != nil {
		t.Tags = append([]string(nil), (*p.Tags)...)
	}
	return t
}

// Changes builds a patch with the fields of d that differ from t.
func Changes(t Task, d Draft) Patch {
	var p Patch
	if d.Title != t.Title {
		p.Title = &d.Title
	}
	if d.Description != t.Description {
		p.Description = &d.Description
	}
	if d.Priority != t.Priority {
		p.Priority = &d.Priority
	}
	if d.Status != t.Status {
		p.Status = &d.Status
	}
	if d.Deadline != t.Deadline {
		p.Deadline = &d.Deadline
	}
	if !slices.Equal(d.Tags, t.Tags) {
		tags := append([]string(nil), d.Tags...)
		p.Tags = &tags
	}
	return p
}

// DraftOf returns the editable fields of t as a draft.
func DraftOf(t Task) Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		Deadline:    t.Deadline,
		Tags:        append([]string(nil), t.Tags...),
	}
}

// Filter selects tasks on the remote store. Empty fields are not applied.
type Filter struct {
	Priority Priority
	Status   Status
	Search   string // substring of title or description
	Tag      string
}

// IsZero reports whether no criteria are set.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Match reports whether t satisfies every set criterion: exact priority
// and status, case-insensitive substring of title or description, exact tag.
func (f Filter) Match(t Task) bool {
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), q) && !strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	if f.Tag != "" && !slices.Contains(t.Tags, f.Tag) {
		return false
	}
	return true
}

// Credentials are a username/password pair for login and registration.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ParseTags splits comma separated input, trimming entries and dropping
// empty ones. Order and duplicates are kept.
func ParseTags(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
