package googletasks

import (
	"net/url"
	"strings"

	tasks "google.golang.org/api/tasks/v1"

	"todo/internal/service"
)

// metaPrefix starts the last line of the notes that carries the fields
// Google Tasks has no place for.
const metaPrefix = "todo:"

// Google Tasks status values.
const (
	statusNeedsAction = "needsAction"
	statusCompleted   = "completed"
)

// meta holds the task fields stored in the notes trailer.
type meta struct {
	Priority service.Priority
	Status   service.Status // only in-progress is stored here
	Tags     []string
}

// encodeNotes appends the metadata trailer to the description.
func encodeNotes(description string, m meta) string {
	q := url.Values{}
	if m.Priority != "" {
		q.Set("priority", string(m.Priority))
	}
	if m.Status == service.StatusInProgress {
		q.Set("status", string(m.Status))
	}
	if len(m.Tags) > 0 {
		q.Set("tags", strings.Join(m.Tags, ","))
	}
	description = strings.TrimRight(description, "\n")
	if len(q) == 0 {
		return description
	}
	trailer := metaPrefix + q.Encode()
	if description == "" {
		return trailer
	}
	return description + "\n\n" + trailer
}

// decodeNotes splits notes into the description and the metadata trailer.
// Notes without a trailer are all description.
func decodeNotes(notes string) (string, meta) {
	var m meta
	body, last := "", notes
	if i := strings.LastIndex(notes, "\n"); i >= 0 {
		body, last = notes[:i], notes[i+1:]
	}
	if !strings.HasPrefix(last, metaPrefix) {
		return notes, m
	}
	q, err := url.ParseQuery(strings.TrimPrefix(last, metaPrefix))
	if err != nil {
		return notes, m
	}
	m.Priority = service.Priority(q.Get("priority"))
	m.Status = service.Status(q.Get("status"))
	m.Tags = service.ParseTags(q.Get("tags"))
	return strings.TrimRight(body, "\n"), m
}

// fromAPI converts a Google task into the task model.
func fromAPI(t *tasks.Task) service.Task {
	desc, m := decodeNotes(t.Notes)

	status := service.StatusPending
	switch {
	case t.Status == statusCompleted:
		status = service.StatusCompleted
	case m.Status == service.StatusInProgress:
		status = service.StatusInProgress
	}
	priority := m.Priority
	if priority == "" {
		priority = service.PriorityMedium
	}

	deadline := ""
	if len(t.Due) >= len(service.DateLayout) {
		deadline = t.Due[:len(service.DateLayout)]
	}

	return service.Task{
		ID:          t.Id,
		Title:       t.Title,
		Description: desc,
		Priority:    priority,
		Status:      status,
		Deadline:    deadline,
		Tags:        m.Tags,
	}
}

// toAPI converts a task into the fields sent to Google. Clearing the
// deadline or reopening a completed task needs explicit nulls.
func toAPI(t service.Task) *tasks.Task {
	out := &tasks.Task{
		Title:  t.Title,
		Notes:  encodeNotes(t.Description, meta{Priority: t.Priority, Status: t.Status, Tags: t.Tags}),
		Status: statusNeedsAction,
	}
	if t.Status == service.StatusCompleted {
		out.Status = statusCompleted
	} else {
		out.NullFields = append(out.NullFields, "Completed")
	}
	if t.Deadline != "" {
		out.Due = t.Deadline + "T00:00:00.000Z"
	} else {
		out.NullFields = append(out.NullFields, "Due")
	}
	if out.Notes == "" {
		out.NullFields = append(out.NullFields, "Notes")
	}
	return out
}
