// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"todo/internal/service"
)

// FormatTask formats a task line for the list.
// Format: "{N:>4}  {TITLE}  [{PRIORITY}] {STATUS}[  due {DATE}][  #{TAG}...]\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	var b strings.Builder
	fmt.Fprintf(&b, "%4d  %s  [%s] %s", num, normalizeTitle(task.Title), task.Priority, task.Status)
	if due, ok := task.Due(); ok {
		fmt.Fprintf(&b, "  due %s", due.Format(service.DateLayout))
	}
	if len(task.Tags) > 0 {
		b.WriteString(" ")
		for _, tag := range task.Tags {
			b.WriteString(" #")
			b.WriteString(tag)
		}
	}
	b.WriteString("\n")
	io.WriteString(w, b.String())
}

// FormatList formats the collection with 1-based positions. An empty
// collection prints "no tasks", noting the filter when one is set.
func FormatList(w io.Writer, tasks []service.Task, f service.Filter) {
	if len(tasks) == 0 {
		if f.IsZero() {
			fmt.Fprintln(w, "no tasks")
		} else {
			fmt.Fprintf(w, "no tasks match %s\n", DescribeFilter(f))
		}
		return
	}
	for i, t := range tasks {
		FormatTask(w, i+1, t)
	}
}

// FormatDetail formats every field of a task, one per line.
func FormatDetail(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "id:          %s\n", task.ID)
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(task.Title))
	if task.Description != "" {
		fmt.Fprintf(w, "description: %s\n", strings.ReplaceAll(task.Description, "\n", "\n             "))
	}
	fmt.Fprintf(w, "priority:    %s\n", task.Priority)
	fmt.Fprintf(w, "status:      %s\n", task.Status)
	if task.Deadline != "" {
		fmt.Fprintf(w, "deadline:    %s\n", task.Deadline)
	}
	if len(task.Tags) > 0 {
		fmt.Fprintf(w, "tags:        %s\n", strings.Join(task.Tags, ", "))
	}
}

// DescribeFilter renders the set criteria as "key=value" pairs.
func DescribeFilter(f service.Filter) string {
	var parts []string
	if f.Priority != "" {
		parts = append(parts, "priority="+string(f.Priority))
	}
	if f.Status != "" {
		parts = append(parts, "status="+string(f.Status))
	}
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search=%q", f.Search))
	}
	if f.Tag != "" {
		parts = append(parts, "tag="+f.Tag)
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, " ")
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatFieldErrors writes one "  field: code" line per failed field.
func FormatFieldErrors(w io.Writer, ve *service.ValidationError) {
	for _, fe := range ve.Fields {
		fmt.Fprintf(w, "  %s\n", fe)
	}
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
