package output_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"todo/internal/output"
	"todo/internal/service"
	"todo/internal/testutil"
)

func sampleTasks() []service.Task {
	return []service.Task{
		{ID: "t1", Title: "Buy milk", Priority: service.PriorityMedium, Status: service.StatusPending, Deadline: "2024-05-01", Tags: []string{"home"}},
		{ID: "t2", Title: "Call\nmom", Priority: service.PriorityHigh, Status: service.StatusInProgress},
		{ID: "t3", Title: "  ", Priority: service.PriorityLow, Status: service.StatusCompleted, Tags: []string{"a", "b"}},
	}
}

func TestFormatList(t *testing.T) {
	var buf bytes.Buffer
	output.FormatList(&buf, sampleTasks(), service.Filter{})
	testutil.Golden(t, "list", buf.Bytes())
}

func TestFormatList_Empty(t *testing.T) {
	tests := []struct {
		name   string
		filter service.Filter
		want   string
	}{
		{"no filter", service.Filter{}, "no tasks\n"},
		{"filtered", service.Filter{Priority: service.PriorityHigh, Search: "milk"}, "no tasks match priority=high search=\"milk\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			output.FormatList(&buf, nil, tt.filter)
			if buf.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, buf.String())
			}
		})
	}
}

func TestFormatTask_TimestampDeadline(t *testing.T) {
	var buf bytes.Buffer
	output.FormatTask(&buf, 12, service.Task{Title: "Ship", Priority: service.PriorityHigh, Status: service.StatusPending, Deadline: "2024-05-01T00:00:00Z"})
	want := "  12  Ship  [high] pending  due 2024-05-01\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatDetail(t *testing.T) {
	var buf bytes.Buffer
	output.FormatDetail(&buf, service.Task{
		ID: "t9", Title: "Buy milk", Description: "two\nlitres",
		Priority: service.PriorityMedium, Status: service.StatusPending,
		Deadline: "2024-05-01", Tags: []string{"home", "errand"},
	})
	want := "id:          t9\n" +
		"title:       Buy milk\n" +
		"description: two\n" +
		"             litres\n" +
		"priority:    medium\n" +
		"status:      pending\n" +
		"deadline:    2024-05-01\n" +
		"tags:        home, errand\n"
	if buf.String() != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := output.WriteJSON(&buf, sampleTasks()[:1]); err != nil {
		t.Fatal(err)
	}
	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if got[0]["id"] != "t1" || got[0]["deadline"] != "2024-05-01" {
		t.Errorf("unexpected JSON: %v", got[0])
	}
	if _, ok := got[0]["description"]; ok {
		t.Error("expected empty description to be omitted")
	}
}

func TestFormatFieldErrors(t *testing.T) {
	var buf bytes.Buffer
	output.FormatFieldErrors(&buf, &service.ValidationError{Fields: []service.FieldError{
		{Field: "title", Code: "required"},
		{Field: "password", Code: "too_short", Param: "8"},
	}})
	want := "  title: required\n  password: too_short (8)\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}
