package commands

import (
	"flag"

	"todo/internal/service"
)

// taskFlags collects the task field flags shared by add and edit into a
// patch. Only flags given on the command line are set.
type taskFlags struct {
	patch service.Patch
}

func (tf *taskFlags) register(fs *flag.FlagSet, withTitle bool) {
	tf.patch = service.Patch{}
	if withTitle {
		fs.Func("title", "task title", func(s string) error {
			tf.patch.Title = &s
			return nil
		})
	}
	fs.Func("desc", "description", func(s string) error {
		tf.patch.Description = &s
		return nil
	})
	fs.Func("priority", "low, medium or high", func(s string) error {
		p := service.Priority(s)
		tf.patch.Priority = &p
		return nil
	})
	fs.Func("status", "pending, in-progress or completed", func(s string) error {
		st := service.Status(s)
		tf.patch.Status = &st
		return nil
	})
	fs.Func("due", "deadline as YYYY-MM-DD, empty to clear", func(s string) error {
		tf.patch.Deadline = &s
		return nil
	})
	fs.Func("tags", "comma separated tags, empty to clear", func(s string) error {
		tags := service.ParseTags(s)
		tf.patch.Tags = &tags
		return nil
	})
}

// filterFlags collects filter criteria.
type filterFlags struct {
	filter service.Filter
	set    bool
}

func (ff *filterFlags) register(fs *flag.FlagSet) {
	ff.filter = service.Filter{}
	ff.set = false
	fs.Func("priority", "only tasks with this priority", func(s string) error {
		ff.filter.Priority = service.Priority(s)
		ff.set = true
		return nil
	})
	fs.Func("status", "only tasks with this status", func(s string) error {
		ff.filter.Status = service.Status(s)
		ff.set = true
		return nil
	})
	fs.Func("search", "text in the title or description", func(s string) error {
		ff.filter.Search = s
		ff.set = true
		return nil
	})
	fs.Func("tag", "only tasks with this tag", func(s string) error {
		ff.filter.Tag = s
		ff.set = true
		return nil
	})
}
