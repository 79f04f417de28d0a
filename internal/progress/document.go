// Package progress holds the task/category/subtask document, its file store and the
// operations that mutate it.
package progress

import (
	"sort"
	"strings"
)

// Document is the whole persisted progress state keyed by task name.
type Document map[string]*Task

// Task is a tracked project. Only active tasks appear in the published report.
type Task struct {
	Active     bool                 `json:"active"`
	Categories map[string]*Category `json:"categories"`
}

// Category groups subtasks and carries a free-text note.
type Category struct {
	Subtasks map[string]bool `json:"subtasks"`
	Note     string          `json:"note"`
}

// NewTask returns an inactive task with no categories.
func NewTask() *Task {
	return &Task{Categories: make(map[string]*Category)}
}

// NewCategory returns an empty category with an empty note.
func NewCategory() *Category {
	return &Category{Subtasks: make(map[string]bool)}
}

// Normalize returns the canonical form of an entity name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// TaskNames returns task names in sorted order.
func (d Document) TaskNames() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CategoryNames returns category names in sorted order.
func (t *Task) CategoryNames() []string {
	names := make([]string, 0, len(t.Categories))
	for name := range t.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SubtaskNames returns subtask names in sorted order.
func (c *Category) SubtaskNames() []string {
	names := make([]string, 0, len(c.Subtasks))
	for name := range c.Subtasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// fill replaces nil entries and maps left behind by hand-edited or older files.
func (d Document) fill() {
	for name, task := range d {
		if task == nil {
			task = NewTask()
			d[name] = task
		}
		if task.Categories == nil {
			task.Categories = make(map[string]*Category)
		}
		for catName, cat := range task.Categories {
			if cat == nil {
				cat = NewCategory()
				task.Categories[catName] = cat
			}
			if cat.Subtasks == nil {
				cat.Subtasks = make(map[string]bool)
			}
		}
	}
}
