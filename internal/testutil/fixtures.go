package testutil

import (
	"fmt"
	"testing"
	"time"

	"taskflow/internal/model"
)

// Day is a fixed reference time used across tests.
var Day = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

// NewTask builds a valid task in category with the given done flag.
func NewTask(t *testing.T, title, category string, done bool) model.Task {
	t.Helper()
	task, err := model.NewTask(title, Day, category, model.PriorityMedium)
	if err != nil {
		t.Fatalf("create task %q: %v", title, err)
	}
	task.IsDone = done
	return task
}

// NewCategory builds a custom category with a fixed icon and color.
func NewCategory(t *testing.T, name string) model.Category {
	t.Helper()
	c, err := model.NewCategory(name, "folder.fill", "#123456", true)
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	return c
}

// Titles lists task titles in order.
func Titles(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}

// Tasks builds n tasks titled "task 0".."task n-1" in category.
func Tasks(t *testing.T, n int, category string) []model.Task {
	t.Helper()
	out := make([]model.Task, n)
	for i := range out {
		out[i] = NewTask(t, fmt.Sprintf("task %d", i), category, i%2 == 1)
	}
	return out
}
