package service

import (
	"sort"
	"strings"
	"time"

	"taskflow/internal/model"
)

type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
)

type SortBy string

const (
	SortByDate     SortBy = "date"
	SortByPriority SortBy = "priority"
	SortByTitle    SortBy = "title"
)

// Filter returns the tasks of one category (empty means every category) that
// match status and contain query in their title or note, ignoring case.
func Filter(tasks []model.Task, category string, status StatusFilter, query string) []model.Task {
	var out []model.Task
	for _, task := range tasks {
		if category != "" && task.Category != category {
			continue
		}
		switch status {
		case StatusActive:
			if task.IsDone {
				continue
			}
		case StatusCompleted:
			if !task.IsDone {
				continue
			}
		}
		if !matches(task, query) {
			continue
		}
		out = append(out, task)
	}
	return out
}

// Search matches query against titles only.
func Search(tasks []model.Task, query string) []model.Task {
	if query == "" {
		return append([]model.Task(nil), tasks...)
	}
	q := strings.ToLower(query)
	var out []model.Task
	for _, task := range tasks {
		if strings.Contains(strings.ToLower(task.Title), q) {
			out = append(out, task)
		}
	}
	return out
}

func matches(task model.Task, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(task.Title), q) {
		return true
	}
	note, ok := task.Note.Get()
	return ok && strings.Contains(strings.ToLower(note), q)
}

// SortTasks returns a sorted copy; the stored order is never changed.
func SortTasks(tasks []model.Task, by SortBy) []model.Task {
	out := append([]model.Task(nil), tasks...)
	var less func(a, b model.Task) bool
	switch by {
	case SortByPriority:
		less = func(a, b model.Task) bool { return a.Priority.Rank() < b.Priority.Rank() }
	case SortByTitle:
		less = func(a, b model.Task) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	default:
		less = func(a, b model.Task) bool { return a.Date.Before(b.Date) }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// TasksOn returns the tasks due on the same calendar day as day, in day's location.
func TasksOn(tasks []model.Task, day time.Time) []model.Task {
	y, m, d := day.Date()
	var out []model.Task
	for _, task := range tasks {
		ty, tm, td := task.Date.In(day.Location()).Date()
		if ty == y && tm == m && td == d {
			out = append(out, task)
		}
	}
	return out
}
