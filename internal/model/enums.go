package model

import (
	"fmt"
	"strings"
)

// Priority ranks a task. The string values are the persisted form.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists every priority from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities for sorting: High=0, Medium=1, Low=2.
func (p Priority) Rank() int {
	for i, candidate := range Priorities {
		if candidate == p {
			return i
		}
	}
	return len(Priorities)
}

// ParsePriority accepts any casing of a priority name.
func ParsePriority(raw string) (Priority, error) {
	for _, p := range Priorities {
		if strings.EqualFold(string(p), strings.TrimSpace(raw)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", raw)
}

// Recurrence describes how often a task repeats.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "None"
	RecurrenceDaily   Recurrence = "Daily"
	RecurrenceWeekly  Recurrence = "Weekly"
	RecurrenceMonthly Recurrence = "Monthly"
)

var Recurrences = []Recurrence{RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly}

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

func ParseRecurrence(raw string) (Recurrence, error) {
	for _, r := range Recurrences {
		if strings.EqualFold(string(r), strings.TrimSpace(raw)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown recurrence %q", raw)
}
