package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task represents a single item on the to-do list. Category refers to a
// Category by name; a name with no matching category is tolerated.
type Task struct {
	ID          string `validate:"required"`
	Title       string `validate:"notblank"`
	Date        time.Time
	Category    string
	IsDone      bool
	Priority    Priority `validate:"priority"`
	Note        Optional[string]
	HasReminder bool
	Recurrence  Recurrence `validate:"recurrence"`
}

// NewTask builds a task with a fresh id and default flags.
func NewTask(title string, date time.Time, category string, priority Priority) (Task, error) {
	task := Task{
		ID:         uuid.NewString(),
		Title:      strings.TrimSpace(title),
		Date:       date,
		Category:   category,
		Priority:   priority,
		Recurrence: RecurrenceNone,
	}
	if err := ValidateTask(task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// referenceDate is the epoch numeric dates are counted from in imported
// documents produced by the mobile app.
var referenceDate = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

type taskJSON struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Date        json.RawMessage `json:"date"`
	Category    string          `json:"category"`
	IsDone      bool            `json:"isDone"`
	Priority    Priority        `json:"priority"`
	Note        *string         `json:"note,omitempty"`
	HasReminder bool            `json:"hasReminder"`
	Recurrence  Recurrence      `json:"recurrence"`
}

func (t Task) MarshalJSON() ([]byte, error) {
	date, err := json.Marshal(t.Date.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	wire := taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Date:        date,
		Category:    t.Category,
		IsDone:      t.IsDone,
		Priority:    t.Priority,
		HasReminder: t.HasReminder,
		Recurrence:  t.Recurrence,
	}
	if note, ok := t.Note.Get(); ok {
		wire.Note = &note
	}
	return json.Marshal(wire)
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var wire taskJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	date, err := decodeDate(wire.Date)
	if err != nil {
		return fmt.Errorf("task %q: %w", wire.ID, err)
	}
	*t = Task{
		ID:          wire.ID,
		Title:       wire.Title,
		Date:        date,
		Category:    wire.Category,
		IsDone:      wire.IsDone,
		Priority:    wire.Priority,
		HasReminder: wire.HasReminder,
		Recurrence:  wire.Recurrence,
	}
	if wire.Note != nil {
		t.Note = Some(*wire.Note)
	}
	if t.Recurrence == "" {
		t.Recurrence = RecurrenceNone
	}
	return nil
}

// decodeDate accepts an RFC 3339 string or a number of seconds since referenceDate.
func decodeDate(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 {
		return time.Time{}, fmt.Errorf("missing date")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse date: %w", err)
		}
		return parsed, nil
	}
	var seconds float64
	if err := json.Unmarshal(raw, &seconds); err != nil {
		return time.Time{}, fmt.Errorf("parse date: %w", err)
	}
	whole, frac := math.Modf(seconds)
	return referenceDate.Add(time.Duration(whole)*time.Second + time.Duration(frac*float64(time.Second))), nil
}
