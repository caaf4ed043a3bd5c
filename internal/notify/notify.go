// Package notify schedules one-shot task reminders.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"taskflow/internal/logger"
	"taskflow/internal/model"
)

// ErrPastFireTime is returned when a notification would fire before now.
var ErrPastFireTime = errors.New("fire time is in the past")

const defaultBody = "You have a task due."

// Notification is what the sink delivers: fire-once, never repeating.
type Notification struct {
	ID     string
	Title  string
	Body   string
	FireAt time.Time
}

// ForTask builds the reminder for task, firing at the task's minute.
func ForTask(task model.Task) Notification {
	return Notification{
		ID:     task.ID,
		Title:  "Reminder: " + task.Title,
		Body:   task.Note.Or(defaultBody),
		FireAt: task.Date.Truncate(time.Minute),
	}
}

// Sink accepts reminders for later delivery.
type Sink interface {
	Schedule(ctx context.Context, n Notification) error
	Cancel(id string)
}

// Deliverer hands a due notification to the user.
type Deliverer func(ctx context.Context, n Notification) error

// Scheduler is the subset of the cron scheduler the sink needs.
type Scheduler interface {
	ScheduleOnce(at time.Time, job func()) cron.EntryID
	Remove(id cron.EntryID)
}

// CronSink fires each notification once through a Scheduler. Scheduling an id
// again replaces the earlier notification.
type CronSink struct {
	scheduler Scheduler
	deliver   Deliverer
	now       func() time.Time

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func NewCronSink(scheduler Scheduler, deliver Deliverer) *CronSink {
	return &CronSink{
		scheduler: scheduler,
		deliver:   deliver,
		now:       time.Now,
		entries:   make(map[string]cron.EntryID),
	}
}

func (s *CronSink) Schedule(_ context.Context, n Notification) error {
	if !n.FireAt.After(s.now()) {
		return fmt.Errorf("schedule %s at %s: %w", n.ID, n.FireAt.Format(time.RFC3339), ErrPastFireTime)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.entries[n.ID]; ok {
		s.scheduler.Remove(old)
	}
	var entry cron.EntryID
	entry = s.scheduler.ScheduleOnce(n.FireAt, func() {
		s.fire(n, &entry)
	})
	s.entries[n.ID] = entry
	return nil
}

func (s *CronSink) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[id]; ok {
		s.scheduler.Remove(entry)
		delete(s.entries, id)
	}
}

// Pending reports how many notifications are still waiting to fire.
func (s *CronSink) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *CronSink) fire(n Notification, entryRef *cron.EntryID) {
	s.mu.Lock()
	entry := *entryRef
	current, ok := s.entries[n.ID]
	if ok && current == entry {
		delete(s.entries, n.ID)
		s.scheduler.Remove(entry)
	}
	s.mu.Unlock()
	if !ok || current != entry {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.deliver(ctx, n); err != nil {
		logger.Get().Warnw("deliver notification", "id", n.ID, "error", err)
	}
}
