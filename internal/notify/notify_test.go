package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/model"
)

// fakeScheduler records jobs so tests can fire them by hand.
type fakeScheduler struct {
	mu      sync.Mutex
	next    cron.EntryID
	jobs    map[cron.EntryID]func()
	at      map[cron.EntryID]time.Time
	removed []cron.EntryID
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{jobs: map[cron.EntryID]func(){}, at: map[cron.EntryID]time.Time{}}
}

func (f *fakeScheduler) ScheduleOnce(at time.Time, job func()) cron.EntryID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.jobs[f.next] = job
	f.at[f.next] = at
	return f.next
}

func (f *fakeScheduler) Remove(id cron.EntryID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.jobs, id)
	f.removed = append(f.removed, id)
}

func (f *fakeScheduler) run(id cron.EntryID) {
	f.mu.Lock()
	job := f.jobs[id]
	f.mu.Unlock()
	if job != nil {
		job()
	}
}

func TestForTask(t *testing.T) {
	task := model.Task{
		ID:    "abc",
		Title: "Dentist",
		Date:  time.Date(2026, 11, 2, 14, 30, 45, 0, time.UTC),
	}
	n := ForTask(task)
	assert.Equal(t, "abc", n.ID)
	assert.Equal(t, "Reminder: Dentist", n.Title)
	assert.Equal(t, "You have a task due.", n.Body)
	assert.Equal(t, time.Date(2026, 11, 2, 14, 30, 0, 0, time.UTC), n.FireAt)

	task.Note = model.Some("bring x-rays")
	assert.Equal(t, "bring x-rays", ForTask(task).Body)
}

func TestCronSink(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	newSink := func() (*CronSink, *fakeScheduler, *[]Notification) {
		sched := newFakeScheduler()
		var delivered []Notification
		sink := NewCronSink(sched, func(_ context.Context, n Notification) error {
			delivered = append(delivered, n)
			return nil
		})
		sink.now = func() time.Time { return now }
		return sink, sched, &delivered
	}

	t.Run("fires_once", func(t *testing.T) {
		sink, sched, delivered := newSink()
		n := Notification{ID: "t1", Title: "Reminder: x", FireAt: now.Add(time.Hour)}
		require.NoError(t, sink.Schedule(context.Background(), n))
		assert.Equal(t, now.Add(time.Hour), sched.at[1])
		assert.Equal(t, 1, sink.Pending())

		sched.run(1)
		sched.run(1)
		assert.Equal(t, []Notification{n}, *delivered)
		assert.Equal(t, 0, sink.Pending())
		assert.Contains(t, sched.removed, cron.EntryID(1))
	})

	t.Run("past_rejected", func(t *testing.T) {
		sink, _, _ := newSink()
		err := sink.Schedule(context.Background(), Notification{ID: "t1", FireAt: now})
		assert.ErrorIs(t, err, ErrPastFireTime)
		assert.Equal(t, 0, sink.Pending())
	})

	t.Run("reschedule_replaces", func(t *testing.T) {
		sink, sched, delivered := newSink()
		require.NoError(t, sink.Schedule(context.Background(), Notification{ID: "t1", FireAt: now.Add(time.Hour)}))
		require.NoError(t, sink.Schedule(context.Background(), Notification{ID: "t1", FireAt: now.Add(2 * time.Hour)}))
		assert.Equal(t, 1, sink.Pending())
		assert.Contains(t, sched.removed, cron.EntryID(1))

		sched.run(2)
		require.Len(t, *delivered, 1)
		assert.Equal(t, now.Add(2*time.Hour), (*delivered)[0].FireAt)
	})

	t.Run("cancel", func(t *testing.T) {
		sink, sched, delivered := newSink()
		require.NoError(t, sink.Schedule(context.Background(), Notification{ID: "t1", FireAt: now.Add(time.Hour)}))
		sink.Cancel("t1")
		sink.Cancel("unknown")
		sched.run(1)
		assert.Empty(t, *delivered)
		assert.Equal(t, 0, sink.Pending())
	})
}
