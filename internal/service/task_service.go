package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"taskflow/internal/classify"
	"taskflow/internal/logger"
	"taskflow/internal/model"
	"taskflow/internal/notify"
	"taskflow/internal/repository"
	"taskflow/internal/transfer"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// TaskStore persists the task list. Load applies fallbacks; Fetch reports
// repository.ErrNotFound when nothing is stored.
type TaskStore interface {
	Save(ctx context.Context, tasks []model.Task) error
	Load(ctx context.Context) []model.Task
	Fetch(ctx context.Context) ([]model.Task, error)
}

type CategoryStore interface {
	Save(ctx context.Context, categories []model.Category) error
	Load(ctx context.Context) []model.Category
	Fetch(ctx context.Context) ([]model.Category, error)
}

// TaskService owns the task and category lists for one session. The stores
// are the source of truth: every mutation first re-reads both lists, so a
// bot and a CLI run on the same file see each other's writes, then
// recomputes category counts and persists both lists. Writes are
// best-effort: a failed save is logged, in-memory state is kept and re-reads
// are suspended until a save succeeds again.
type TaskService struct {
	taskStore     TaskStore
	categoryStore CategoryStore
	sink          notify.Sink
	now           func() time.Time

	mu         sync.Mutex
	tasks      []model.Task
	categories []model.Category
	dirty      bool
}

// NewTaskService wires the stores; sink may be nil when reminders are disabled.
func NewTaskService(taskStore TaskStore, categoryStore CategoryStore, sink notify.Sink) *TaskService {
	return &TaskService{
		taskStore:     taskStore,
		categoryStore: categoryStore,
		sink:          sink,
		now:           time.Now,
		tasks:         []model.Task{},
		categories:    []model.Category{},
	}
}

// Load replaces in-memory state with what the stores hold.
func (s *TaskService) Load(ctx context.Context) {
	tasks := s.taskStore.Load(ctx)
	categories := s.categoryStore.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = tasks
	s.categories = Recompute(tasks, categories)
	s.dirty = false
}

// Refresh picks up writes another process made to the stores and brings
// pending reminders in line with them.
func (s *TaskService) Refresh(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked(ctx)
}

func (s *TaskService) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task(nil), s.tasks...)
}

// Task looks a task up by id.
func (s *TaskService) Task(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.tasks[i], true
	}
	return model.Task{}, false
}

func (s *TaskService) Categories() []model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Category(nil), s.categories...)
}

func (s *TaskService) Summary() Summary {
	return Summarize(s.Tasks())
}

// Now is the service clock, used to date new drafts.
func (s *TaskService) Now() time.Time {
	return s.now()
}

// Predict classifies title against the current clock.
func (s *TaskService) Predict(title string) classify.Prediction {
	return classify.Predict(title, s.now())
}

// AddTask appends a validated task and schedules its reminder.
func (s *TaskService) AddTask(ctx context.Context, task model.Task) (model.Task, error) {
	if err := model.ValidateTask(task); err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	s.syncLocked(ctx)
	s.tasks = append(s.tasks, task)
	s.commitLocked(ctx)
	s.mu.Unlock()

	logger.Get().Infow("task created", "id", task.ID, "category", task.Category, "priority", task.Priority)
	s.scheduleReminder(ctx, task)
	return task, nil
}

// CreateFromTitle builds a task from free text with every prediction applied,
// the path used by quick-add and dictation.
func (s *TaskService) CreateFromTitle(ctx context.Context, title string) (model.Task, error) {
	task, err := classify.Draft(title, s.now())
	if err != nil {
		return model.Task{}, err
	}
	return s.AddTask(ctx, task)
}

// UpdateTask replaces the task with the same id and refreshes its reminder.
func (s *TaskService) UpdateTask(ctx context.Context, task model.Task) (model.Task, error) {
	if err := model.ValidateTask(task); err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	s.syncLocked(ctx)
	i := s.indexLocked(task.ID)
	if i < 0 {
		s.mu.Unlock()
		return model.Task{}, fmt.Errorf("update %s: %w", task.ID, ErrTaskNotFound)
	}
	s.tasks[i] = task
	s.commitLocked(ctx)
	s.mu.Unlock()

	if s.sink != nil {
		s.sink.Cancel(task.ID)
	}
	s.scheduleReminder(ctx, task)
	return task, nil
}

// ToggleDone flips the done flag. Finishing a task cancels its reminder;
// reopening it schedules the reminder again.
func (s *TaskService) ToggleDone(ctx context.Context, id string) (model.Task, error) {
	s.mu.Lock()
	s.syncLocked(ctx)
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Task{}, fmt.Errorf("toggle %s: %w", id, ErrTaskNotFound)
	}
	s.tasks[i].IsDone = !s.tasks[i].IsDone
	task := s.tasks[i]
	s.commitLocked(ctx)
	s.mu.Unlock()

	if task.IsDone {
		if s.sink != nil {
			s.sink.Cancel(task.ID)
		}
	} else {
		s.scheduleReminder(ctx, task)
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	s.syncLocked(ctx)
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("delete %s: %w", id, ErrTaskNotFound)
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.commitLocked(ctx)
	s.mu.Unlock()

	if s.sink != nil {
		s.sink.Cancel(id)
	}
	return nil
}

// MoveTask drops the task fromID onto the position currently held by toID.
func (s *TaskService) MoveTask(ctx context.Context, fromID, toID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked(ctx)
	from, to := s.indexLocked(fromID), s.indexLocked(toID)
	if from < 0 || to < 0 {
		return fmt.Errorf("move %s to %s: %w", fromID, toID, ErrTaskNotFound)
	}
	task := s.tasks[from]
	rest := append(s.tasks[:from:from], s.tasks[from+1:]...)
	moved := make([]model.Task, 0, len(s.tasks))
	moved = append(moved, rest[:to]...)
	moved = append(moved, task)
	moved = append(moved, rest[to:]...)
	s.tasks = moved
	s.commitLocked(ctx)
	return nil
}

// AddCategory creates a custom category. Names are expected to be unique but
// this is not enforced.
func (s *TaskService) AddCategory(ctx context.Context, name, icon, color string) (model.Category, error) {
	category, err := model.NewCategory(name, icon, color, true)
	if err != nil {
		return model.Category{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked(ctx)
	s.categories = append(s.categories, category)
	s.commitLocked(ctx)
	return s.categories[len(s.categories)-1], nil
}

// DeleteCategory removes the category and every task naming it.
func (s *TaskService) DeleteCategory(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	s.syncLocked(ctx)
	idx := -1
	for i, c := range s.categories {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return 0, fmt.Errorf("delete category %s: %w", id, ErrCategoryNotFound)
	}
	name := s.categories[idx].Name
	s.categories = append(s.categories[:idx:idx], s.categories[idx+1:]...)

	var removed []string
	kept := s.tasks[:0:0]
	for _, task := range s.tasks {
		if task.Category == name {
			removed = append(removed, task.ID)
			continue
		}
		kept = append(kept, task)
	}
	s.tasks = kept
	s.commitLocked(ctx)
	s.mu.Unlock()

	if s.sink != nil {
		for _, taskID := range removed {
			s.sink.Cancel(taskID)
		}
	}
	logger.Get().Infow("category deleted", "name", name, "tasks_removed", len(removed))
	return len(removed), nil
}

// FindCategory looks a category up by case-insensitive name.
func (s *TaskService) FindCategory(name string) (model.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return c, true
		}
	}
	return model.Category{}, false
}

// ImportTasks appends a task document. On failure nothing changes.
func (s *TaskService) ImportTasks(ctx context.Context, data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked(ctx)
	before := len(s.tasks)
	tasks, err := transfer.Import(s.tasks, data)
	if err != nil {
		return 0, err
	}
	s.tasks = tasks
	s.commitLocked(ctx)
	return len(tasks) - before, nil
}

func (s *TaskService) ExportTasks() ([]byte, error) {
	return transfer.Export(s.Tasks())
}

// Reset drops every task and restores the default categories.
func (s *TaskService) Reset(ctx context.Context) {
	s.mu.Lock()
	s.syncLocked(ctx)
	ids := make([]string, 0, len(s.tasks))
	for _, task := range s.tasks {
		ids = append(ids, task.ID)
	}
	s.tasks = []model.Task{}
	s.categories = model.DefaultCategories()
	s.commitLocked(ctx)
	s.mu.Unlock()

	if s.sink != nil {
		for _, id := range ids {
			s.sink.Cancel(id)
		}
	}
}

// RescheduleReminders hands every open task with a reminder to the sink again,
// as needed after a restart. It returns how many were accepted.
func (s *TaskService) RescheduleReminders(ctx context.Context) int {
	if s.sink == nil {
		return 0
	}
	n := 0
	for _, task := range s.Tasks() {
		if !task.HasReminder || task.IsDone {
			continue
		}
		if err := s.sink.Schedule(ctx, notify.ForTask(task)); err != nil {
			continue
		}
		n++
	}
	logger.Get().Infow("reminders rescheduled", "count", n)
	return n
}

func (s *TaskService) indexLocked(id string) int {
	for i, task := range s.tasks {
		if task.ID == id {
			return i
		}
	}
	return -1
}

// commitLocked recomputes derived counts and persists both lists.
func (s *TaskService) commitLocked(ctx context.Context) {
	s.categories = Recompute(s.tasks, s.categories)
	s.dirty = false
	if err := s.taskStore.Save(ctx, s.tasks); err != nil {
		logger.Get().Warnw("save tasks", "error", err)
		s.dirty = true
	}
	if err := s.categoryStore.Save(ctx, s.categories); err != nil {
		logger.Get().Warnw("save categories", "error", err)
		s.dirty = true
	}
}

// syncLocked replaces in-memory state with the stored lists. Nothing stored,
// an unreadable store or unsaved local changes keep memory as it is.
func (s *TaskService) syncLocked(ctx context.Context) {
	if s.dirty {
		return
	}
	tasks, err := s.taskStore.Fetch(ctx)
	switch {
	case err == nil:
		s.reconcileRemindersLocked(ctx, s.tasks, tasks)
		s.tasks = tasks
	case !errors.Is(err, repository.ErrNotFound):
		logger.Get().Warnw("re-read tasks", "error", err)
	}
	categories, err := s.categoryStore.Fetch(ctx)
	switch {
	case err == nil:
		s.categories = categories
	case !errors.Is(err, repository.ErrNotFound):
		logger.Get().Warnw("re-read categories", "error", err)
	}
	s.categories = Recompute(s.tasks, s.categories)
}

// reconcileRemindersLocked cancels reminders of tasks that disappeared and
// (re)schedules those whose reminder inputs changed in the store.
func (s *TaskService) reconcileRemindersLocked(ctx context.Context, before, after []model.Task) {
	if s.sink == nil {
		return
	}
	previous := make(map[string]model.Task, len(before))
	for _, task := range before {
		previous[task.ID] = task
	}
	for _, task := range after {
		old, ok := previous[task.ID]
		delete(previous, task.ID)
		if ok && !reminderChanged(old, task) {
			continue
		}
		if ok {
			s.sink.Cancel(task.ID)
		}
		s.scheduleReminder(ctx, task)
	}
	for id := range previous {
		s.sink.Cancel(id)
	}
}

func reminderChanged(a, b model.Task) bool {
	return a.HasReminder != b.HasReminder || a.IsDone != b.IsDone ||
		!a.Date.Equal(b.Date) || a.Title != b.Title || !a.Note.Equal(b.Note)
}

func (s *TaskService) scheduleReminder(ctx context.Context, task model.Task) {
	if s.sink == nil || !task.HasReminder || task.IsDone {
		return
	}
	if err := s.sink.Schedule(ctx, notify.ForTask(task)); err != nil {
		if errors.Is(err, notify.ErrPastFireTime) {
			logger.Get().Debugw("reminder not scheduled", "id", task.ID, "reason", err)
			return
		}
		logger.Get().Warnw("schedule reminder", "id", task.ID, "error", err)
	}
}
