package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"taskflow/internal/logger"
	"taskflow/internal/model"
)

const tasksKey = "savedTasks"

// TaskRepository persists the whole task list as one JSON array.
type TaskRepository struct {
	kv KVStore
}

func NewTaskRepository(kv KVStore) *TaskRepository {
	return &TaskRepository{kv: kv}
}

func (r *TaskRepository) Save(ctx context.Context, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	return r.kv.Set(ctx, tasksKey, data)
}

// Load returns the stored tasks, or an empty list when nothing is stored or
// the stored value cannot be decoded.
func (r *TaskRepository) Load(ctx context.Context) []model.Task {
	tasks, err := r.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Get().Warnw("load tasks, starting empty", "error", err)
		}
		return []model.Task{}
	}
	return tasks
}

// Fetch returns the stored list without fallbacks. ErrNotFound means nothing
// has been saved yet.
func (r *TaskRepository) Fetch(ctx context.Context) ([]model.Task, error) {
	data, err := r.kv.Get(ctx, tasksKey)
	if err != nil {
		return nil, err
	}
	var tasks []model.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decode stored tasks: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}
