package repository_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/model"
	"taskflow/internal/repository"
	"taskflow/internal/testutil"
)

func TestKVRepository(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewKVRepository(testutil.SetupTestDB(t))

	_, err := kv.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, kv.Set(ctx, "a", []byte("one")))
	require.NoError(t, kv.Set(ctx, "a", []byte("two")))
	require.NoError(t, kv.Set(ctx, "b", []byte("three")))

	got, err := kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	require.NoError(t, kv.Delete(ctx, "a"))
	_, err = kv.Get(ctx, "a")
	require.ErrorIs(t, err, repository.ErrNotFound)

	got, err = kv.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "three", string(got))
}

func TestTaskRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("empty_fallback", func(t *testing.T) {
		repo := repository.NewTaskRepository(repository.NewKVRepository(testutil.SetupTestDB(t)))
		tasks := repo.Load(ctx)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("round_trip", func(t *testing.T) {
		repo := repository.NewTaskRepository(repository.NewKVRepository(testutil.SetupTestDB(t)))
		tasks := testutil.Tasks(t, 4, "Work")
		tasks[1].Note = model.Some("with a note")
		tasks[2].Recurrence = model.RecurrenceWeekly
		tasks[3].Date = time.Date(2027, 1, 2, 3, 4, 5, 6, time.UTC)

		require.NoError(t, repo.Save(ctx, tasks))
		if diff := cmp.Diff(tasks, repo.Load(ctx)); diff != "" {
			t.Errorf("tasks mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("save_empty", func(t *testing.T) {
		kv := testutil.NewMemoryKV()
		repo := repository.NewTaskRepository(kv)
		require.NoError(t, repo.Save(ctx, nil))
		raw, err := kv.Get(ctx, "savedTasks")
		require.NoError(t, err)
		assert.Equal(t, "[]", string(raw))
	})

	t.Run("corrupt_fallback", func(t *testing.T) {
		kv := testutil.NewMemoryKV()
		require.NoError(t, kv.Set(ctx, "savedTasks", []byte("{not json")))
		tasks := repository.NewTaskRepository(kv).Load(ctx)
		assert.Empty(t, tasks)
	})
}

func TestCategoryRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("default_fallback", func(t *testing.T) {
		repo := repository.NewCategoryRepository(repository.NewKVRepository(testutil.SetupTestDB(t)))
		cats := repo.Load(ctx)
		require.Len(t, cats, len(model.DefaultCategories()))
		assert.Equal(t, "Work", cats[0].Name)
	})

	t.Run("round_trip", func(t *testing.T) {
		repo := repository.NewCategoryRepository(repository.NewKVRepository(testutil.SetupTestDB(t)))
		cats := append(model.DefaultCategories(), testutil.NewCategory(t, "Garden"))
		cats[0].TaskCount, cats[0].CompletedCount = 3, 1

		require.NoError(t, repo.Save(ctx, cats))
		if diff := cmp.Diff(cats, repo.Load(ctx)); diff != "" {
			t.Errorf("categories mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("stored_empty_list_kept", func(t *testing.T) {
		repo := repository.NewCategoryRepository(testutil.NewMemoryKV())
		require.NoError(t, repo.Save(ctx, []model.Category{}))
		assert.Empty(t, repo.Load(ctx))
	})

	t.Run("corrupt_fallback", func(t *testing.T) {
		kv := testutil.NewMemoryKV()
		require.NoError(t, kv.Set(ctx, "savedCategories", []byte(`[{"id":`)))
		cats := repository.NewCategoryRepository(kv).Load(ctx)
		assert.Len(t, cats, len(model.DefaultCategories()))
	})
}

func TestNewDBOnDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "taskflow.db")

	db, err := repository.NewDB(path)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	var mode string
	require.NoError(t, db.Raw("PRAGMA journal_mode").Scan(&mode).Error)
	assert.Equal(t, "wal", strings.ToLower(mode))

	require.NoError(t, repository.NewKVRepository(db).Set(ctx, "k", []byte("v")))
	require.NoError(t, sqlDB.Close())

	reopened, err := repository.NewDB(path)
	require.NoError(t, err)
	got, err := repository.NewKVRepository(reopened).Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
	if sqlDB, err := reopened.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
