package service

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/model"
	"taskflow/internal/testutil"
)

func TestRecompute(t *testing.T) {
	work := testutil.NewCategory(t, "Work")
	home := testutil.NewCategory(t, "Home")
	empty := testutil.NewCategory(t, "Empty")
	work.TaskCount = 99 // stale value must be overwritten

	tasks := []model.Task{
		testutil.NewTask(t, "a", "Work", true),
		testutil.NewTask(t, "b", "Work", false),
		testutil.NewTask(t, "c", "Home", true),
		testutil.NewTask(t, "d", "Ghost", true),
	}
	cats := []model.Category{work, home, empty}

	got := Recompute(tasks, cats)
	require.Len(t, got, 3)
	assert.Equal(t, 2, got[0].TaskCount)
	assert.Equal(t, 1, got[0].CompletedCount)
	assert.Equal(t, 1, got[1].TaskCount)
	assert.Equal(t, 1, got[1].CompletedCount)
	assert.Equal(t, 0, got[2].TaskCount)
	assert.Equal(t, 0, got[2].CompletedCount)

	assert.Equal(t, 99, cats[0].TaskCount, "input must not be modified")
	assert.Equal(t, work.ID, got[0].ID)
}

func TestRecomputeInvariants(t *testing.T) {
	names := []string{"Work", "Home", "Study", "Orphan"}
	rng := rand.New(rand.NewSource(7))
	cats := []model.Category{
		testutil.NewCategory(t, "Work"),
		testutil.NewCategory(t, "Home"),
		testutil.NewCategory(t, "Study"),
	}

	for round := 0; round < 20; round++ {
		var tasks []model.Task
		n := rng.Intn(30)
		for i := 0; i < n; i++ {
			tasks = append(tasks, testutil.NewTask(t, "t", names[rng.Intn(len(names))], rng.Intn(2) == 0))
		}

		got := Recompute(tasks, cats)
		sum := 0
		for _, c := range got {
			assert.LessOrEqual(t, c.CompletedCount, c.TaskCount)
			assert.GreaterOrEqual(t, c.CompletedCount, 0)
			sum += c.TaskCount
		}
		matching := 0
		for _, task := range tasks {
			if task.Category != "Orphan" {
				matching++
			}
		}
		assert.Equal(t, matching, sum)
	}
}

func TestCompletionRate(t *testing.T) {
	assert.Zero(t, CompletionRate(nil))
	assert.Zero(t, CompletionRate([]model.Task{}))

	tasks := []model.Task{
		testutil.NewTask(t, "a", "Work", true),
		testutil.NewTask(t, "b", "Work", false),
		testutil.NewTask(t, "c", "Work", false),
		testutil.NewTask(t, "d", "Work", true),
	}
	assert.InDelta(t, 0.5, CompletionRate(tasks), 1e-9)
}

func TestPriorityDistribution(t *testing.T) {
	assert.Equal(t, []PriorityCount{
		{model.PriorityHigh, 0},
		{model.PriorityMedium, 0},
		{model.PriorityLow, 0},
	}, PriorityDistribution(nil))

	tasks := testutil.Tasks(t, 3, "Work")
	tasks[0].Priority = model.PriorityLow
	tasks[1].Priority = model.PriorityLow
	assert.Equal(t, []PriorityCount{
		{model.PriorityHigh, 0},
		{model.PriorityMedium, 1},
		{model.PriorityLow, 2},
	}, PriorityDistribution(tasks))
}

func TestCategoryStats(t *testing.T) {
	tasks := []model.Task{
		testutil.NewTask(t, "a", "Home", true),
		testutil.NewTask(t, "b", "Work", false),
		testutil.NewTask(t, "c", "Work", true),
		testutil.NewTask(t, "d", "Study", false),
		testutil.NewTask(t, "e", "Work", false),
	}
	assert.Equal(t, []CategoryStat{
		{Name: "Work", Total: 3, Completed: 1},
		{Name: "Home", Total: 1, Completed: 1},
		{Name: "Study", Total: 1, Completed: 0},
	}, CategoryStats(tasks))
	assert.Empty(t, CategoryStats(nil))
}

func TestSummarize(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.CompletionRate)
	assert.Len(t, s.Priorities, 3)

	s = Summarize(testutil.Tasks(t, 4, "Work"))
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Completed)
	assert.InDelta(t, 0.5, s.CompletionRate, 1e-9)
	assert.Equal(t, []CategoryStat{{Name: "Work", Total: 4, Completed: 2}}, s.Categories)
}
