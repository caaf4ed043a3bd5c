package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/model"
	"taskflow/internal/service"
	"taskflow/internal/transfer"
)

type cliEnv struct {
	dir string
	db  string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("DATABASE_URL", "")
	return cliEnv{dir: dir, db: filepath.Join(dir, "taskflow.db")}
}

func (e cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--db", e.db}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestPredictCommand(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "predict", "--now", "2026-10-19T09:00:00Z", "urgent", "client", "meeting", "tomorrow")

	assert.Contains(t, out, "Priority:   High")
	assert.Contains(t, out, "Category:   Work")
	assert.Contains(t, out, "Date:       Tue 2026-10-20")
	assert.Contains(t, out, "Reminder:   true")
}

func TestPredictCommandSuggestions(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "predict", "buy")
	assert.Contains(t, out, "Suggestions:")
	assert.Contains(t, out, "  - buy ")
}

func TestPredictCommandBadNow(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "predict", "--now", "yesterday", "x")
	assert.ErrorContains(t, err, "--now")
}

func TestTasksLifecycle(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "tasks")
	assert.Contains(t, out, "No tasks.")

	out = env.mustRun(t, "tasks", "add", "--note", "bring slides", "client", "presentation")
	assert.Contains(t, out, "Work")
	id := strings.Fields(out)[1]

	env.mustRun(t, "tasks", "add", "--priority", "low", "--category", "home", "vacuum", "the", "flat")

	out = env.mustRun(t, "tasks", "--sort", "title")
	assert.Contains(t, out, "client presentation")
	assert.Contains(t, out, "vacuum the flat")
	assert.Less(t, strings.Index(out, "client presentation"), strings.Index(out, "vacuum the flat"))

	out = env.mustRun(t, "tasks", "--category", "Home")
	assert.NotContains(t, out, "client presentation")
	assert.Contains(t, out, "Low")

	out = env.mustRun(t, "tasks", "--search", "SLIDES")
	assert.Contains(t, out, "client presentation")

	out = env.mustRun(t, "tasks", "done", id)
	assert.Contains(t, out, "client presentation is done")

	out = env.mustRun(t, "tasks", "--status", "active")
	assert.NotContains(t, out, "client presentation")

	env.mustRun(t, "tasks", "rm", id)
	out = env.mustRun(t, "tasks")
	assert.NotContains(t, out, "client presentation")

	_, err := env.run(t, "tasks", "rm", id)
	assert.ErrorIs(t, err, service.ErrTaskNotFound)
}

func addTask(t *testing.T, env cliEnv, args ...string) string {
	t.Helper()
	out := env.mustRun(t, append([]string{"tasks", "add"}, args...)...)
	return strings.Fields(out)[1]
}

func TestTasksEdit(t *testing.T) {
	env := newCLIEnv(t)
	id := addTask(t, env, "--note", "old note", "call", "the", "plumber")

	out := env.mustRun(t, "tasks", "edit", id,
		"--title", "call the electrician",
		"--priority", "high",
		"--category", "home",
		"--date", "2026-11-02 08:30",
		"--recurrence", "weekly",
		"--reminder",
	)
	assert.Contains(t, out, "Updated call the electrician (High, Home, 2026-11-02 08:30)")

	out = env.mustRun(t, "tasks", "--search", "electrician")
	assert.Contains(t, out, "Weekly")
	assert.Contains(t, out, "High")
	out = env.mustRun(t, "tasks", "--search", "old note")
	assert.Contains(t, out, "call the electrician")

	env.mustRun(t, "tasks", "edit", id, "--note", "")
	out = env.mustRun(t, "tasks", "--search", "old note")
	assert.Contains(t, out, "No tasks.")
}

func TestTasksEditRejectsBadInput(t *testing.T) {
	env := newCLIEnv(t)
	id := addTask(t, env, "water", "the", "plants")

	cases := []struct {
		name string
		args []string
		want error
		msg  string
	}{
		{name: "no flags", args: []string{id}, want: errNoChanges},
		{name: "unknown id", args: []string{"missing", "--title", "x"}, want: service.ErrTaskNotFound},
		{name: "unknown category", args: []string{id, "--category", "Nope"}, want: service.ErrCategoryNotFound},
		{name: "blank title", args: []string{id, "--title", "  "}, want: model.ErrInvalidTask},
		{name: "bad priority", args: []string{id, "--priority", "urgent"}, msg: "unknown priority"},
		{name: "bad recurrence", args: []string{id, "--recurrence", "hourly"}, msg: "unknown recurrence"},
		{name: "bad date", args: []string{id, "--date", "next week"}, msg: "--date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.run(t, append([]string{"tasks", "edit"}, tc.args...)...)
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
			} else {
				assert.ErrorContains(t, err, tc.msg)
			}
		})
	}

	out := env.mustRun(t, "tasks")
	assert.Contains(t, out, "water the plants")
}

func TestParseEditDate(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)

	got, err := parseEditDate("2026-11-02", loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 11, 2, 0, 0, 0, 0, loc)))

	got, err = parseEditDate("2026-11-02 18:45", loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 11, 2, 16, 45, 0, 0, time.UTC)))

	got, err = parseEditDate("2026-11-02T10:00:00Z", loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 11, 2, 10, 0, 0, 0, time.UTC)))

	_, err = parseEditDate("02/11/2026", loc)
	assert.Error(t, err)
}

func TestTasksMoveToTarget(t *testing.T) {
	env := newCLIEnv(t)
	first := addTask(t, env, "first")
	addTask(t, env, "second")
	third := addTask(t, env, "third")

	env.mustRun(t, "tasks", "move", third, first)
	out := env.mustRun(t, "tasks")
	assert.Less(t, strings.Index(out, "third"), strings.Index(out, "first"))
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "second"))

	// Moving down lands the task where the target was, after it.
	env.mustRun(t, "tasks", "move", third, first)
	out = env.mustRun(t, "tasks")
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "third"))

	_, err := env.run(t, "tasks", "move", third, "missing")
	assert.ErrorIs(t, err, service.ErrTaskNotFound)
}

func TestTasksTitleFilter(t *testing.T) {
	env := newCLIEnv(t)
	addTask(t, env, "--note", "pick up milk", "groceries")
	addTask(t, env, "milk", "the", "goats")

	out := env.mustRun(t, "tasks", "--title", "MILK")
	assert.Contains(t, out, "milk the goats")
	assert.NotContains(t, out, "groceries")

	out = env.mustRun(t, "tasks", "--search", "milk")
	assert.Contains(t, out, "groceries")
}

func TestTasksAddRejectsUnknownCategory(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "tasks", "add", "--category", "Nope", "something")
	assert.ErrorIs(t, err, service.ErrCategoryNotFound)
}

func TestTasksRejectsUnknownStatus(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "tasks", "--status", "someday")
	assert.ErrorContains(t, err, "unknown status")
}

func TestCategoriesCommands(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "categories")
	for _, c := range model.DefaultCategories() {
		assert.Contains(t, out, c.Name)
	}

	env.mustRun(t, "categories", "add", "--color", "#00AA00", "Side", "projects")
	env.mustRun(t, "tasks", "add", "--category", "side projects", "write", "blog")

	out = env.mustRun(t, "categories")
	assert.Contains(t, out, "Side projects")
	assert.Contains(t, out, "#00AA00")

	out = env.mustRun(t, "categories", "rm", "Side", "projects")
	assert.Contains(t, out, "Deleted category Side projects and 1 tasks")

	out = env.mustRun(t, "tasks")
	assert.Contains(t, out, "No tasks.")

	_, err := env.run(t, "categories", "rm", "Side", "projects")
	assert.ErrorIs(t, err, service.ErrCategoryNotFound)
}

func TestStatsCommand(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "tasks", "add", "gym", "workout")
	id := strings.Fields(out)[1]
	env.mustRun(t, "tasks", "add", "read", "a", "novel")
	env.mustRun(t, "tasks", "done", id)

	out = env.mustRun(t, "stats")
	assert.Contains(t, out, "Tasks: 2  Completed: 1  Rate: 50%")
	assert.Contains(t, out, "By category:")
	assert.Contains(t, out, "Health")
}

func TestExportImportCommands(t *testing.T) {
	env := newCLIEnv(t)

	env.mustRun(t, "tasks", "add", "pay", "the", "electricity", "bill")
	file := filepath.Join(env.dir, "export.json")

	out := env.mustRun(t, "export", file)
	assert.Contains(t, out, "Exported 1 tasks")
	tasks, err := transfer.ReadFile(file)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	out = env.mustRun(t, "export")
	assert.Contains(t, out, `"priority"`)

	out = env.mustRun(t, "import", "--dry-run", file)
	assert.Contains(t, out, "holds 1 valid tasks")

	out = env.mustRun(t, "import", file)
	assert.Contains(t, out, "Imported 1 tasks")

	out = env.mustRun(t, "stats")
	assert.Contains(t, out, "Tasks: 2")
}

func TestImportRejectsInvalidDocument(t *testing.T) {
	env := newCLIEnv(t)

	bad := filepath.Join(env.dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"title": 3}]`), 0o600))

	_, err := env.run(t, "import", bad)
	assert.ErrorIs(t, err, transfer.ErrInvalidDocument)

	_, err = env.run(t, "import", filepath.Join(env.dir, "missing.json"))
	assert.Error(t, err)
}

func TestResetCommand(t *testing.T) {
	env := newCLIEnv(t)

	env.mustRun(t, "tasks", "add", "something")

	_, err := env.run(t, "reset")
	assert.ErrorContains(t, err, "--yes")

	env.mustRun(t, "reset", "--yes")
	out := env.mustRun(t, "tasks")
	assert.Contains(t, out, "No tasks.")
}

func TestBotCommandRequiresToken(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("OWNER_CHAT_ID", "")

	_, err := env.run(t, "bot")
	assert.ErrorContains(t, err, "TELEGRAM_TOKEN")
}
