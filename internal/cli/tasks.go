package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"taskflow/internal/classify"
	"taskflow/internal/model"
	"taskflow/internal/service"
)

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and edit tasks",
		Args:  cobra.NoArgs,
		RunE:  runTasksList,
	}
	cmd.Flags().String("category", "", "Only tasks in this category")
	cmd.Flags().String("status", string(service.StatusAll), "all, active or completed")
	cmd.Flags().String("search", "", "Match text in title or note")
	cmd.Flags().String("title", "", "Match text in the title only")
	cmd.Flags().String("sort", "", "date, priority or title (default: stored order)")

	add := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a task with every guess applied",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runTasksAdd,
	}
	add.Flags().String("note", "", "Optional note")
	add.Flags().String("priority", "", "Override the guessed priority")
	add.Flags().String("category", "", "Override the guessed category")

	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE:  runTasksEdit,
	}
	edit.Flags().String("title", "", "New title")
	edit.Flags().String("priority", "", "High, Medium or Low")
	edit.Flags().String("category", "", "Existing category name")
	edit.Flags().String("note", "", "New note (empty clears it)")
	edit.Flags().String("date", "", "2006-01-02, \"2006-01-02 15:04\" or RFC3339")
	edit.Flags().String("recurrence", "", "None, Daily, Weekly or Monthly")
	edit.Flags().Bool("reminder", false, "Remind at the task date")

	cmd.AddCommand(add)
	cmd.AddCommand(edit)
	cmd.AddCommand(&cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between done and open",
		Args:  cobra.ExactArgs(1),
		RunE:  runTasksDone,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE:  runTasksRemove,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "move <id> <target-id>",
		Short: "Move a task to the position of another",
		Args:  cobra.ExactArgs(2),
		RunE:  runTasksMove,
	})
	return cmd
}

func runTasksList(cmd *cobra.Command, _ []string) error {
	category, _ := cmd.Flags().GetString("category")
	status, _ := cmd.Flags().GetString("status")
	query, _ := cmd.Flags().GetString("search")
	titleQuery, _ := cmd.Flags().GetString("title")
	sortBy, _ := cmd.Flags().GetString("sort")

	switch service.StatusFilter(status) {
	case service.StatusAll, service.StatusActive, service.StatusCompleted:
	default:
		return fmt.Errorf("unknown status %q", status)
	}

	return withApp(cmd, func(a *app) error {
		tasks := service.Filter(a.tasks.Tasks(), category, service.StatusFilter(status), query)
		if titleQuery != "" {
			tasks = service.Search(tasks, titleQuery)
		}
		if sortBy != "" {
			tasks = service.SortTasks(tasks, service.SortBy(sortBy))
		}
		if len(tasks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
			return nil
		}
		return printTasks(cmd.OutOrStdout(), tasks)
	})
}

func runTasksAdd(cmd *cobra.Command, args []string) error {
	note, _ := cmd.Flags().GetString("note")
	rawPriority, _ := cmd.Flags().GetString("priority")
	category, _ := cmd.Flags().GetString("category")

	return withApp(cmd, func(a *app) error {
		title := strings.Join(args, " ")
		task, err := model.NewTask(title, a.tasks.Now(), classify.OtherCategory, model.PriorityMedium)
		if err != nil {
			return err
		}
		a.tasks.Predict(title).Apply(&task)

		if rawPriority != "" {
			p, err := model.ParsePriority(rawPriority)
			if err != nil {
				return err
			}
			task.Priority = p
		}
		if category != "" {
			c, ok := a.tasks.FindCategory(category)
			if !ok {
				return fmt.Errorf("category %q: %w", category, service.ErrCategoryNotFound)
			}
			task.Category = c.Name
		}
		if note = strings.TrimSpace(note); note != "" {
			task.Note = model.Some(note)
		}

		saved, err := a.tasks.AddTask(cmd.Context(), task)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s, %s)\n", saved.ID, saved.Priority, saved.Category)
		return nil
	})
}

var errNoChanges = errors.New("nothing to change: pass at least one flag")

var (
	editFlags       = []string{"title", "priority", "category", "note", "date", "recurrence", "reminder"}
	editDateLayouts = []string{"2006-01-02 15:04", "2006-01-02"}
)

func runTasksEdit(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	changed := false
	for _, name := range editFlags {
		changed = changed || flags.Changed(name)
	}
	if !changed {
		return errNoChanges
	}

	return withApp(cmd, func(a *app) error {
		task, ok := a.tasks.Task(args[0])
		if !ok {
			return fmt.Errorf("edit %s: %w", args[0], service.ErrTaskNotFound)
		}

		if flags.Changed("title") {
			task.Title, _ = flags.GetString("title")
			task.Title = strings.TrimSpace(task.Title)
		}
		if flags.Changed("priority") {
			raw, _ := flags.GetString("priority")
			p, err := model.ParsePriority(raw)
			if err != nil {
				return err
			}
			task.Priority = p
		}
		if flags.Changed("category") {
			raw, _ := flags.GetString("category")
			c, ok := a.tasks.FindCategory(raw)
			if !ok {
				return fmt.Errorf("category %q: %w", raw, service.ErrCategoryNotFound)
			}
			task.Category = c.Name
		}
		if flags.Changed("note") {
			note, _ := flags.GetString("note")
			task.Note = model.None[string]()
			if note = strings.TrimSpace(note); note != "" {
				task.Note = model.Some(note)
			}
		}
		if flags.Changed("date") {
			raw, _ := flags.GetString("date")
			date, err := parseEditDate(raw, a.cfg.Location)
			if err != nil {
				return err
			}
			task.Date = date
		}
		if flags.Changed("recurrence") {
			raw, _ := flags.GetString("recurrence")
			r, err := model.ParseRecurrence(raw)
			if err != nil {
				return err
			}
			task.Recurrence = r
		}
		if flags.Changed("reminder") {
			task.HasReminder, _ = flags.GetBool("reminder")
		}

		saved, err := a.tasks.UpdateTask(cmd.Context(), task)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s, %s, %s)\n",
			saved.Title, saved.Priority, saved.Category, saved.Date.Format("2006-01-02 15:04"))
		return nil
	})
}

// parseEditDate reads a date in loc, or an RFC3339 timestamp.
func parseEditDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range editDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("--date: cannot parse %q", raw)
}

func runTasksDone(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		task, err := a.tasks.ToggleDone(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		state := "open"
		if task.IsDone {
			state = "done"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", task.Title, state)
		return nil
	})
}

func runTasksRemove(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		if err := a.tasks.DeleteTask(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Deleted.")
		return nil
	})
}

func runTasksMove(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		return a.tasks.MoveTask(cmd.Context(), args[0], args[1])
	})
}

func printTasks(out io.Writer, tasks []model.Task) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tPRIORITY\tCATEGORY\tDATE\tREPEATS\tTITLE")
	for _, t := range tasks {
		done := " "
		if t.IsDone {
			done = "x"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, done, t.Priority, t.Category, t.Date.Format("2006-01-02 15:04"), t.Recurrence, t.Title)
	}
	return w.Flush()
}
