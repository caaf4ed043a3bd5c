package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newRootCmd assembles the command tree. Subcommands are built fresh on each
// call so flag state never leaks between runs.
func newRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskflow",
		Short: "TaskFlow - tasks with guessed priority, category, date and reminders",
		Long: `TaskFlow keeps a task list and a set of categories in a local SQLite file.

New task titles are classified on the fly: priority, category, due date,
recurrence and whether a reminder is needed. Run "taskflow bot" to serve the
Telegram front-end, or use the subcommands below directly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("db", "", "SQLite file (overrides DATABASE_URL)")

	root.AddCommand(newBotCmd())
	root.AddCommand(newPredictCmd())
	root.AddCommand(newTasksCmd())
	root.AddCommand(newCategoriesCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newResetCmd())

	root.Version = version
	return root
}

// Execute runs the root command
func Execute(version string) error {
	if err := newRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
