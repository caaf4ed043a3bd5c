package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskflow/internal/transfer"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write every task as a JSON document (stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExport,
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		if len(args) == 1 {
			tasks := a.tasks.Tasks()
			if err := transfer.WriteFile(args[0], tasks); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks to %s\n", len(tasks), args[0])
			return nil
		}
		data, err := a.tasks.ExportTasks()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	})
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Append the tasks of a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
	cmd.Flags().Bool("dry-run", false, "Validate the document without importing it")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		tasks, err := transfer.ReadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s holds %d valid tasks\n", args[0], len(tasks))
		return nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	return withApp(cmd, func(a *app) error {
		n, err := a.tasks.ImportTasks(cmd.Context(), data)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks\n", n)
		return nil
	})
}
