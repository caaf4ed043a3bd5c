package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show completion rate and breakdowns by priority and category",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		s := a.tasks.Summary()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Tasks: %d  Completed: %d  Rate: %.0f%%\n", s.Total, s.Completed, s.CompletionRate*100)

		fmt.Fprintln(out, "\nBy priority:")
		for _, p := range s.Priorities {
			fmt.Fprintf(out, "  %-7s %d\n", p.Priority, p.Count)
		}

		if len(s.Categories) > 0 {
			fmt.Fprintln(out, "\nBy category:")
			for _, c := range s.Categories {
				fmt.Fprintf(out, "  %-14s %d/%d\n", c.Name, c.Completed, c.Total)
			}
		}
		return nil
	})
}
