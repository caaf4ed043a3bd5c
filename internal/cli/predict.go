package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskflow/internal/classify"
)

func newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict <title...>",
		Short: "Show the guessed priority, category, date, recurrence and reminder for a title",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPredict,
	}
	cmd.Flags().String("now", "", "Reference time (RFC3339), defaults to the current time")
	return cmd
}

func runPredict(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")
	now := time.Now()
	if raw, _ := cmd.Flags().GetString("now"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("--now: %w", err)
		}
		now = t
	}

	p := classify.Predict(title, now)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Title:      %s\n", title)
	fmt.Fprintf(out, "Priority:   %s\n", p.Priority)
	fmt.Fprintf(out, "Category:   %s\n", p.Category)
	if date, ok := p.Date.Get(); ok {
		fmt.Fprintf(out, "Date:       %s\n", date.Format("Mon 2006-01-02"))
	} else {
		fmt.Fprintln(out, "Date:       -")
	}
	fmt.Fprintf(out, "Recurrence: %s\n", p.Recurrence)
	fmt.Fprintf(out, "Reminder:   %t\n", p.Reminder)
	if len(p.Suggestions) > 0 {
		fmt.Fprintln(out, "Suggestions:")
		for _, s := range p.Suggestions {
			fmt.Fprintf(out, "  - %s\n", classify.ApplySuggestion(title, s))
		}
	}
	return nil
}
