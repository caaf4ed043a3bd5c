package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every task and restore the default categories",
		Args:  cobra.NoArgs,
		RunE:  runReset,
	}
	cmd.Flags().Bool("yes", false, "Confirm the reset")
	return cmd
}

func runReset(cmd *cobra.Command, _ []string) error {
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		return errors.New("refusing to reset without --yes")
	}
	return withApp(cmd, func(a *app) error {
		a.tasks.Reset(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "All tasks deleted; default categories restored.")
		return nil
	})
}
