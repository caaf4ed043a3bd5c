package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"taskflow/internal/service"
)

func newCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories with task counts",
		Args:  cobra.NoArgs,
		RunE:  runCategoriesList,
	}

	add := &cobra.Command{
		Use:   "add <name...>",
		Short: "Add a custom category",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCategoriesAdd,
	}
	add.Flags().String("icon", "folder.fill", "Icon name")
	add.Flags().String("color", "#8E8E93", "Color as #RRGGBB")

	cmd.AddCommand(add)
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <name...>",
		Short: "Delete a category and every task in it",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCategoriesRemove,
	})
	return cmd
}

func runCategoriesList(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDONE\tTOTAL\tCOLOR\tCUSTOM")
		for _, c := range a.tasks.Categories() {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%t\n", c.Name, c.CompletedCount, c.TaskCount, c.Color, c.IsCustom)
		}
		return w.Flush()
	})
}

func runCategoriesAdd(cmd *cobra.Command, args []string) error {
	icon, _ := cmd.Flags().GetString("icon")
	color, _ := cmd.Flags().GetString("color")

	return withApp(cmd, func(a *app) error {
		c, err := a.tasks.AddCategory(cmd.Context(), strings.Join(args, " "), icon, color)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added category %s\n", c.Name)
		return nil
	})
}

func runCategoriesRemove(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")
	return withApp(cmd, func(a *app) error {
		c, ok := a.tasks.FindCategory(name)
		if !ok {
			return fmt.Errorf("category %q: %w", name, service.ErrCategoryNotFound)
		}
		n, err := a.tasks.DeleteCategory(cmd.Context(), c.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s and %d tasks\n", c.Name, n)
		return nil
	})
}
