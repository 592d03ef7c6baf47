package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
)

func newEpicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epic",
		Short: "Manage epics",
		Long: "Epics group related sessions and specs. Deleting an epic only clears\n" +
			"the grouping; the sessions themselves are untouched.",
	}

	cmd.AddCommand(newEpicCreateCmd())
	cmd.AddCommand(newEpicListCmd())
	cmd.AddCommand(newEpicDeleteCmd())

	return cmd
}

func newEpicCreateCmd() *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an epic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			epic, err := e.mgr.CreateEpic(ctx, args[0], color)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created epic %s (%s)\n", epic.Name, epic.ID[:8])
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "Display color for the epic")

	return cmd
}

func newEpicListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List epics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			epics, err := e.mgr.Store().ListEpics(e.repoPath)
			if err != nil {
				return err
			}
			if len(epics) == 0 {
				fmt.Fprintln(w, "No epics.")
				return nil
			}

			sty := newOutputStyles(w)
			for _, epic := range epics {
				fmt.Fprintf(w, "%s %s %s\n",
					sty.render(sty.bold, epic.Name),
					sty.render(sty.dim, "·"),
					sty.render(sty.dim, epic.ID))
			}
			return nil
		},
	}

	return cmd
}

func newEpicDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an epic, keeping its sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			epic, err := findEpicByName(e, args[0])
			if err != nil {
				return err
			}
			if err := e.mgr.DeleteEpic(ctx, epic.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted epic %s\n", epic.Name)
			return nil
		},
	}

	return cmd
}

func findEpicByName(e *env, name string) (*domain.Epic, error) {
	epics, err := e.mgr.Store().ListEpics(e.repoPath)
	if err != nil {
		return nil, err
	}
	for _, epic := range epics {
		if epic.Name == name || epic.ID == name {
			return epic, nil
		}
	}
	return nil, domain.ErrEpicNotFound
}
