package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMergeCmd() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "merge <session>",
		Short: "Squash-merge a session onto its parent branch",
		Long: "Show the merge plan for a session: the squash commands and whether they\n" +
			"would conflict. With --apply, run the plan and retire the session.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, args[0], apply)
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Run the merge instead of only previewing it")

	return cmd
}

func runMerge(cmd *cobra.Command, name string, apply bool) error {
	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	session, err := e.mgr.Store().GetSessionByName(e.repoPath, name)
	if err != nil {
		return err
	}

	if !apply {
		preview, err := e.mgr.ComputeMergePreview(ctx, session.ID)
		if err != nil {
			return err
		}

		sty := newOutputStyles(w)
		if preview.HasConflicts {
			fmt.Fprintln(w, sty.render(sty.red, "✕ merge would conflict:"))
			for _, p := range preview.ConflictingPaths {
				fmt.Fprintf(w, "  %s\n", p)
			}
			return nil
		}

		fmt.Fprintf(w, "Squash plan for %s → %s:\n", preview.SessionBranch, preview.ParentBranch)
		for _, c := range preview.SquashCommands {
			fmt.Fprintf(w, "  %s\n", c.Display())
		}
		fmt.Fprintf(w, "Commit message: %q\n", preview.DefaultCommitMessage)
		fmt.Fprintln(w, "Run again with --apply to merge.")
		return nil
	}

	outcome, err := e.mgr.ApplyMerge(ctx, session.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Merged %s into %s\n", outcome.SessionBranch, outcome.ParentBranch)
	fmt.Fprintf(w, "Commit: %q\n", outcome.CommitMessage)
	return nil
}
