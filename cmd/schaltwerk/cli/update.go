package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <session>",
		Short: "Reapply a session's commits on top of its parent branch",
		Long: "Rebase the session branch onto the current parent branch tip inside the\n" +
			"session worktree. Refuses when the reapply would conflict.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, args[0])
		},
	}

	return cmd
}

func runUpdate(cmd *cobra.Command, name string) error {
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

	result, err := e.mgr.UpdateSessionFromParent(ctx, session.ID)
	if err != nil {
		return err
	}
	if result.UpToDate {
		fmt.Fprintf(w, "%s is already up to date with %s\n", result.SessionBranch, result.ParentBranch)
		return nil
	}
	fmt.Fprintf(w, "Reapplied %s on top of %s\n", result.SessionBranch, result.ParentBranch)
	return nil
}
