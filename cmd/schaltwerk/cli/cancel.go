package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newCancelCmd() *cobra.Command {
	var (
		force      bool
		keepBranch bool
	)

	cmd := &cobra.Command{
		Use:   "cancel <session>",
		Short: "Cancel a session and remove its worktree",
		Long: "Cancel a session: the worktree is removed and, unless --keep-branch is\n" +
			"given, the session branch is deleted. Uncommitted work in the worktree\n" +
			"is lost, so this asks for confirmation unless --force is given.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCancel(cmd, args[0], force, keepBranch)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&keepBranch, "keep-branch", false, "Keep the session branch after removing the worktree")

	return cmd
}

func runCancel(cmd *cobra.Command, name string, force, keepBranch bool) error {
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

	if !force {
		desc := fmt.Sprintf("Worktree %s will be removed.", session.WorktreePath)
		if !keepBranch {
			desc += fmt.Sprintf(" Branch %s will be deleted.", session.Branch)
		}
		ok, err := confirm("Cancel session "+session.Name+"?", desc)
		if err != nil {
			return fmt.Errorf("confirmation prompt: %w", err)
		}
		if !ok {
			return NewSilentError(errors.New("cancelled by user"))
		}
	}

	if err := e.mgr.CancelSession(ctx, session.ID, keepBranch); err != nil {
		return err
	}
	fmt.Fprintf(w, "Cancelled session %s\n", session.Name)
	return nil
}
