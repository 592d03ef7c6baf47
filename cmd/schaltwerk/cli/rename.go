package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRenameCmd() *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:   "rename <session> <new-name>",
		Short: "Rename a session",
		Long: "Rename a session row. The git branch and worktree path keep their\n" +
			"original names; only the session identity changes.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(cmd, args[0], args[1], displayName)
		},
	}

	cmd.Flags().StringVar(&displayName, "display-name", "", "New human-readable title (defaults to the new name)")

	return cmd
}

func runRename(cmd *cobra.Command, name, newName, displayName string) error {
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
	if displayName == "" {
		displayName = newName
	}

	if err := e.mgr.RenameSession(ctx, session.ID, newName, displayName); err != nil {
		return err
	}
	fmt.Fprintf(w, "Renamed session %s to %s\n", name, newName)
	return nil
}
