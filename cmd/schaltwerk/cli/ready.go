package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReadyCmd() *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "ready <session>",
		Short: "Mark a session as reviewed and ready to merge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReady(cmd, args[0], unset)
		},
	}

	cmd.Flags().BoolVar(&unset, "unset", false, "Clear the ready-to-merge flag instead of setting it")

	return cmd
}

func runReady(cmd *cobra.Command, name string, unset bool) error {
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

	if unset {
		if err := e.mgr.UnmarkReady(ctx, session.ID); err != nil {
			return err
		}
		fmt.Fprintf(w, "Session %s is no longer marked ready\n", session.Name)
		return nil
	}

	if err := e.mgr.MarkReady(ctx, session.ID); err != nil {
		return err
	}
	fmt.Fprintf(w, "Session %s marked ready to merge\n", session.Name)
	return nil
}
