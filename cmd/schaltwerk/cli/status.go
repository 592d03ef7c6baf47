package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/jsonutil"
)

func newStatusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status <session>",
		Short: "Show one session in detail",
		Long:  "Show a session's branches, worktree, diff stats, and whether it could merge cleanly right now.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatusCmd(cmd, args[0], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func runStatusCmd(cmd *cobra.Command, name string, asJSON bool) error {
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

	if asJSON {
		data, err := jsonutil.MarshalIndentWithNewline(session, "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	sty := newOutputStyles(w)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", sty.render(sty.bold, session.Name), sty.render(sty.dim, session.ID[:8]))
	if session.DisplayName != "" {
		fmt.Fprintln(w, sty.render(sty.dim, session.DisplayName))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "State:    %s / %s\n", session.Status, session.State)
	fmt.Fprintf(w, "Branch:   %s\n", sty.render(sty.cyan, session.Branch))
	fmt.Fprintf(w, "Parent:   %s\n", session.ParentBranch)
	if session.WorktreePath != "" {
		fmt.Fprintf(w, "Worktree: %s\n", session.WorktreePath)
	}
	if session.OriginalAgentType != "" {
		fmt.Fprintf(w, "Agent:    %s\n", sty.render(sty.agent, session.OriginalAgentType))
	}
	if session.EpicID != "" {
		fmt.Fprintf(w, "Epic:     %s\n", session.EpicID)
	}

	if stats, err := e.mgr.StatsCache().Get(ctx, session); err == nil && stats != nil {
		fmt.Fprintf(w, "Diff:     +%d/-%d lines\n", stats.LinesAdded, stats.LinesRemoved)
	}

	// Merge feasibility only applies once a worktree exists.
	if session.State != domain.StateSpec && session.Status == domain.StatusActive {
		fmt.Fprintln(w)
		preview, err := e.mgr.ComputeMergePreview(ctx, session.ID)
		if err != nil {
			fmt.Fprintln(w, sty.render(sty.dim, "merge state unavailable: "+err.Error()))
			return nil
		}
		switch {
		case preview.HasConflicts:
			fmt.Fprintln(w, sty.render(sty.red, "✕ merge would conflict:"))
			for _, p := range preview.ConflictingPaths {
				fmt.Fprintf(w, "  %s\n", p)
			}
		case preview.IsUpToDate:
			fmt.Fprintln(w, sty.render(sty.green, "● up to date with "+session.ParentBranch+", merges cleanly"))
		default:
			fmt.Fprintln(w, sty.render(sty.yellow, "● behind "+session.ParentBranch+", merges cleanly"))
		}
	}

	return nil
}
