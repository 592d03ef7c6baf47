// Package cli implements the schaltwerk command line: session creation and
// lifecycle, merge reconciliation, spec and epic management, and agent
// launches. Commands are thin wrappers over the service.Manager engine.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/logging"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/paths"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/service"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/settings"
)

// NewRootCmd builds the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "schaltwerk",
		Short:         "Run multiple coding agents in isolated git worktrees",
		Long:          "Schaltwerk manages parallel agent sessions: each session gets its own branch\nand worktree, and finished work is squash-merged back onto the parent branch.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newCloneCmd())
	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newMergeCmd())
	cmd.AddCommand(newUpdateCmd())
	cmd.AddCommand(newCancelCmd())
	cmd.AddCommand(newReadyCmd())
	cmd.AddCommand(newRenameCmd())
	cmd.AddCommand(newLaunchCmd())
	cmd.AddCommand(newSpecCmd())
	cmd.AddCommand(newEpicCmd())
	cmd.AddCommand(newAgentsCmd())

	return cmd
}

// Execute runs the root command. SilentError exits non-zero without
// reprinting; everything else goes to stderr.
func Execute(ctx context.Context) int {
	err := NewRootCmd().ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var silent *SilentError
	if errors.As(err, &silent) {
		return 1
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}

// env bundles the per-invocation engine. Every command that mutates state
// opens one and closes it on all paths so Shutdown always runs.
type env struct {
	repoPath string
	cfg      *settings.Settings
	mgr      *service.Manager
}

func openEnv(ctx context.Context) (*env, error) {
	repoPath, err := paths.RepoRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := settings.Load(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	logging.Setup(cfg.LogLevel)

	mgr, err := service.NewManager(ctx, repoPath, cfg, service.Options{})
	if err != nil {
		return nil, err
	}
	return &env{repoPath: repoPath, cfg: cfg, mgr: mgr}, nil
}

func (e *env) close() {
	if err := e.mgr.Shutdown(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: shutdown:", err)
	}
}
