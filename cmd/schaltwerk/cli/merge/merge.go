// Package merge implements the reconciliation engine: divergence and
// conflict computation between a session branch and its parent, squash-merge
// command planning, and rebase-style "update from parent".
//
// Compute and Preview never mutate the repository. Only Apply and
// UpdateFromParent run commands that move refs.
package merge

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/gitrepo"
)

// State is the ephemeral computed view over two branch tips. Never persisted.
type State struct {
	SessionBranch string
	ParentBranch  string

	// IsUpToDate means no commits exist on parent that are missing from the
	// session's ancestry.
	IsUpToDate bool

	// HasConflicts means a trial merge of the two tips would conflict.
	HasConflicts bool

	// ConflictingPaths lists the files a merge would conflict on, sorted.
	ConflictingPaths []string
}

// Preview extends State with the concrete command plans.
type Preview struct {
	State

	// SquashCommands stages all session changes as a single commit onto the
	// parent branch. Run in order, in the main repository.
	SquashCommands []Command

	// ReapplyCommands restore the session's own commits on top of an updated
	// parent. Run in order, in the session worktree.
	ReapplyCommands []Command

	// DefaultCommitMessage is the suggested squash commit message.
	DefaultCommitMessage string
}

// Command is one shell step of a plan.
type Command struct {
	Dir  string   `json:"dir"`
	Args []string `json:"args"` // git arguments, "git" implied
}

// Display renders the command the way a user would type it.
func (c Command) Display() string {
	return "git " + strings.Join(c.Args, " ")
}

// Engine computes and applies reconciliation for one repository.
type Engine struct {
	repoPath string
	runner   gitrepo.Runner
}

// NewEngine builds an engine for the repository. A nil runner defaults to the
// host git binary.
func NewEngine(repoPath string, runner gitrepo.Runner) *Engine {
	if runner == nil {
		runner = gitrepo.ExecRunner{}
	}
	return &Engine{repoPath: repoPath, runner: runner}
}

// Compute determines, without mutating the repository, whether sessionBranch
// is up to date with parentBranch and whether merging would conflict.
func (e *Engine) Compute(sessionBranch, parentBranch string) (*State, error) {
	repo, err := gitrepo.Open(e.repoPath)
	if err != nil {
		return nil, err
	}

	sessionTip, err := branchCommit(repo, sessionBranch)
	if err != nil {
		return nil, err
	}
	parentTip, err := branchCommit(repo, parentBranch)
	if err != nil {
		return nil, err
	}

	state := &State{
		SessionBranch: sessionBranch,
		ParentBranch:  parentBranch,
	}

	upToDate, err := parentTip.IsAncestor(sessionTip)
	if err != nil {
		return nil, domain.NewGitOperationError("ancestry check", err)
	}
	state.IsUpToDate = upToDate

	conflicts, err := trialMerge(repo, sessionTip, parentTip)
	if err != nil {
		return nil, err
	}
	sort.Strings(conflicts)
	state.HasConflicts = len(conflicts) > 0
	state.ConflictingPaths = conflicts

	return state, nil
}

// ComputePreview builds the full preview: state plus command plans and the
// default commit message.
func (e *Engine) ComputePreview(session *domain.Session) (*Preview, error) {
	state, err := e.Compute(session.Branch, session.ParentBranch)
	if err != nil {
		return nil, err
	}

	message := DefaultCommitMessage(session)

	return &Preview{
		State: *state,
		SquashCommands: []Command{
			{Dir: e.repoPath, Args: []string{"checkout", session.ParentBranch}},
			{Dir: e.repoPath, Args: []string{"merge", "--squash", session.Branch}},
			{Dir: e.repoPath, Args: []string{"commit", "-m", message}},
		},
		ReapplyCommands: []Command{
			{Dir: session.WorktreePath, Args: []string{"rebase", session.ParentBranch}},
		},
		DefaultCommitMessage: message,
	}, nil
}

// DefaultCommitMessage derives the squash commit message: the first line of
// the initial prompt when present, otherwise "Merge <branch> into <parent>".
func DefaultCommitMessage(session *domain.Session) string {
	if prompt := strings.TrimSpace(session.InitialPrompt); prompt != "" {
		line, _, _ := strings.Cut(prompt, "\n")
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return fmt.Sprintf("Merge %s into %s", session.Branch, session.ParentBranch)
}

// Apply executes a previously computed squash plan in order. After the first
// step mutates refs there is no automatic rollback; a later failure is
// reported for manual recovery. Re-running is only safe when the prior
// attempt definitively failed before any step mutated refs.
func (e *Engine) Apply(ctx context.Context, preview *Preview) error {
	if preview.HasConflicts {
		return &domain.MergeConflictError{
			Files:   preview.ConflictingPaths,
			Message: "merge would conflict",
		}
	}
	for _, cmd := range preview.SquashCommands {
		out, err := e.runner.Run(ctx, cmd.Dir, cmd.Args...)
		if err != nil {
			if files := parseConflictPaths(out); len(files) > 0 {
				return &domain.MergeConflictError{Files: files, Message: "merge conflict during " + cmd.Display()}
			}
			return domain.NewGitOperationError(cmd.Display(), err)
		}
	}
	return nil
}

// UpdateFromParentResult reports the outcome of a rebase onto the parent.
type UpdateFromParentResult struct {
	SessionBranch string
	ParentBranch  string
	// UpToDate means there was nothing to reapply.
	UpToDate bool
}

// UpdateFromParent reapplies the session's commits on top of the current
// parent branch via rebase in the session worktree. On conflict the rebase
// is aborted so the worktree is left clean, and the conflicting paths are
// returned as data.
func (e *Engine) UpdateFromParent(ctx context.Context, session *domain.Session) (*UpdateFromParentResult, error) {
	state, err := e.Compute(session.Branch, session.ParentBranch)
	if err != nil {
		return nil, err
	}
	if state.IsUpToDate {
		return &UpdateFromParentResult{
			SessionBranch: session.Branch,
			ParentBranch:  session.ParentBranch,
			UpToDate:      true,
		}, nil
	}
	if state.HasConflicts {
		return nil, &domain.MergeConflictError{
			Files:   state.ConflictingPaths,
			Message: "updating from " + session.ParentBranch + " would conflict",
		}
	}

	out, err := e.runner.Run(ctx, session.WorktreePath, "rebase", session.ParentBranch)
	if err != nil {
		// Leave the worktree usable; the rebase state is useless to an agent.
		_, _ = e.runner.Run(ctx, session.WorktreePath, "rebase", "--abort") //nolint:errcheck // best-effort
		if files := parseConflictPaths(out); len(files) > 0 {
			return nil, &domain.MergeConflictError{Files: files, Message: "rebase conflict"}
		}
		return nil, domain.NewGitOperationError("rebase "+session.ParentBranch, err)
	}

	return &UpdateFromParentResult{
		SessionBranch: session.Branch,
		ParentBranch:  session.ParentBranch,
	}, nil
}

func branchCommit(repo *git.Repository, branch string) (*object.Commit, error) {
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return nil, domain.NewGitOperationError("resolve branch "+branch, err)
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, domain.NewGitOperationError("resolve commit for "+branch, err)
	}
	return commit, nil
}

// parseConflictPaths extracts file paths from git's
// "CONFLICT (content): Merge conflict in <path>" output lines.
func parseConflictPaths(out string) []string {
	var files []string
	for line := range strings.Lines(out) {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "CONFLICT") {
			continue
		}
		if _, path, found := strings.Cut(line, "Merge conflict in "); found {
			files = append(files, strings.TrimSpace(path))
		}
	}
	sort.Strings(files)
	return files
}
