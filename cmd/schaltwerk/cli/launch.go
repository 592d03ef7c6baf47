package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/launch"
)

func newLaunchCmd() *cobra.Command {
	var (
		terminalID string
		noPrompt   bool
	)

	cmd := &cobra.Command{
		Use:   "launch <session>",
		Short: "Launch the session's agent in a terminal",
		Long: "Start the session's recorded agent inside its worktree. Concurrent\n" +
			"launches into the same terminal id are serialized; the terminal is\n" +
			"replaced when it already exists.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, args[0], terminalID, noPrompt)
		},
	}

	cmd.Flags().StringVar(&terminalID, "terminal-id", "", "Terminal id (defaults to session-<name>)")
	cmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "Launch interactively without the initial prompt")

	return cmd
}

func runLaunch(cmd *cobra.Command, name, terminalID string, noPrompt bool) error {
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
	if session.State == domain.StateSpec {
		return &domain.InvalidStateError{Current: session.State, Expected: domain.StateRunning}
	}

	agentName := session.OriginalAgentType
	if agentName == "" {
		agentName = e.cfg.DefaultAgent
	}
	ag, err := agent.Get(agent.Name(agentName))
	if err != nil {
		return err
	}

	prompt := session.InitialPrompt
	if noPrompt {
		prompt = ""
	}
	command := buildLaunchCommand(session.WorktreePath, ag, prompt, session.OriginalSkipPermissions)

	if terminalID == "" {
		terminalID = "session-" + session.Name
	}

	shellCommand, err := e.mgr.LaunchInTerminal(ctx, terminalID, launch.Spec{
		Command: command,
		Env:     ag.Env(),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Launched %s in terminal %s\n", agentName, terminalID)
	fmt.Fprintf(w, "Command: %s\n", shellCommand)
	return nil
}

// buildLaunchCommand assembles the "cd <path> && <agent> [args]" string the
// coordinator parses back. Arguments with whitespace are double-quoted.
func buildLaunchCommand(worktreePath string, ag agent.Agent, prompt string, skipPermissions bool) string {
	var b strings.Builder
	b.WriteString("cd ")
	b.WriteString(quoteArg(worktreePath))
	b.WriteString(" && ")
	b.WriteString(string(ag.Name()))
	for _, arg := range ag.BuildArgs(prompt, skipPermissions) {
		b.WriteString(" ")
		b.WriteString(quoteArg(arg))
	}
	return b.String()
}

func quoteArg(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"'") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}
