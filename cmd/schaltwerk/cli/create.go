package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/service"
)

func newCreateCmd() *cobra.Command {
	var (
		displayName     string
		parentBranch    string
		prompt          string
		promptFile      string
		epicID          string
		agentType       string
		skipPermissions bool
		versions        int
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new agent session",
		Long: "Create a session with its own branch and worktree, checked out from the\n" +
			"parent branch tip. With --versions N, creates N sessions from the same\n" +
			"request as name_v1..name_vN.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, args[0], createFlags{
				displayName:     displayName,
				parentBranch:    parentBranch,
				prompt:          prompt,
				promptFile:      promptFile,
				epicID:          epicID,
				agentType:       agentType,
				skipPermissions: skipPermissions,
				versions:        versions,
			})
		},
	}

	cmd.Flags().StringVar(&displayName, "display-name", "", "Human-readable session title")
	cmd.Flags().StringVar(&parentBranch, "parent", "", "Parent branch (defaults to the configured base branch)")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Initial prompt for the agent")
	cmd.Flags().StringVar(&promptFile, "prompt-file", "", "Read the initial prompt from a file (- for stdin)")
	cmd.Flags().StringVar(&epicID, "epic", "", "Epic id to attach the session to")
	cmd.Flags().StringVar(&agentType, "agent", "", "Agent to record for launches (defaults to configured agent)")
	cmd.Flags().BoolVar(&skipPermissions, "skip-permissions", false, "Record that the agent runs without permission prompts")
	cmd.Flags().IntVar(&versions, "versions", 1, "Number of session variants to create from the same request")

	// Provide a helpful error when --agent is used without a value
	defaultFlagErr := cmd.FlagErrorFunc()
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		var valErr *pflag.ValueRequiredError
		if errors.As(err, &valErr) && valErr.GetSpecifiedName() == "agent" {
			names := make([]string, 0, len(agent.List()))
			for _, n := range agent.List() {
				names = append(names, string(n))
			}
			fmt.Fprintf(c.ErrOrStderr(), "--agent requires a value. Available agents: %s\n",
				strings.Join(names, ", "))
			return NewSilentError(errors.New("missing agent name"))
		}
		return defaultFlagErr(c, err)
	})

	return cmd
}

type createFlags struct {
	displayName     string
	parentBranch    string
	prompt          string
	promptFile      string
	epicID          string
	agentType       string
	skipPermissions bool
	versions        int
}

func runCreate(cmd *cobra.Command, name string, flags createFlags) error {
	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	if flags.versions < 1 {
		return fmt.Errorf("--versions must be at least 1, got %d", flags.versions)
	}

	prompt := flags.prompt
	if flags.promptFile != "" {
		data, err := readPromptFile(flags.promptFile)
		if err != nil {
			return err
		}
		prompt = data
	}

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	agentType := flags.agentType
	if agentType == "" {
		agentType = e.cfg.DefaultAgent
	}

	base := service.CreateSessionOptions{
		DisplayName:     flags.displayName,
		ParentBranch:    flags.parentBranch,
		InitialPrompt:   prompt,
		EpicID:          flags.epicID,
		AgentType:       agentType,
		SkipPermissions: flags.skipPermissions,
	}

	if flags.versions == 1 {
		opts := base
		opts.Name = name
		session, err := e.mgr.CreateSession(ctx, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Created session %s on branch %s\n", session.Name, session.Branch)
		fmt.Fprintf(w, "Worktree: %s\n", session.WorktreePath)
		return nil
	}

	// Multi-variant creation: all versions share a group id so the UI can
	// present them side by side. Earlier variants survive a later failure.
	for i := 1; i <= flags.versions; i++ {
		opts := base
		opts.Name = fmt.Sprintf("%s_v%d", name, i)
		opts.VersionGroupID = name
		opts.VersionNumber = i
		session, err := e.mgr.CreateSession(ctx, opts)
		if err != nil {
			return fmt.Errorf("creating version %d of %d: %w", i, flags.versions, err)
		}
		fmt.Fprintf(w, "Created session %s on branch %s\n", session.Name, session.Branch)
	}
	return nil
}

func readPromptFile(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied prompt file path
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file: %w", err)
	}
	return string(data), nil
}
