package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/jsonutil"
)

func newSpecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spec",
		Short: "Manage draft task specs",
		Long: "Specs are draft task descriptions without a branch or worktree. A spec\n" +
			"is either started, which promotes it to a running session, or deleted.",
	}

	cmd.AddCommand(newSpecCreateCmd())
	cmd.AddCommand(newSpecListCmd())
	cmd.AddCommand(newSpecEditCmd())
	cmd.AddCommand(newSpecStartCmd())
	cmd.AddCommand(newSpecDeleteCmd())

	return cmd
}

func newSpecCreateCmd() *cobra.Command {
	var (
		displayName string
		content     string
		contentFile string
		epicID      string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a draft spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			text := content
			if contentFile != "" {
				data, err := readPromptFile(contentFile)
				if err != nil {
					return err
				}
				text = data
			}

			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			spec, err := e.mgr.CreateSpec(ctx, args[0], displayName, text, epicID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created spec %s (%s)\n", spec.Name, spec.ID[:8])
			return nil
		},
	}

	cmd.Flags().StringVar(&displayName, "display-name", "", "Human-readable spec title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "Spec content")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "Read the content from a file (- for stdin)")
	cmd.Flags().StringVar(&epicID, "epic", "", "Epic id to attach the spec to")

	return cmd
}

func newSpecListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List draft specs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			specs, err := e.mgr.Store().ListSpecs(e.repoPath)
			if err != nil {
				return err
			}

			if asJSON {
				data, err := jsonutil.MarshalIndentWithNewline(specs, "", "  ")
				if err != nil {
					return err
				}
				_, err = w.Write(data)
				return err
			}

			if len(specs) == 0 {
				fmt.Fprintln(w, "No specs.")
				return nil
			}

			sty := newOutputStyles(w)
			for _, s := range specs {
				fmt.Fprintf(w, "%s %s %s\n",
					sty.render(sty.yellow, "◌"),
					sty.render(sty.bold, s.Name),
					sty.render(sty.dim, "· created "+timeAgo(s.CreatedAt)))
				if first, _, _ := strings.Cut(s.Content, "\n"); first != "" {
					if len(first) > 60 {
						first = first[:57] + "..."
					}
					fmt.Fprintf(w, "%s %s\n", sty.render(sty.dim, ">"), first)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newSpecEditCmd() *cobra.Command {
	var (
		content     string
		contentFile string
	)

	cmd := &cobra.Command{
		Use:   "edit <name>",
		Short: "Replace a spec's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			text := content
			if contentFile != "" {
				data, err := readPromptFile(contentFile)
				if err != nil {
					return err
				}
				text = data
			}

			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			spec, err := e.mgr.Store().GetSpecByName(e.repoPath, args[0])
			if err != nil {
				return err
			}
			if err := e.mgr.UpdateSpecContent(ctx, spec.ID, text); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated spec %s\n", spec.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&content, "content", "c", "", "New spec content")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "Read the content from a file (- for stdin)")

	return cmd
}

func newSpecStartCmd() *cobra.Command {
	var (
		agentType       string
		skipPermissions bool
	)

	cmd := &cobra.Command{
		Use:   "start <name>",
		Short: "Promote a spec to a running session",
		Long:  "Create a branch and worktree for the spec and start it as a running\nsession. The spec's content becomes the session's initial prompt.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			spec, err := e.mgr.Store().GetSpecByName(e.repoPath, args[0])
			if err != nil {
				return err
			}
			agent := agentType
			if agent == "" {
				agent = e.cfg.DefaultAgent
			}

			session, err := e.mgr.StartSpecSession(ctx, spec.ID, agent, skipPermissions)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started session %s on branch %s\n", session.Name, session.Branch)
			return nil
		},
	}

	cmd.Flags().StringVar(&agentType, "agent", "", "Agent to record for launches (defaults to configured agent)")
	cmd.Flags().BoolVar(&skipPermissions, "skip-permissions", false, "Record that the agent runs without permission prompts")

	return cmd
}

func newSpecDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a draft spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			spec, err := e.mgr.Store().GetSpecByName(e.repoPath, args[0])
			if err != nil {
				return err
			}
			if err := e.mgr.DeleteSpec(ctx, spec.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted spec %s\n", spec.Name)
			return nil
		},
	}

	return cmd
}
