package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent"

	// Register the supported agents.
	_ "github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent/claude"
	_ "github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent/gemini"
	_ "github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent/opencode"
)

func newAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List supported agents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			sty := newOutputStyles(w)

			for _, name := range agent.List() {
				ag, err := agent.Get(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s %s %s\n",
					sty.render(sty.agent, string(name)),
					sty.render(sty.dim, "·"),
					ag.Description())
			}
			return nil
		},
	}

	return cmd
}
