// Package claude registers the Claude Code agent.
package claude

import (
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent"
)

const name agent.Name = "claude"

func init() {
	agent.Register(name, func() agent.Agent { return &claudeAgent{} })
}

type claudeAgent struct{}

func (a *claudeAgent) Name() agent.Name      { return name }
func (a *claudeAgent) Description() string   { return "Claude Code" }
func (a *claudeAgent) DefaultBinary() string { return "claude" }

func (a *claudeAgent) BuildArgs(prompt string, skipPermissions bool) []string {
	var args []string
	if skipPermissions {
		args = append(args, "--dangerously-skip-permissions")
	}
	if prompt != "" {
		args = append(args, prompt)
	}
	return args
}

func (a *claudeAgent) Env() []string { return nil }
