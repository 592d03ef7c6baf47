// Package opencode registers the OpenCode agent.
package opencode

import (
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent"
)

const name agent.Name = "opencode"

func init() {
	agent.Register(name, func() agent.Agent { return &opencodeAgent{} })
}

type opencodeAgent struct{}

func (a *opencodeAgent) Name() agent.Name      { return name }
func (a *opencodeAgent) Description() string   { return "OpenCode" }
func (a *opencodeAgent) DefaultBinary() string { return "opencode" }

func (a *opencodeAgent) BuildArgs(prompt string, _ bool) []string {
	if prompt == "" {
		return nil
	}
	return []string{"--prompt", prompt}
}

func (a *opencodeAgent) Env() []string { return nil }
