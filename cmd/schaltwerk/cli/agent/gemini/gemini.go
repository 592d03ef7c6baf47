// Package gemini registers the Gemini CLI agent.
package gemini

import (
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent"
)

const name agent.Name = "gemini"

func init() {
	agent.Register(name, func() agent.Agent { return &geminiAgent{} })
}

type geminiAgent struct{}

func (a *geminiAgent) Name() agent.Name      { return name }
func (a *geminiAgent) Description() string   { return "Gemini CLI" }
func (a *geminiAgent) DefaultBinary() string { return "gemini" }

func (a *geminiAgent) BuildArgs(prompt string, skipPermissions bool) []string {
	var args []string
	if skipPermissions {
		args = append(args, "--yolo")
	}
	if prompt != "" {
		args = append(args, "-i", prompt)
	}
	return args
}

func (a *geminiAgent) Env() []string { return nil }
