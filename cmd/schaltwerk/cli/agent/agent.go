// Package agent provides the manifest of supported coding agents. The launch
// coordinator validates parsed commands against it and resolves the binary,
// default arguments and environment an agent is started with.
package agent

// Name is the agent registry key (e.g. "claude", "opencode").
type Name string

// Agent describes one supported coding agent.
type Agent interface {
	// Name returns the registry key. Commands reference agents by this name
	// or by a path whose last element equals it.
	Name() Name

	// Description returns a human-readable description for UI.
	Description() string

	// DefaultBinary returns the binary invoked when the user did not give an
	// explicit path.
	DefaultBinary() string

	// BuildArgs returns the argument list for launching the agent with the
	// given prompt. An empty prompt launches interactively.
	BuildArgs(prompt string, skipPermissions bool) []string

	// Env returns extra environment entries ("KEY=VALUE") for the launch.
	Env() []string
}
