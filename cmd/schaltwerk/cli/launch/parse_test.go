package launch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent"

	_ "github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent/claude"
	_ "github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent/gemini"
	_ "github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent/opencode"
)

func TestParseAgentCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		wantCwd   string
		wantAgent agent.Name
		wantBin   string
		wantArgs  []string
	}{
		{
			name:      "simple",
			raw:       "cd /tmp/work && claude",
			wantCwd:   "/tmp/work",
			wantAgent: "claude",
			wantBin:   "claude",
			wantArgs:  nil,
		},
		{
			name:      "with_flags",
			raw:       "cd /tmp/work && claude --dangerously-skip-permissions",
			wantCwd:   "/tmp/work",
			wantAgent: "claude",
			wantBin:   "claude",
			wantArgs:  []string{"--dangerously-skip-permissions"},
		},
		{
			name:      "quoted_cwd_with_spaces",
			raw:       `cd "/tmp/my work" && claude`,
			wantCwd:   "/tmp/my work",
			wantAgent: "claude",
			wantBin:   "claude",
			wantArgs:  nil,
		},
		{
			name:      "explicit_binary_path",
			raw:       "cd /tmp/work && /usr/local/bin/claude -d",
			wantCwd:   "/tmp/work",
			wantAgent: "claude",
			wantBin:   "/usr/local/bin/claude",
			wantArgs:  []string{"-d"},
		},
		{
			name:      "quoted_double_ampersand_survives",
			raw:       `cd /tmp/work && claude -d "Check A && B"`,
			wantCwd:   "/tmp/work",
			wantAgent: "claude",
			wantBin:   "claude",
			wantArgs:  []string{"-d", "Check A && B"},
		},
		{
			name:      "single_quoted_argument",
			raw:       `cd /tmp/work && opencode --prompt 'do the thing'`,
			wantCwd:   "/tmp/work",
			wantAgent: "opencode",
			wantBin:   "opencode",
			wantArgs:  []string{"--prompt", "do the thing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			parsed, err := ParseAgentCommand(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCwd, parsed.Cwd)
			assert.Equal(t, tt.wantAgent, parsed.AgentName)
			assert.Equal(t, tt.wantBin, parsed.Binary)
			assert.Equal(t, tt.wantArgs, parsed.Args)
		})
	}
}

func TestParseAgentCommand_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "missing_separator", raw: "claude --help"},
		{name: "missing_cd_prefix", raw: "pushd /tmp && claude"},
		{name: "empty_cwd", raw: "cd  && claude"},
		{name: "missing_agent", raw: "cd /tmp/work && "},
		{name: "unsupported_agent", raw: "cd /tmp/work && vim"},
		{name: "agent_name_inside_path_dir", raw: "cd /tmp/work && /opt/claude/helper"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseAgentCommand(tt.raw)
			assert.Error(t, err)
		})
	}
}
