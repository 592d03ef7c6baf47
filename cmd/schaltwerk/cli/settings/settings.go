// Package settings provides configuration loading for schaltwerk.
// It is separate from cli so lower-level packages can import it without
// creating an import cycle (cli imports everything).
package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/paths"
)

// DefaultBranchPrefix is prepended to session names to form branch names.
const DefaultBranchPrefix = "schaltwerk"

// Settings represents the .schaltwerk/settings.json configuration.
type Settings struct {
	// BranchPrefix is prepended to session names to form branch names
	// (e.g. "schaltwerk" -> branch "schaltwerk/alpha"). Defaults to "schaltwerk".
	BranchPrefix string `json:"branch_prefix,omitempty"`

	// BaseBranch is the default parent branch for new sessions.
	// Defaults to "main".
	BaseBranch string `json:"base_branch,omitempty"`

	// DefaultAgent is the agent used when a create request does not name one.
	DefaultAgent string `json:"default_agent,omitempty"`

	// LogLevel sets the logging verbosity (debug, info, warn, error).
	// Can be overridden by SCHALTWERK_LOG_LEVEL. Defaults to "info".
	LogLevel string `json:"log_level,omitempty"`

	// SkipPermissions passes the permission-skip flag to launched agents.
	SkipPermissions bool `json:"skip_permissions,omitempty"`

	// Telemetry controls anonymous usage analytics.
	// nil = not asked yet, true = opted in, false = opted out.
	Telemetry *bool `json:"telemetry,omitempty"`
}

// Load loads settings from .schaltwerk/settings.json in the given repository,
// then applies any overrides from .schaltwerk/settings.local.json.
// Returns defaults if neither file exists.
func Load(repoPath string) (*Settings, error) {
	s, err := loadFromFile(paths.SettingsPath(repoPath))
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	localData, err := os.ReadFile(paths.SettingsLocalPath(repoPath)) //nolint:gosec // path derived from repo root
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading local settings file: %w", err)
		}
	} else if err := mergeJSON(s, localData); err != nil {
		return nil, fmt.Errorf("merging local settings: %w", err)
	}

	return s, nil
}

func loadFromFile(filePath string) (*Settings, error) {
	s := &Settings{
		BranchPrefix: DefaultBranchPrefix,
		BaseBranch:   "main",
		DefaultAgent: "claude",
		LogLevel:     "info",
	}

	data, err := os.ReadFile(filePath) //nolint:gosec // path is from caller
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("%w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("parsing settings file: %w", err)
	}

	if s.BranchPrefix == "" {
		s.BranchPrefix = DefaultBranchPrefix
	}
	if s.BaseBranch == "" {
		s.BaseBranch = "main"
	}
	return s, nil
}

// mergeJSON applies non-empty fields from data over s.
func mergeJSON(s *Settings, data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(s)
}

// SessionBranch returns the branch name for a session name under the
// configured prefix.
func (s *Settings) SessionBranch(name string) string {
	return s.BranchPrefix + "/" + name
}

// TelemetryEnabled reports whether the user opted in to telemetry.
func (s *Settings) TelemetryEnabled() bool {
	return s.Telemetry != nil && *s.Telemetry
}
