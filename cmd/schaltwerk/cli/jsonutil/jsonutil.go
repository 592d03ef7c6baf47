// Package jsonutil provides small JSON encoding helpers shared across packages.
package jsonutil

import "encoding/json"

// MarshalIndentWithNewline marshals v with indentation and a trailing newline,
// matching how git-adjacent tools write JSON files to disk.
func MarshalIndentWithNewline(v any, prefix, indent string) ([]byte, error) {
	data, err := json.MarshalIndent(v, prefix, indent)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
