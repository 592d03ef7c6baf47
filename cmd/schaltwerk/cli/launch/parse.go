package launch

import (
	"strings"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/agent"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
)

// ParsedCommand is the result of parsing a raw "cd <path> && <agent> [args]"
// launch command.
type ParsedCommand struct {
	Cwd       string
	AgentName agent.Name
	// Binary is the token the command named the agent with: the bare agent
	// name or an explicit path ending in it.
	Binary string
	Args   []string
}

// ParseAgentCommand parses a raw launch command of the form
// "cd <path> && <agent> [args]".
//
// The string is split on the FIRST literal " && " only, so later occurrences
// inside agent arguments (e.g. a prompt containing "&&") survive intact. The
// cwd portion is unquoted when wrapped in matching quotes. The agent token
// must be a supported agent identifier, either exactly or as the last path
// element, or the command is rejected.
func ParseAgentCommand(raw string) (*ParsedCommand, error) {
	cdPart, agentPart, found := strings.Cut(raw, " && ")
	if !found {
		return nil, &domain.InvalidInputError{Field: "command", Message: `expected "cd <path> && <agent> [args]"`}
	}

	cdPart = strings.TrimSpace(cdPart)
	cwd, ok := strings.CutPrefix(cdPart, "cd ")
	if !ok {
		return nil, &domain.InvalidInputError{Field: "command", Message: `must start with "cd "`}
	}
	cwd = unquote(strings.TrimSpace(cwd))
	if cwd == "" {
		return nil, &domain.InvalidInputError{Field: "command", Message: "empty working directory"}
	}

	tokens, err := splitShellWords(strings.TrimSpace(agentPart))
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, &domain.InvalidInputError{Field: "command", Message: "missing agent"}
	}

	name, err := matchAgent(tokens[0])
	if err != nil {
		return nil, err
	}

	return &ParsedCommand{
		Cwd:       cwd,
		AgentName: name,
		Binary:    tokens[0],
		Args:      tokens[1:],
	}, nil
}

// matchAgent validates the agent token against the manifest: exact name or a
// path whose last element is the name.
func matchAgent(token string) (agent.Name, error) {
	candidate := token
	if idx := strings.LastIndex(token, "/"); idx >= 0 {
		candidate = token[idx+1:]
	}
	for _, name := range agent.List() {
		if candidate == string(name) {
			return name, nil
		}
	}
	return "", &domain.InvalidInputError{Field: "agent", Message: "unsupported agent " + token}
}

// unquote strips one layer of matching single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// splitShellWords tokenizes a command fragment with shell-like quoting:
// single and double quotes group words, backslash escapes the next character
// outside single quotes.
func splitShellWords(s string) ([]string, error) {
	var words []string
	var current strings.Builder
	inWord := false
	var quote byte

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote == '\'':
			if c == '\'' {
				quote = 0
			} else {
				current.WriteByte(c)
			}
		case quote == '"':
			switch c {
			case '"':
				quote = 0
			case '\\':
				if i+1 < len(s) {
					i++
					current.WriteByte(s[i])
				}
			default:
				current.WriteByte(c)
			}
		case c == '\'' || c == '"':
			quote = c
			inWord = true
		case c == '\\':
			if i+1 < len(s) {
				i++
				current.WriteByte(s[i])
				inWord = true
			}
		case c == ' ' || c == '\t':
			if inWord {
				words = append(words, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteByte(c)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, &domain.InvalidInputError{Field: "command", Message: "unterminated quote"}
	}
	if inWord {
		words = append(words, current.String())
	}
	return words, nil
}
