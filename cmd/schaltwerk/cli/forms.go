package cli

import (
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// NewAccessibleForm builds a huh form that falls back to the accessible
// (plain prompt) renderer when stdout is not a TTY or when the user asked
// for it via ACCESSIBLE.
func NewAccessibleForm(groups ...*huh.Group) *huh.Form {
	accessible := os.Getenv("ACCESSIBLE") != "" || !term.IsTerminal(int(os.Stdout.Fd()))
	return huh.NewForm(groups...).WithAccessible(accessible)
}

// confirm asks a yes/no question, defaulting to no. Non-interactive callers
// pass force flags instead of answering prompts.
func confirm(title, description string) (bool, error) {
	ok := false
	form := NewAccessibleForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}
