package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// outputStyles holds pre-built lipgloss styles and terminal metadata.
type outputStyles struct {
	colorEnabled bool
	width        int

	green  lipgloss.Style
	red    lipgloss.Style
	yellow lipgloss.Style
	bold   lipgloss.Style
	dim    lipgloss.Style
	cyan   lipgloss.Style
	agent  lipgloss.Style // amber for agent names
}

// newOutputStyles creates styles appropriate for the output writer.
func newOutputStyles(w io.Writer) outputStyles {
	s := outputStyles{
		colorEnabled: shouldUseColor(w),
		width:        getTerminalWidth(),
	}

	if s.colorEnabled {
		s.green = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
		s.red = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
		s.yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
		s.bold = lipgloss.NewStyle().Bold(true)
		s.dim = lipgloss.NewStyle().Faint(true)
		s.cyan = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
		s.agent = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	}

	return s
}

// render applies a style to text only when color is enabled.
func (s outputStyles) render(style lipgloss.Style, text string) string {
	if !s.colorEnabled {
		return text
	}
	return style.Render(text)
}

// shouldUseColor returns true if the writer supports color output.
func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// getTerminalWidth returns the terminal width, capped at 80 with a fallback of 60.
func getTerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		if w > 80 {
			return 80
		}
		return w
	}
	return 60
}

// horizontalRule renders a dimmed horizontal rule of the given width.
func (s outputStyles) horizontalRule(width int) string {
	return s.render(s.dim, strings.Repeat("─", width))
}

// sectionRule renders a section header like: ── Sessions ────────────
func (s outputStyles) sectionRule(label string, width int) string {
	trailing := width - len("── ") - len(label) - 1
	if trailing < 1 {
		trailing = 1
	}

	var b strings.Builder
	b.WriteString(s.render(s.dim, "── "))
	b.WriteString(s.render(s.dim, label))
	b.WriteString(" ")
	b.WriteString(s.render(s.dim, strings.Repeat("─", trailing)))
	return b.String()
}

// timeAgo formats a time as a human-readable relative duration.
func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
