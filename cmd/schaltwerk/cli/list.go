package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/jsonutil"
)

func newListCmd() *cobra.Command {
	var (
		all     bool
		asJSON  bool
		epicID  string
		reviews bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		Long:  "List active sessions. Cancelled and merged sessions are hidden unless --all is given.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, listFlags{all: all, asJSON: asJSON, epicID: epicID, reviews: reviews})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include cancelled and merged sessions")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&epicID, "epic", "", "Only sessions attached to this epic")
	cmd.Flags().BoolVar(&reviews, "reviewed", false, "Only sessions marked ready to merge")

	return cmd
}

type listFlags struct {
	all     bool
	asJSON  bool
	epicID  string
	reviews bool
}

func runList(cmd *cobra.Command, flags listFlags) error {
	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	sessions, err := e.mgr.Store().ListSessions(e.repoPath)
	if err != nil {
		return err
	}

	var filtered []*domain.Session
	for _, s := range sessions {
		if !flags.all && s.Status != domain.StatusActive {
			continue
		}
		if flags.epicID != "" && s.EpicID != flags.epicID {
			continue
		}
		if flags.reviews && !s.ReadyToMerge {
			continue
		}
		filtered = append(filtered, s)
	}

	if flags.asJSON {
		data, err := jsonutil.MarshalIndentWithNewline(filtered, "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	if len(filtered) == 0 {
		fmt.Fprintln(w, "No sessions. Run `schaltwerk create <name>` to start one.")
		return nil
	}

	sty := newOutputStyles(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, sty.sectionRule("Sessions", sty.width))
	fmt.Fprintln(w)

	for _, s := range filtered {
		writeSessionLine(ctx, w, sty, e, s)
	}

	fmt.Fprintln(w, sty.horizontalRule(sty.width))
	fmt.Fprintln(w, sty.render(sty.dim, fmt.Sprintf("%d sessions", len(filtered))))
	return nil
}

func writeSessionLine(ctx context.Context, w io.Writer, sty outputStyles, e *env, s *domain.Session) {
	// Line 1: state glyph, name, branch
	var glyph string
	switch {
	case s.Status == domain.StatusMerged:
		glyph = sty.render(sty.dim, "✓")
	case s.Status == domain.StatusCancelled:
		glyph = sty.render(sty.red, "✕")
	case s.State == domain.StateSpec:
		glyph = sty.render(sty.yellow, "◌")
	case s.ReadyToMerge:
		glyph = sty.render(sty.green, "●")
	default:
		glyph = sty.render(sty.cyan, "●")
	}

	name := s.Name
	if s.DisplayName != "" && s.DisplayName != s.Name {
		name = fmt.Sprintf("%s (%s)", s.DisplayName, s.Name)
	}

	fmt.Fprintf(w, "%s %s %s %s\n",
		glyph,
		sty.render(sty.bold, name),
		sty.render(sty.dim, "·"),
		sty.render(sty.cyan, s.Branch))

	// Line 2: state, diff stats, activity
	parts := []string{string(s.State)}
	if s.ReadyToMerge {
		parts = append(parts, "reviewed")
	}
	if stats, err := e.mgr.StatsCache().Get(ctx, s); err == nil && stats != nil {
		parts = append(parts, fmt.Sprintf("+%d/-%d", stats.LinesAdded, stats.LinesRemoved))
	}
	if s.LastActivity != nil {
		parts = append(parts, "active "+timeAgo(*s.LastActivity))
	} else {
		parts = append(parts, "created "+timeAgo(s.CreatedAt))
	}
	if s.InitialPrompt != "" {
		first, _, _ := strings.Cut(s.InitialPrompt, "\n")
		if len(first) > 60 {
			first = first[:57] + "..."
		}
		fmt.Fprintf(w, "%s \"%s\"\n", sty.render(sty.dim, ">"), first)
	}
	fmt.Fprintln(w, sty.render(sty.dim, strings.Join(parts, " · ")))
	fmt.Fprintln(w)
}
