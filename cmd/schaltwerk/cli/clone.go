package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/gitrepo"
)

func newCloneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clone <url> [dest]",
		Short: "Clone a repository to manage sessions in",
		Long: "Clone a remote repository, streaming git's progress output. The destination\n" +
			"defaults to the repository name derived from the URL.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			remoteURL := args[0]
			dest := ""
			if len(args) == 2 {
				dest = args[1]
			} else {
				dest = destFromRemoteURL(remoteURL)
			}
			if dest == "" {
				return fmt.Errorf("cannot derive a destination directory from %s, pass one explicitly",
					gitrepo.SanitizeRemoteURL(remoteURL))
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Cloning %s into %s\n", gitrepo.SanitizeRemoteURL(remoteURL), dest)
			err := gitrepo.Clone(cmd.Context(), remoteURL, dest, func(line string) {
				fmt.Fprintf(w, "  %s\n", line)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Done. Run schaltwerk from %s to create sessions.\n", dest)
			return nil
		},
	}
	return cmd
}

// destFromRemoteURL derives a directory name the way git does: the last path
// segment with a trailing .git stripped.
func destFromRemoteURL(remoteURL string) string {
	s := gitrepo.SanitizeRemoteURL(remoteURL)
	s = strings.TrimSuffix(strings.TrimRight(s, "/"), ".git")
	if i := strings.LastIndexAny(s, "/:"); i >= 0 {
		s = s[i+1:]
	}
	if s == "" || s == "." || s == ".." {
		return ""
	}
	return filepath.Clean(s)
}
