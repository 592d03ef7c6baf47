package gitrepo

import (
	"bufio"
	"context"
	"net/url"
	"os"
	"os/exec"
	"strings"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
)

// ProgressSink receives human-readable progress lines as they arrive.
type ProgressSink func(line string)

// Clone clones a remote into dest, forwarding git's progress output line by
// line to the sink. This is the one operation deliberately delegated to the
// host git binary: go-git exposes no progress callback for clone, and
// streaming "Receiving objects: 42%" lines is the reason this exists.
//
// On failure the partially created destination is removed before returning.
func Clone(ctx context.Context, remoteURL, dest string, progress ProgressSink) error {
	cmd := exec.CommandContext(ctx, "git", "clone", "--progress", remoteURL, dest)
	cmd.Env = append(cmd.Environ(), "LC_ALL=C")

	// git writes progress to stderr.
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return domain.NewGitOperationError("clone", err)
	}
	if err := cmd.Start(); err != nil {
		return domain.NewGitOperationError("clone", err)
	}

	scanner := bufio.NewScanner(stderr)
	scanner.Split(scanProgressLines)
	for scanner.Scan() {
		if progress != nil {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				progress(line)
			}
		}
	}

	if err := cmd.Wait(); err != nil {
		_ = os.RemoveAll(dest) //nolint:errcheck // cleanup of partial clone
		return domain.NewGitOperationError("clone "+SanitizeRemoteURL(remoteURL), err)
	}
	return nil
}

// scanProgressLines splits on \n and \r so in-place progress updates
// ("Receiving objects: 42%\r") arrive as separate lines.
func scanProgressLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		if b == '\n' || b == '\r' {
			return i + 1, data[:i], nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// SanitizeRemoteURL strips credentials from a remote URL for display and
// history. HTTPS URLs lose userinfo; user@host:path SSH form is normalized
// to host:path. The URL actually passed to git is never mutated.
func SanitizeRemoteURL(remoteURL string) string {
	if strings.Contains(remoteURL, "://") {
		u, err := url.Parse(remoteURL)
		if err != nil {
			return remoteURL
		}
		u.User = nil
		return u.String()
	}
	// scp-like syntax: user@host:path
	if at := strings.Index(remoteURL, "@"); at >= 0 && strings.Contains(remoteURL[at:], ":") {
		return remoteURL[at+1:]
	}
	return remoteURL
}
