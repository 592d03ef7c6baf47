package merge

import (
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/domain"
)

// trialMerge computes the paths a merge of the two tips would conflict on,
// without touching the working tree or any refs. Three-way semantics against
// the merge base: a path conflicts when both sides changed it and the changed
// line regions overlap (or the changes cannot be line-merged at all:
// delete-vs-modify, binary, both-added-differently).
func trialMerge(repo *git.Repository, sessionTip, parentTip *object.Commit) ([]string, error) {
	bases, err := sessionTip.MergeBase(parentTip)
	if err != nil {
		return nil, domain.NewGitOperationError("merge-base", err)
	}

	sessionTree, err := sessionTip.Tree()
	if err != nil {
		return nil, domain.NewGitOperationError("read tree", err)
	}
	parentTree, err := parentTip.Tree()
	if err != nil {
		return nil, domain.NewGitOperationError("read tree", err)
	}

	// Unrelated histories: every path present on both sides with different
	// content is a conflict.
	if len(bases) == 0 {
		return unrelatedConflicts(sessionTree, parentTree)
	}

	baseTree, err := bases[0].Tree()
	if err != nil {
		return nil, domain.NewGitOperationError("read tree", err)
	}

	sessionChanges, err := changesByPath(baseTree, sessionTree)
	if err != nil {
		return nil, err
	}
	parentChanges, err := changesByPath(baseTree, parentTree)
	if err != nil {
		return nil, err
	}

	var conflicts []string
	for path, sc := range sessionChanges {
		pc, both := parentChanges[path]
		if !both {
			continue
		}
		conflict, err := changesConflict(baseTree, path, sc, pc)
		if err != nil {
			return nil, err
		}
		if conflict {
			conflicts = append(conflicts, path)
		}
	}
	return conflicts, nil
}

// changesByPath maps each changed path to its tree change.
func changesByPath(from, to *object.Tree) (map[string]*object.Change, error) {
	changes, err := object.DiffTree(from, to)
	if err != nil {
		return nil, domain.NewGitOperationError("diff trees", err)
	}
	byPath := make(map[string]*object.Change, len(changes))
	for _, ch := range changes {
		name := ch.To.Name
		if name == "" {
			name = ch.From.Name
		}
		byPath[name] = ch
	}
	return byPath, nil
}

// changesConflict decides whether two same-path changes collide.
func changesConflict(baseTree *object.Tree, path string, sc, pc *object.Change) (bool, error) {
	sessionContent, sessionExists, err := changeResult(sc)
	if err != nil {
		return false, err
	}
	parentContent, parentExists, err := changeResult(pc)
	if err != nil {
		return false, err
	}

	// Both sides arrived at the same result: no conflict, whatever the route.
	if sessionExists == parentExists && sessionContent == parentContent {
		return false, nil
	}

	// Delete on one side, modify on the other.
	if sessionExists != parentExists {
		return true, nil
	}

	baseContent, baseExists := treeContent(baseTree, path)
	if !baseExists {
		// Both added the file with different content.
		return true, nil
	}

	if isBinary(baseContent) || isBinary(sessionContent) || isBinary(parentContent) {
		return true, nil
	}

	sessionSpans := changedSpans(baseContent, sessionContent)
	parentSpans := changedSpans(baseContent, parentContent)
	return spansOverlap(sessionSpans, parentSpans), nil
}

// changeResult returns the post-change file content and whether the file
// still exists after the change.
func changeResult(ch *object.Change) (string, bool, error) {
	if ch.To.Name == "" {
		return "", false, nil // deleted
	}
	_, to, err := ch.Files()
	if err != nil {
		return "", false, domain.NewGitOperationError("load blob", err)
	}
	if to == nil {
		return "", false, nil
	}
	content, err := to.Contents()
	if err != nil {
		return "", false, domain.NewGitOperationError("read blob", err)
	}
	return content, true, nil
}

func treeContent(tree *object.Tree, path string) (string, bool) {
	file, err := tree.File(path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return "", false
		}
		return "", false
	}
	content, err := file.Contents()
	if err != nil {
		return "", false
	}
	return content, true
}

func unrelatedConflicts(sessionTree, parentTree *object.Tree) ([]string, error) {
	var conflicts []string
	walker := object.NewTreeWalker(sessionTree, true, nil)
	defer walker.Close()
	for {
		name, entry, err := walker.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.NewGitOperationError("walk tree", err)
		}
		if !entry.Mode.IsFile() {
			continue
		}
		other, err := parentTree.FindEntry(name)
		if err != nil || other == nil {
			continue
		}
		if other.Hash != entry.Hash {
			conflicts = append(conflicts, name)
		}
	}
	return conflicts, nil
}

// span is a half-open [Start, End) interval of base-file line numbers touched
// by a change. Insertions have Start == End: a zero-width anchor at the
// insertion point.
type span struct {
	Start int
	End   int
}

// changedSpans computes which base line intervals a side changed, using a
// line-granularity diff.
func changedSpans(base, modified string) []span {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(base, modified)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var spans []span
	baseLine := 0
	for _, d := range diffs {
		n := countLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			baseLine += n
		case diffmatchpatch.DiffDelete:
			spans = appendSpan(spans, span{Start: baseLine, End: baseLine + n})
			baseLine += n
		case diffmatchpatch.DiffInsert:
			spans = appendSpan(spans, span{Start: baseLine, End: baseLine})
		}
	}
	return spans
}

// appendSpan merges a new span into the previous one when they touch, so a
// replace (delete+insert) forms a single interval.
func appendSpan(spans []span, s span) []span {
	if n := len(spans); n > 0 && spans[n-1].End >= s.Start {
		if s.End > spans[n-1].End {
			spans[n-1].End = s.End
		}
		return spans
	}
	return append(spans, s)
}

func spansOverlap(a, b []span) bool {
	for _, x := range a {
		for _, y := range b {
			if overlaps(x, y) {
				return true
			}
		}
	}
	return false
}

// overlaps mirrors three-way merge semantics: positive-width intervals
// conflict when they intersect; an insertion anchor conflicts when it falls
// strictly inside the other side's interval, or when both sides insert at
// the same point; strictly adjacent changes merge cleanly.
func overlaps(x, y span) bool {
	xZero := x.Start == x.End
	yZero := y.Start == y.End
	switch {
	case xZero && yZero:
		return x.Start == y.Start
	case xZero:
		return y.Start < x.Start && x.Start < y.End
	case yZero:
		return x.Start < y.Start && y.Start < x.End
	default:
		return max(x.Start, y.Start) < min(x.End, y.End)
	}
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

func isBinary(s string) bool {
	return strings.ContainsRune(s, 0) || !utf8.ValidString(s)
}
