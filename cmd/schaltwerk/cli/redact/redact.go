// Package redact scans prompt and spec content for leaked secrets before it
// is persisted. Findings are reported, never silently removed: the user
// decides whether a flagged prompt goes into the database.
package redact

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/zricethezav/gitleaks/v8/detect"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli/logging"
)

// Finding is one detected secret.
type Finding struct {
	RuleID      string
	Description string
	Line        int
}

var (
	detectorOnce sync.Once
	detector     *detect.Detector
	detectorErr  error
)

// Scan checks content for secrets with the default gitleaks ruleset.
// A scanner initialization failure is logged and yields no findings; prompt
// persistence must not depend on the ruleset loading.
func Scan(ctx context.Context, content string) []Finding {
	detectorOnce.Do(func() {
		detector, detectorErr = detect.NewDetectorDefaultConfig()
	})
	if detectorErr != nil {
		logging.Warn(logging.WithComponent(ctx, "redact"),
			"secret scanner unavailable", slog.Any("error", detectorErr))
		return nil
	}

	var findings []Finding
	for _, f := range detector.DetectString(content) {
		findings = append(findings, Finding{
			RuleID:      f.RuleID,
			Description: f.Description,
			Line:        f.StartLine,
		})
	}
	return findings
}

// WarnFindings logs each finding. Separate from Scan so callers can decide
// what to do with the list first.
func WarnFindings(ctx context.Context, findings []Finding) {
	logCtx := logging.WithComponent(ctx, "redact")
	for _, f := range findings {
		logging.Warn(logCtx, "possible secret in prompt content",
			slog.String("rule", f.RuleID),
			slog.String("detail", fmt.Sprintf("%s (line %d)", f.Description, f.Line)),
		)
	}
}
