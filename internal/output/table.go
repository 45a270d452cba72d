// Package output provides terminal output utilities for snapsweep: table
// rendering for retention plans and run history, plus a spinner for
// long-running operations. Tables use ASCII characters and ANSI colors.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/calderaops/snapsweep/internal/retention"
	"github.com/calderaops/snapsweep/internal/store"
)

// ANSI color codes for keep/remove display
const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorGray  = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderPlanTable renders the keep/remove decision for every candidate,
// newest first, with the tier that retained each kept snapshot.
func RenderPlanTable(decisions []retention.Decision) string {
	if len(decisions) == 0 {
		return "No snapshots found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-17s %-21s %-8s %s\n",
		"Snapshot", "Captured", "Action", "Tier"))
	sb.WriteString(strings.Repeat("─", 56))
	sb.WriteString("\n")

	for _, d := range decisions {
		tier := d.Tier
		if tier == "" {
			tier = "—"
		}
		action := string(d.Action)
		if d.Action == retention.Keep {
			action = colorize(colorGreen, action)
		} else {
			action = colorize(colorRed, action)
		}
		sb.WriteString(fmt.Sprintf("%-17s %-21s %-8s %s\n",
			truncate(d.Snapshot.Name, 17),
			d.Snapshot.Timestamp.Format("2006-01-02 15:04:05"),
			action,
			tier))
	}
	return sb.String()
}

// RenderPlanSummary renders a one-line keep/remove breakdown.
func RenderPlanSummary(plan retention.Plan) string {
	kept := len(plan.Kept())
	doomed := len(plan.Doomed())
	return fmt.Sprintf("Anchor: %s · keep %d · remove %d",
		plan.Anchor.Format("2006-01-02 15:04:05"), kept, doomed)
}

// RenderRunTable renders past retention runs, newest first.
func RenderRunTable(runs []*store.Run) string {
	if len(runs) == 0 {
		return "No runs recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-5s %-14s %-24s %-6s %-8s %-7s %s\n",
		"ID", "Started", "Source", "Kept", "Deleted", "Failed", "Status"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, run := range runs {
		status := run.Status
		if run.Status == store.StatusFailed {
			status = colorize(colorRed, status)
		}
		sb.WriteString(fmt.Sprintf("%-5d %-14s %-24s %-6d %-8d %-7d %s\n",
			run.ID,
			formatRelativeTime(run.StartedAt),
			truncate(run.Source, 24),
			run.Kept,
			run.Deleted,
			run.Failed,
			status))
	}
	return sb.String()
}

// RenderDecisionTable renders the audited decisions of one run.
func RenderDecisionTable(decisions []*store.Decision) string {
	if len(decisions) == 0 {
		return "No decisions recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-17s %-8s %-9s %s\n",
		"Snapshot", "Action", "Tier", "Outcome"))
	sb.WriteString(strings.Repeat("─", 60))
	sb.WriteString("\n")

	for _, d := range decisions {
		tier := d.Tier
		if tier == "" {
			tier = "—"
		}
		outcome := d.Outcome
		if strings.HasPrefix(outcome, "failed") {
			outcome = colorize(colorRed, outcome)
		}
		sb.WriteString(fmt.Sprintf("%-17s %-8s %-9s %s\n",
			truncate(d.Name, 17),
			d.Action,
			tier,
			outcome))
	}
	return sb.String()
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / 24 / 7)
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	case diff < 365*24*time.Hour:
		months := int(diff.Hours() / 24 / 30)
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	default:
		years := int(diff.Hours() / 24 / 365)
		if years == 1 {
			return "1 year ago"
		}
		return fmt.Sprintf("%d years ago", years)
	}
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
