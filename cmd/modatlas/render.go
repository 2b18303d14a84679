package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"modatlas/internal/atlas"
	"modatlas/internal/resolve"
)

// Semantic colors
var (
	colorSuccess = lipgloss.Color("#8BC34A") // Green
	colorError   = lipgloss.Color("#e53935") // Red
	colorWarning = lipgloss.Color("#FFC107") // Yellow
	colorMuted   = lipgloss.Color("#7f8c99")
)

var (
	moduleCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	moduleIDStyle = lipgloss.NewStyle().Bold(true)
	seedStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	allowedStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	warningStyle  = lipgloss.NewStyle().Foreground(colorWarning)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
)

// renderResolution formats one resolution result for humans.
func renderResolution(res resolve.Result) string {
	var b strings.Builder

	switch {
	case res.Confidence == 0:
		b.WriteString(errorStyle.Render("✗"))
		b.WriteString(fmt.Sprintf(" %s: unresolved", res.Original))
	case res.Canonical == res.Original:
		b.WriteString(allowedStyle.Render("✓"))
		b.WriteString(fmt.Sprintf(" %s", res.Canonical))
	default:
		b.WriteString(allowedStyle.Render("✓"))
		b.WriteString(fmt.Sprintf(" %s → %s", res.Original, res.Canonical))
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  (%s, confidence %.2f)", res.Source, res.Confidence)))

	if res.Warning != "" {
		b.WriteString("\n  ")
		b.WriteString(warningStyle.Render("warning: " + res.Warning))
	}
	return b.String()
}

// renderValidation formats a validation result, errors and suggestions included.
func renderValidation(result resolve.ValidationResult) string {
	var b strings.Builder

	for _, warning := range result.Warnings {
		b.WriteString(renderWarning(warning))
		b.WriteString("\n")
	}

	if result.Valid {
		b.WriteString(allowedStyle.Render("✓ all references valid"))
		b.WriteString("\n")
		for _, id := range result.Canonical {
			b.WriteString(fmt.Sprintf("  %s\n", id))
		}
		return b.String()
	}

	for _, e := range result.Errors {
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s", e.Module)))
		b.WriteString(fmt.Sprintf(": %s\n", e.Message))
		if len(e.Suggestions) > 0 {
			b.WriteString(mutedStyle.Render("  did you mean: " + strings.Join(e.Suggestions, ", ")))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderWarning formats a single warning line.
func renderWarning(warning string) string {
	return warningStyle.Render("⚠ " + warning)
}

// renderNeighborhood formats a tuned neighborhood as module cards plus a
// classified edge list.
func renderNeighborhood(result atlas.TuneResult) string {
	n := result.Neighborhood
	seeds := make(map[string]bool, len(n.SeedModules))
	for _, s := range n.SeedModules {
		seeds[s] = true
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Atlas: %d modules, %d edges (radius %d, ~%d tokens)\n\n",
		len(n.Modules), len(n.Edges), result.RadiusUsed, result.TokensUsed))

	for _, m := range n.Modules {
		var card strings.Builder
		if seeds[m.ID] {
			card.WriteString(seedStyle.Render(m.ID + " (seed)"))
		} else {
			card.WriteString(moduleIDStyle.Render(m.ID))
		}
		if len(m.FeatureFlags) > 0 {
			card.WriteString("\n" + mutedStyle.Render("flags: "+strings.Join(m.FeatureFlags, ", ")))
		}
		if len(m.RequiredPermissions) > 0 {
			card.WriteString("\n" + mutedStyle.Render("perms: "+strings.Join(m.RequiredPermissions, ", ")))
		}
		if len(m.KillPatterns) > 0 {
			card.WriteString("\n" + errorStyle.Render("kill: "+strings.Join(m.KillPatterns, ", ")))
		}
		b.WriteString(moduleCardStyle.Render(card.String()))
		b.WriteString("\n")
	}

	if len(n.Edges) > 0 {
		b.WriteString("\nEdges:\n")
		for _, e := range n.Edges {
			if e.Allowed {
				b.WriteString(fmt.Sprintf("  %s %s → %s\n", allowedStyle.Render("allow"), e.From, e.To))
			} else {
				b.WriteString(fmt.Sprintf("  %s  %s → %s", errorStyle.Render("deny"), e.From, e.To))
				if e.Reason != "" {
					b.WriteString(mutedStyle.Render(" (" + e.Reason + ")"))
				}
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
