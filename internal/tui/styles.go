package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianshen/repodoc/internal/pipeline"
)

// Style definitions shared by the progress view and the summary.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#EEEEEE"})
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"})
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#B00020", Dark: "#FF6B6B"})
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#1B7F3B", Dark: "#5FD787"})
	summaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#555555"}).
			Padding(0, 1)
)

// Banner is the header shown above the progress view.
const Banner = "repodoc · repository documentation generator"

// RenderBanner returns the styled banner line.
func RenderBanner() string {
	return headerStyle.Render(Banner)
}

// RenderSummary renders the result metadata as a bordered box.
func RenderSummary(md pipeline.Metadata) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(md.ProjectName))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %d\n", mutedStyle.Render("Files:       "), md.FileCount)
	fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("Languages:   "), orNone(md.Languages))
	fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("Frameworks:  "), orNone(md.Frameworks))
	fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("Architecture:"), md.Architecture)
	fmt.Fprintf(&b, "%s %s", mutedStyle.Render("Duration:    "), md.Duration.Round(100*time.Millisecond))

	if md.DeliveryAttempted {
		b.WriteString("\n")
		if md.DeliverySucceeded {
			b.WriteString(successStyle.Render("Email sent"))
		} else {
			b.WriteString(errorStyle.Render("Email failed: " + md.DeliveryError))
		}
	}
	return summaryBoxStyle.Render(b.String())
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "none detected"
	}
	return strings.Join(items, ", ")
}
