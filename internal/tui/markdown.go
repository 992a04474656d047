package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/julianshen/repodoc/internal/pipeline"
)

// MarkdownRenderer wraps Glamour for rendering markdown to styled terminal output.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
}

// NewMarkdownRenderer creates a MarkdownRenderer with the given word wrap
// width. style is a glamour standard style name; empty means "dark".
func NewMarkdownRenderer(style string, width int) (*MarkdownRenderer, error) {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("creating glamour renderer: %w", err)
	}
	return &MarkdownRenderer{renderer: r}, nil
}

// Render processes markdown text into styled terminal output.
func (m *MarkdownRenderer) Render(md string) (string, error) {
	if md == "" {
		return "", nil
	}
	if m == nil || m.renderer == nil {
		return md, nil
	}
	return m.renderer.Render(md)
}

// RenderResult renders both generated documents for a terminal preview.
func (m *MarkdownRenderer) RenderResult(result *pipeline.AnalysisResult) (string, error) {
	var b strings.Builder
	for i, doc := range []string{result.TechnicalSpec, result.FunctionalSpec} {
		if i > 0 {
			b.WriteString(mutedStyle.Render(strings.Repeat("─", 40)))
			b.WriteString("\n")
		}
		out, err := m.Render(doc)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}
