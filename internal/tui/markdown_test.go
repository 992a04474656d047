package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/repodoc/internal/pipeline"
)

func TestRenderMarkdown(t *testing.T) {
	r, err := NewMarkdownRenderer("notty", 80)
	require.NoError(t, err)

	result, err := r.Render("Hello **world**")
	require.NoError(t, err)
	assert.Contains(t, result, "world")
}

func TestRenderMarkdownEmpty(t *testing.T) {
	r, err := NewMarkdownRenderer("", 80)
	require.NoError(t, err)

	result, err := r.Render("")
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestRenderMarkdownNilRenderer(t *testing.T) {
	var r *MarkdownRenderer
	out, err := r.Render("# raw")
	require.NoError(t, err)
	assert.Equal(t, "# raw", out)
}

func TestRenderResult(t *testing.T) {
	r, err := NewMarkdownRenderer("notty", 80)
	require.NoError(t, err)

	out, err := r.RenderResult(&pipeline.AnalysisResult{
		TechnicalSpec:  "# Technical Specification\n\nUses Go.",
		FunctionalSpec: "# Functional Specification\n\nLets users log in.",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Technical Specification")
	assert.Contains(t, out, "Lets users log in.")
}
