// Package output renders analysis results for the terminal and the filesystem.
package output

import (
	"fmt"

	"github.com/julianshen/repodoc/internal/pipeline"
)

// Formatter formats an AnalysisResult into output bytes.
type Formatter interface {
	Format(result *pipeline.AnalysisResult) ([]byte, error)
}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case "", "markdown", "md":
		return NewMarkdownFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want json or markdown)", name)
	}
}
