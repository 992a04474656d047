package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianshen/repodoc/internal/pipeline"
)

// MarkdownFormatter outputs both documents as one human-readable Markdown page.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format renders the technical document, a rule, the functional document
// and a summary footer.
func (f *MarkdownFormatter) Format(result *pipeline.AnalysisResult) ([]byte, error) {
	var b strings.Builder

	b.WriteString(strings.TrimSpace(result.TechnicalSpec))
	b.WriteString("\n\n---\n\n")
	b.WriteString(strings.TrimSpace(result.FunctionalSpec))
	b.WriteString("\n")

	md := result.Metadata
	fileLabel := "files"
	if md.FileCount == 1 {
		fileLabel = "file"
	}
	b.WriteString(fmt.Sprintf("\n---\n*%s: %d %s analyzed in %s*\n",
		md.ProjectName, md.FileCount, fileLabel, md.Duration.Round(100*time.Millisecond)))

	if md.DeliveryAttempted {
		if md.DeliverySucceeded {
			b.WriteString("*Email delivered.*\n")
		} else {
			b.WriteString(fmt.Sprintf("*Email delivery failed: %s*\n", md.DeliveryError))
		}
	}

	return []byte(b.String()), nil
}
