package output

import (
	"encoding/json"

	"github.com/julianshen/repodoc/internal/pipeline"
)

// JSONFormatter outputs an AnalysisResult as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format marshals the result as indented JSON.
func (f *JSONFormatter) Format(result *pipeline.AnalysisResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
