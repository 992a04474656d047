package output

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianshen/repodoc/internal/delivery"
	"github.com/julianshen/repodoc/internal/pipeline"
)

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("output: missing front matter")
	// ErrMalformedFrontMatter indicates the YAML block was not closed.
	ErrMalformedFrontMatter = errors.New("output: malformed front matter")
)

// FrontMatter is the YAML header written above each generated document.
type FrontMatter struct {
	Document     string   `yaml:"document"`
	Project      string   `yaml:"project"`
	RunID        string   `yaml:"run_id"`
	Generated    string   `yaml:"generated"`
	FileCount    int      `yaml:"file_count"`
	Languages    []string `yaml:"languages,omitempty"`
	Frameworks   []string `yaml:"frameworks,omitempty"`
	Architecture string   `yaml:"architecture,omitempty"`
}

// Document kinds recorded in front matter.
const (
	DocumentTechnical  = "technical"
	DocumentFunctional = "functional"
)

// WriteDocuments writes the technical and functional documents into dir,
// creating it if needed, and returns the written paths.
func WriteDocuments(dir string, result *pipeline.AnalysisResult) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	slug := delivery.Slug(result.Metadata.ProjectName)
	docs := []struct {
		kind string
		name string
		body string
	}{
		{DocumentTechnical, slug + "-technical-spec.md", result.TechnicalSpec},
		{DocumentFunctional, slug + "-functional-spec.md", result.FunctionalSpec},
	}

	paths := make([]string, 0, len(docs))
	for _, d := range docs {
		data, err := WriteFrontMatter(frontMatterFor(d.kind, result.Metadata), []byte(d.body))
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, d.name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func frontMatterFor(kind string, md pipeline.Metadata) FrontMatter {
	return FrontMatter{
		Document:     kind,
		Project:      md.ProjectName,
		RunID:        md.RunID,
		Generated:    md.GeneratedAt.UTC().Format(time.RFC3339),
		FileCount:    md.FileCount,
		Languages:    md.Languages,
		Frameworks:   md.Frameworks,
		Architecture: md.Architecture,
	}
}

// WriteFrontMatter renders fm and body with YAML fences.
func WriteFrontMatter(fm FrontMatter, body []byte) ([]byte, error) {
	data, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("output: encode front matter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(data, "\n"))
	buf.WriteString("\n---\n\n")
	buf.Write(body)
	if !bytes.HasSuffix(body, []byte("\n")) {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// ParseFrontMatter splits a generated document into its header and body.
func ParseFrontMatter(content []byte) (FrontMatter, []byte, error) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return FrontMatter{}, nil, ErrMissingFrontMatter
	}
	head, body, ok := bytes.Cut(normalized[4:], []byte("\n---\n"))
	if !ok {
		return FrontMatter{}, nil, ErrMalformedFrontMatter
	}
	var fm FrontMatter
	if err := yaml.Unmarshal(head, &fm); err != nil {
		return FrontMatter{}, nil, fmt.Errorf("output: parse front matter: %w", err)
	}
	return fm, bytes.TrimPrefix(body, []byte("\n")), nil
}
