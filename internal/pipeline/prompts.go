package pipeline

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/julianshen/repodoc/internal/ingest"
)

// SplitMarker is the literal line the generation stage is told to emit
// between the technical and the functional document.
const SplitMarker = "===FUNCTIONAL_SPECIFICATION==="

// Labels the review stage uses to separate its two reviewed analyses.
const (
	reviewCodeLabel = "REVIEWED CODE ANALYSIS:"
	reviewDocLabel  = "REVIEWED DOCUMENTATION ANALYSIS:"
)

// ---------- system prompts ----------

const (
	codeSystemPrompt = `You are a senior software architect. You read source code and describe ` +
		`its architecture, components, data flow and technology choices precisely. ` +
		`You never invent files or behavior that the code does not show.`

	docSystemPrompt = `You are a technical writer. You read project documentation and manifests ` +
		`and extract the product's purpose, features, users and operational requirements.`

	reviewSystemPrompt = `You are a principal engineer reviewing two analyses of the same ` +
		`repository. You correct contradictions, fill gaps where one analysis informs the other, ` +
		`and keep both analyses factual.`

	generationSystemPrompt = `You write software specifications in Markdown. You produce ` +
		`complete, well-structured documents with headings, lists and tables where useful.`
)

// ---------- user prompt templates ----------

var codeAnalysisTmpl = template.Must(template.New("code").Parse(
	`Analyze the source code of the project "{{.Project}}".
{{- if .Description}}
Project description: {{.Description}}
{{- end}}

{{if .Files -}}
{{range .Files}}### {{.Path}} ({{.Language}})
~~~
{{.Content}}
~~~

{{end -}}
{{- else -}}
No source code files were found in this repository. Base the analysis on the project name and description.

{{end -}}
Describe:
1. Overall architecture and main components
2. Key modules and their responsibilities
3. Data models and data flow
4. External dependencies and integrations
5. Technology stack`))

var docAnalysisTmpl = template.Must(template.New("doc").Parse(
	`Analyze the documentation of the project "{{.Project}}".
{{- if .Description}}
Project description: {{.Description}}
{{- end}}

{{if .Files -}}
{{range .Files}}### {{.Path}}
~~~
{{.Content}}
~~~

{{end -}}
{{- else -}}
No documentation files were found in this repository. Infer what you can from the project name and description.

{{end -}}
Describe:
1. Project purpose and the problem it solves
2. Features and user-facing capabilities
3. Target users and use cases
4. Setup, configuration and deployment requirements`))

var reviewTmpl = template.Must(template.New("review").Parse(
	`Review the following two analyses of the project "{{.Project}}".

<code_analysis>
{{.CodeAnalysis}}
</code_analysis>

<documentation_analysis>
{{.DocAnalysis}}
</documentation_analysis>

Return both analyses, corrected and completed, in exactly this format:
` + reviewCodeLabel + `
<the reviewed code analysis>
` + reviewDocLabel + `
<the reviewed documentation analysis>`))

var generationTmpl = template.Must(template.New("generation").Parse(
	`Write two specification documents for the project "{{.Project}}".
{{- if .Description}}
Project description: {{.Description}}
{{- end}}

<code_analysis>
{{.CodeAnalysis}}
</code_analysis>

<documentation_analysis>
{{.DocAnalysis}}
</documentation_analysis>

First write the TECHNICAL SPECIFICATION: architecture, components, data models, interfaces, dependencies, deployment and non-functional requirements.

Then output this line on its own:
` + SplitMarker + `

Then write the FUNCTIONAL SPECIFICATION: overview, user roles, features, user workflows, business rules and acceptance criteria.`))

// promptFile is one file as it appears inside a prompt.
type promptFile struct {
	Path     string
	Language string
	Content  string
}

type filesPromptData struct {
	Project     string
	Description string
	Files       []promptFile
}

type analysesPromptData struct {
	Project      string
	Description  string
	CodeAnalysis string
	DocAnalysis  string
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// docExts are the extensions treated as documentation for stage input
// selection.
var docExts = map[string]bool{".md": true, ".rst": true, ".txt": true}

// isDocRecord reports whether r belongs to the documentation stage.
func isDocRecord(r ingest.FileRecord) bool {
	base := path.Base(r.Path)
	return docExts[strings.ToLower(path.Ext(base))] || ingest.IsImportantName(base)
}

// selectFiles takes the first limit records matching keep, in ranked order,
// and clips each one's content to maxChars.
func selectFiles(records []ingest.FileRecord, limit, maxChars int, keep func(ingest.FileRecord) bool) []promptFile {
	var out []promptFile
	for _, r := range records {
		if len(out) == limit {
			break
		}
		if !keep(r) {
			continue
		}
		out = append(out, promptFile{
			Path:     r.Path,
			Language: r.Language,
			Content:  ingest.Truncate(r.Content, maxChars),
		})
	}
	return out
}

func codeFiles(records []ingest.FileRecord, cfg Config) []promptFile {
	return selectFiles(records, cfg.CodeFiles, cfg.PromptFileChars, func(r ingest.FileRecord) bool {
		return !isDocRecord(r)
	})
}

func docFiles(records []ingest.FileRecord, cfg Config) []promptFile {
	return selectFiles(records, cfg.DocFiles, cfg.PromptFileChars, isDocRecord)
}
