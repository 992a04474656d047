// Package ingest turns a local directory or a remote repository into a
// filtered, ranked sequence of text file records.
package ingest

import (
	"path"
	"strings"
)

// LanguageUnknown is the tag for extensions missing from the language table.
const LanguageUnknown = "unknown"

// FileRecord is one ingested text file. Records are immutable once built.
type FileRecord struct {
	Path     string // repository-relative, slash separated
	Content  string
	Language string
	Size     int64 // as reported by the source, not re-validated
}

// languageByExt maps file extensions to language tags.
var languageByExt = map[string]string{
	".go":         "go",
	".py":         "python",
	".js":         "javascript",
	".jsx":        "javascript",
	".mjs":        "javascript",
	".cjs":        "javascript",
	".ts":         "typescript",
	".tsx":        "typescript",
	".java":       "java",
	".kt":         "kotlin",
	".kts":        "kotlin",
	".scala":      "scala",
	".rs":         "rust",
	".rb":         "ruby",
	".php":        "php",
	".c":          "c",
	".h":          "c",
	".cc":         "cpp",
	".cpp":        "cpp",
	".hpp":        "cpp",
	".cs":         "csharp",
	".swift":      "swift",
	".m":          "objective-c",
	".dart":       "dart",
	".ex":         "elixir",
	".exs":        "elixir",
	".erl":        "erlang",
	".hs":         "haskell",
	".lua":        "lua",
	".r":          "r",
	".jl":         "julia",
	".clj":        "clojure",
	".vue":        "vue",
	".svelte":     "svelte",
	".html":       "html",
	".htm":        "html",
	".css":        "css",
	".scss":       "scss",
	".sass":       "sass",
	".less":       "less",
	".sql":        "sql",
	".sh":         "shell",
	".bash":       "shell",
	".zsh":        "shell",
	".ps1":        "powershell",
	".json":       "json",
	".yaml":       "yaml",
	".yml":        "yaml",
	".toml":       "toml",
	".xml":        "xml",
	".ini":        "ini",
	".cfg":        "ini",
	".conf":       "config",
	".env":        "config",
	".proto":      "protobuf",
	".graphql":    "graphql",
	".gql":        "graphql",
	".tf":         "terraform",
	".gradle":     "gradle",
	".md":         "markdown",
	".mdx":        "markdown",
	".rst":        "restructuredtext",
	".txt":        "text",
	".dockerfile": "dockerfile",
}

// DetectLanguage classifies a path by its extension. Unlisted extensions
// yield LanguageUnknown.
func DetectLanguage(p string) string {
	if lang, ok := languageByExt[strings.ToLower(path.Ext(p))]; ok {
		return lang
	}
	return LanguageUnknown
}

// newRecord decodes, screens and truncates raw content into a record. It
// reports false when the content is classified binary.
func newRecord(relPath string, raw []byte, size int64, maxChars int) (FileRecord, bool) {
	text := string(raw)
	if IsBinary(text) {
		return FileRecord{}, false
	}
	return FileRecord{
		Path:     relPath,
		Content:  Truncate(text, maxChars),
		Language: DetectLanguage(relPath),
		Size:     size,
	}, true
}
