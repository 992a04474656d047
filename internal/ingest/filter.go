package ingest

import (
	"path"
	"strings"
	"unicode/utf8"
)

// TruncationMarker is appended to content cut at the character bound.
const TruncationMarker = "\n\n... [content truncated]"

// binaryThreshold is the fraction of control characters above which decoded
// text is treated as binary. Tunable; the heuristic has no correctness bound.
const binaryThreshold = 0.10

// skippedNames are path segments that exclude a whole subtree.
var skippedNames = map[string]bool{
	"node_modules":      true,
	"bower_components":  true,
	"jspm_packages":     true,
	"vendor":            true,
	"dist":              true,
	"build":             true,
	"out":               true,
	"target":            true,
	"bin":               true,
	"obj":               true,
	"coverage":          true,
	"__pycache__":       true,
	"venv":              true,
	"env":               true,
	"site-packages":     true,
	"tmp":               true,
	"temp":              true,
	"logs":              true,
	"Thumbs.db":         true,
	"desktop.ini":       true,
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"go.sum":            true,
	"Cargo.lock":        true,
	"poetry.lock":       true,
	"composer.lock":     true,
	"Gemfile.lock":      true,
}

// includedExts are the text and source extensions eligible for ingestion.
var includedExts = map[string]bool{}

func init() {
	for ext := range languageByExt {
		includedExts[ext] = true
	}
}

// importantNames are case-insensitive base-name fragments that make a file
// eligible regardless of its extension.
var importantNames = []string{
	"readme",
	"license",
	"dockerfile",
	"makefile",
	"procfile",
	"changelog",
	"contributing",
	"docker-compose",
	"package.json",
	"requirements.txt",
	"pyproject.toml",
	"setup.py",
	"go.mod",
	"cargo.toml",
	"pom.xml",
	"build.gradle",
	"gemfile",
	"composer.json",
}

// SkipSegment reports whether a single path segment excludes its subtree.
func SkipSegment(name string) bool {
	return strings.HasPrefix(name, ".") || skippedNames[name]
}

// SkipPath reports whether any segment of a slash-separated path is skipped.
func SkipPath(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg != "" && SkipSegment(seg) {
			return true
		}
	}
	return false
}

// IsImportantName reports whether a base name contains one of the important
// filename fragments.
func IsImportantName(base string) bool {
	lower := strings.ToLower(base)
	for _, frag := range importantNames {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// Eligible applies the inclusion rule shared by every source: the size must be
// below maxSize, and the extension must be allowed or the base name important.
func Eligible(p string, size, maxSize int64) bool {
	if size >= maxSize {
		return false
	}
	base := path.Base(p)
	return includedExts[strings.ToLower(path.Ext(base))] || IsImportantName(base)
}

// IsBinary counts control characters outside the common whitespace range and
// classifies the text as binary when they exceed 10% of its length.
func IsBinary(text string) bool {
	total := 0
	control := 0
	for _, r := range text {
		total++
		if (r >= 0x00 && r <= 0x08) || (r >= 0x0E && r <= 0x1F) {
			control++
		}
	}
	if total == 0 {
		return false
	}
	return float64(control)/float64(total) > binaryThreshold
}

// Truncate cuts text to maxChars characters and appends TruncationMarker.
// Text within the bound is returned unchanged.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	n := 0
	for i := range text {
		if n == maxChars {
			return text[:i] + TruncationMarker
		}
		n++
	}
	return text
}
