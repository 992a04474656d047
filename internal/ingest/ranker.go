package ingest

import (
	"path"
	"slices"
	"strings"
)

// manifestNames are package-manifest fragments scored just below READMEs.
var manifestNames = []string{
	"package.json",
	"requirements.txt",
	"pyproject.toml",
	"go.mod",
	"cargo.toml",
	"pom.xml",
	"build.gradle",
	"gemfile",
	"composer.json",
}

// codeExts are the extensions that earn the generic "code" score.
var codeExts = map[string]bool{
	".go": true, ".py": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".java": true, ".kt": true, ".scala": true, ".rs": true, ".rb": true, ".php": true,
	".c": true, ".h": true, ".cc": true, ".cpp": true, ".hpp": true, ".cs": true,
	".swift": true, ".dart": true, ".ex": true, ".exs": true, ".vue": true, ".svelte": true,
}

// scoreRule is one row of the importance table. Rules are checked in order
// and the first match wins.
type scoreRule struct {
	name  string
	score int
	match func(base, ext string) bool
}

var scoreRules = []scoreRule{
	{"readme", 100, func(base, _ string) bool { return strings.Contains(base, "readme") }},
	{"manifest", 95, func(base, _ string) bool { return containsAny(base, manifestNames) }},
	{"dockerfile", 90, func(base, _ string) bool { return strings.Contains(base, "dockerfile") }},
	{"entrypoint", 85, func(base, _ string) bool { return hasAnyPrefix(base, "main", "index") }},
	{"app", 80, func(base, _ string) bool { return hasAnyPrefix(base, "app", "server") }},
	{"markdown", 70, func(_, ext string) bool { return ext == ".md" }},
	{"config", 65, func(base, _ string) bool { return strings.Contains(base, "config") }},
	{"setup", 60, func(base, _ string) bool { return containsAny(base, []string{"setup", "install"}) }},
	{"code", 50, func(_, ext string) bool { return codeExts[ext] }},
}

const defaultScore = 30

// Score returns the importance of a path, judged on its lowercased base name.
func Score(p string) int {
	base := strings.ToLower(path.Base(p))
	ext := path.Ext(base)
	for _, r := range scoreRules {
		if r.match(base, ext) {
			return r.score
		}
	}
	return defaultScore
}

// Rank returns a copy of records ordered by descending Score. The sort is
// stable, so ranking a ranked sequence leaves it unchanged.
func Rank(records []FileRecord) []FileRecord {
	ranked := slices.Clone(records)
	scores := make(map[string]int, len(ranked))
	for _, r := range ranked {
		scores[r.Path] = Score(r.Path)
	}
	slices.SortStableFunc(ranked, func(a, b FileRecord) int {
		return scores[b.Path] - scores[a.Path]
	})
	return ranked
}

func containsAny(s string, frags []string) bool {
	for _, f := range frags {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
