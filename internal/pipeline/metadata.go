package pipeline

import (
	"slices"
	"strings"

	"github.com/julianshen/repodoc/internal/ingest"
)

// ArchitectureLabel is reported for every run. It is not derived from the
// code.
const ArchitectureLabel = "Modular Architecture"

// frameworkKeyword maps a lowercase content substring to a framework label.
type frameworkKeyword struct {
	keyword string
	label   string
}

var frameworkKeywords = []frameworkKeyword{
	{"react", "React"},
	{"vue", "Vue.js"},
	{"angular", "Angular"},
	{"svelte", "Svelte"},
	{"next.js", "Next.js"},
	{"express", "Express"},
	{"nestjs", "NestJS"},
	{"django", "Django"},
	{"flask", "Flask"},
	{"fastapi", "FastAPI"},
	{"spring", "Spring"},
	{"rails", "Ruby on Rails"},
	{"laravel", "Laravel"},
	{"gin-gonic", "Gin"},
	{"labstack/echo", "Echo"},
	{"gofiber", "Fiber"},
	{"actix", "Actix"},
	{"tailwind", "Tailwind CSS"},
	{"bootstrap", "Bootstrap"},
	{"jquery", "jQuery"},
}

// DetectLanguages returns the sorted distinct language tags of records,
// excluding ingest.LanguageUnknown.
func DetectLanguages(records []ingest.FileRecord) []string {
	seen := make(map[string]bool)
	langs := []string{}
	for _, r := range records {
		if r.Language == "" || r.Language == ingest.LanguageUnknown || seen[r.Language] {
			continue
		}
		seen[r.Language] = true
		langs = append(langs, r.Language)
	}
	slices.Sort(langs)
	return langs
}

// DetectFrameworks searches the concatenated record contents for each
// framework keyword, case-insensitively, and returns the sorted labels found.
func DetectFrameworks(records []ingest.FileRecord) []string {
	var sb strings.Builder
	for _, r := range records {
		sb.WriteString(strings.ToLower(r.Content))
		sb.WriteByte('\n')
	}
	corpus := sb.String()

	seen := make(map[string]bool)
	found := []string{}
	for _, fk := range frameworkKeywords {
		if seen[fk.label] || !strings.Contains(corpus, fk.keyword) {
			continue
		}
		seen[fk.label] = true
		found = append(found, fk.label)
	}
	slices.Sort(found)
	return found
}
