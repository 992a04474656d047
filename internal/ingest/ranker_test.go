package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	cases := map[string]int{
		"README.md":          100,
		"docs/readme.txt":    100,
		"package.json":       95,
		"go.mod":             95,
		"Dockerfile":         90,
		"prod.dockerfile":    90,
		"cmd/main.go":        85,
		"src/index.ts":       85,
		"app.py":             80,
		"server.js":          80,
		"docs/guide.md":      70,
		"webpack.config.js":  65,
		"setup.py":           60,
		"scripts/install.sh": 60,
		"internal/store.go":  50,
		"styles.css":         30,
		"data.yaml":          30,
	}
	for p, want := range cases {
		assert.Equal(t, want, Score(p), p)
	}
}

func TestRankOrdersByDescendingScore(t *testing.T) {
	in := []FileRecord{
		{Path: "styles.css"},
		{Path: "internal/store.go"},
		{Path: "README.md"},
		{Path: "cmd/main.go"},
		{Path: "docs/guide.md"},
		{Path: "package.json"},
	}

	ranked := Rank(in)
	require.Len(t, ranked, len(in))

	var paths []string
	for _, r := range ranked {
		paths = append(paths, r.Path)
	}
	assert.Equal(t, []string{
		"README.md",
		"package.json",
		"cmd/main.go",
		"docs/guide.md",
		"internal/store.go",
		"styles.css",
	}, paths)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, Score(ranked[i-1].Path), Score(ranked[i].Path))
	}

	// Input is left untouched.
	assert.Equal(t, "styles.css", in[0].Path)
}

func TestRankIsIdempotent(t *testing.T) {
	in := []FileRecord{
		{Path: "a.go"}, {Path: "README.md"}, {Path: "b.go"}, {Path: "c.css"}, {Path: "d.go"},
	}
	once := Rank(in)
	twice := Rank(once)
	assert.Equal(t, once, twice)
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}
