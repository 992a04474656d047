package pipeline

// Config sizes stage inputs and outputs.
type Config struct {
	CodeFiles       int // ranked non-documentation files sent to code analysis
	DocFiles        int // ranked documentation files sent to doc analysis
	PromptFileChars int // per-file content clip inside a prompt

	AnalysisMaxTokens   int
	ReviewMaxTokens     int
	GenerationMaxTokens int
}

// DefaultConfig returns the stock stage sizes.
func DefaultConfig() Config {
	return Config{
		CodeFiles:           30,
		DocFiles:            10,
		PromptFileChars:     4000,
		AnalysisMaxTokens:   4096,
		ReviewMaxTokens:     6144,
		GenerationMaxTokens: 8192,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CodeFiles <= 0 {
		c.CodeFiles = d.CodeFiles
	}
	if c.DocFiles <= 0 {
		c.DocFiles = d.DocFiles
	}
	if c.PromptFileChars <= 0 {
		c.PromptFileChars = d.PromptFileChars
	}
	if c.AnalysisMaxTokens <= 0 {
		c.AnalysisMaxTokens = d.AnalysisMaxTokens
	}
	if c.ReviewMaxTokens <= 0 {
		c.ReviewMaxTokens = d.ReviewMaxTokens
	}
	if c.GenerationMaxTokens <= 0 {
		c.GenerationMaxTokens = d.GenerationMaxTokens
	}
	return c
}
