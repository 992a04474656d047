package ingest

// Config bounds what ingestion reads and how hard it hits remote APIs.
type Config struct {
	MaxFileSize       int64   // files at or above this size are skipped
	MaxContentChars   int     // truncation bound for record content
	MaxDepth          int     // local recursion depth cap
	MaxRemoteFiles    int     // cap on remote entries fetched per run
	FetchConcurrency  int     // parallel blob requests
	RequestsPerSecond float64 // blob request rate; <= 0 disables limiting
	Ref               string  // remote tree-ish, "HEAD" by default
	GitHubBaseURL     string  // empty for api.github.com
	GitLabBaseURL     string  // empty for gitlab.com
}

// DefaultConfig returns the stock ingestion limits.
func DefaultConfig() Config {
	return Config{
		MaxFileSize:       1 << 20,
		MaxContentChars:   50_000,
		MaxDepth:          10,
		MaxRemoteFiles:    100,
		FetchConcurrency:  10,
		RequestsPerSecond: 10,
		Ref:               "HEAD",
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = d.MaxFileSize
	}
	if c.MaxContentChars <= 0 {
		c.MaxContentChars = d.MaxContentChars
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	if c.MaxRemoteFiles <= 0 {
		c.MaxRemoteFiles = d.MaxRemoteFiles
	}
	if c.FetchConcurrency <= 0 {
		c.FetchConcurrency = d.FetchConcurrency
	}
	if c.Ref == "" {
		c.Ref = d.Ref
	}
	return c
}
