package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Config represents the top-level application configuration.
type Config struct {
	Provider ProviderConfig `toml:"provider"`
	Ingest   IngestConfig   `toml:"ingest"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Mail     MailConfig     `toml:"mail"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// ProviderConfig holds settings for AI provider selection and configuration.
type ProviderConfig struct {
	Default   string                   `toml:"default"`
	Model     string                   `toml:"model"`
	Anthropic AnthropicProviderConfig  `toml:"anthropic"`
	OpenAI    []OpenAICompatibleConfig `toml:"openai_compatible"`
}

// AnthropicProviderConfig holds Anthropic-specific provider settings.
type AnthropicProviderConfig struct {
	BaseURL      string `toml:"base_url,omitempty"`
	APIKeySource string `toml:"api_key_source"`
	APIKey       string `toml:"api_key,omitempty"`
}

// OpenAICompatibleConfig holds settings for an OpenAI-compatible provider.
type OpenAICompatibleConfig struct {
	Name         string            `toml:"name"`
	BaseURL      string            `toml:"base_url"`
	APIKeySource string            `toml:"api_key_source"`
	APIKey       string            `toml:"api_key,omitempty"`
	ExtraHeaders map[string]string `toml:"extra_headers,omitempty"`
}

// IngestConfig bounds repository ingestion.
type IngestConfig struct {
	MaxFileSize       int64   `toml:"max_file_size"`
	MaxContentChars   int     `toml:"max_content_chars"`
	MaxDepth          int     `toml:"max_depth"`
	MaxRemoteFiles    int     `toml:"max_remote_files"`
	FetchConcurrency  int     `toml:"fetch_concurrency"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Ref               string  `toml:"ref"`
	GitHubBaseURL     string  `toml:"github_base_url,omitempty"`
	GitLabBaseURL     string  `toml:"gitlab_base_url,omitempty"`
	TokenSource       string  `toml:"token_source"`
	GitHubToken       string  `toml:"github_token,omitempty"`
	GitLabToken       string  `toml:"gitlab_token,omitempty"`
}

// PipelineConfig sizes the analysis stages.
type PipelineConfig struct {
	CodeFiles           int `toml:"code_files"`
	DocFiles            int `toml:"doc_files"`
	PromptFileChars     int `toml:"prompt_file_chars"`
	AnalysisMaxTokens   int `toml:"analysis_max_tokens"`
	ReviewMaxTokens     int `toml:"review_max_tokens"`
	GenerationMaxTokens int `toml:"generation_max_tokens"`
}

// MailConfig holds the SMTP relay used for email delivery.
type MailConfig struct {
	Enabled        bool   `toml:"enabled"`
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	Username       string `toml:"username"`
	PasswordSource string `toml:"password_source"`
	Password       string `toml:"password,omitempty"`
	From           string `toml:"from"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr       string `toml:"addr"`
	// AllowLocal lets API callers analyze directories on the server host.
	AllowLocal bool `toml:"allow_local"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Default: "anthropic",
			Model:   "claude-sonnet-4-5",
			Anthropic: AnthropicProviderConfig{
				APIKeySource: "env",
			},
		},
		Ingest: IngestConfig{
			MaxFileSize:       1 << 20,
			MaxContentChars:   50_000,
			MaxDepth:          10,
			MaxRemoteFiles:    100,
			FetchConcurrency:  10,
			RequestsPerSecond: 10,
			Ref:               "HEAD",
			TokenSource:       "env",
		},
		Pipeline: PipelineConfig{
			CodeFiles:           30,
			DocFiles:            10,
			PromptFileChars:     4000,
			AnalysisMaxTokens:   4096,
			ReviewMaxTokens:     6144,
			GenerationMaxTokens: 8192,
		},
		Mail: MailConfig{
			Port:           587,
			PasswordSource: "env",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Provider.Default == "" {
		errs = append(errs, errors.New("provider.default is required"))
	} else if c.Provider.Default != "anthropic" && c.openAIProvider(c.Provider.Default) == nil {
		errs = append(errs, fmt.Errorf("provider.default %q has no [[provider.openai_compatible]] entry", c.Provider.Default))
	}
	if c.Provider.Model == "" {
		errs = append(errs, errors.New("provider.model is required"))
	}

	if c.Ingest.MaxFileSize <= 0 {
		errs = append(errs, errors.New("ingest.max_file_size must be positive"))
	}
	if c.Ingest.MaxContentChars <= 0 {
		errs = append(errs, errors.New("ingest.max_content_chars must be positive"))
	}
	if c.Ingest.MaxDepth <= 0 {
		errs = append(errs, errors.New("ingest.max_depth must be positive"))
	}
	if c.Ingest.MaxRemoteFiles <= 0 {
		errs = append(errs, errors.New("ingest.max_remote_files must be positive"))
	}
	if c.Ingest.FetchConcurrency <= 0 {
		errs = append(errs, errors.New("ingest.fetch_concurrency must be positive"))
	}
	for name, raw := range map[string]string{
		"ingest.github_base_url": c.Ingest.GitHubBaseURL,
		"ingest.gitlab_base_url": c.Ingest.GitLabBaseURL,
	} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s %q is not an absolute URL", name, raw))
		}
	}

	if c.Mail.Enabled {
		if c.Mail.Host == "" {
			errs = append(errs, errors.New("mail.host is required when mail is enabled"))
		}
		if c.Mail.From == "" {
			errs = append(errs, errors.New("mail.from is required when mail is enabled"))
		}
		if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
			errs = append(errs, fmt.Errorf("mail.port %d is out of range", c.Mail.Port))
		}
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) openAIProvider(name string) *OpenAICompatibleConfig {
	for i := range c.Provider.OpenAI {
		if c.Provider.OpenAI[i].Name == name {
			return &c.Provider.OpenAI[i]
		}
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level %q is not one of debug, info, warn, error", s)
	}
}

// LogValue renders the configuration for logs with every secret masked.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", c.Provider.Default),
		slog.String("model", c.Provider.Model),
		slog.String("anthropic_api_key", Mask(c.Provider.Anthropic.APIKey)),
		slog.Int64("max_file_size", c.Ingest.MaxFileSize),
		slog.Int("max_remote_files", c.Ingest.MaxRemoteFiles),
		slog.String("github_token", Mask(c.Ingest.GitHubToken)),
		slog.String("gitlab_token", Mask(c.Ingest.GitLabToken)),
		slog.Bool("mail_enabled", c.Mail.Enabled),
		slog.String("mail_host", c.Mail.Host),
		slog.String("mail_password", Mask(c.Mail.Password)),
		slog.String("server_addr", c.Server.Addr),
	)
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 8:
		return "****"
	default:
		return "****" + secret[len(secret)-4:]
	}
}
