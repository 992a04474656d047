package config

import (
	"fmt"
	"os"
)

// Environment variables consulted for credentials when the source is "env".
const (
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvGitHubToken  = "GITHUB_TOKEN"
	EnvGitLabToken  = "GITLAB_TOKEN"
	EnvSMTPPassword = "REPODOC_SMTP_PASSWORD"
)

// ResolveSecret resolves a credential based on the given source.
// Supported sources: "env" (from environment variable), "config" (from config value),
// "keyring" (currently falls back to env).
func ResolveSecret(source, configValue, envVar string) (string, error) {
	switch source {
	case "keyring", "env", "":
		return resolveFromEnv(envVar)
	case "config":
		if configValue == "" {
			return "", fmt.Errorf("source is 'config' but no value provided")
		}
		return configValue, nil
	default:
		return "", fmt.Errorf("unknown secret source: %q", source)
	}
}

// ResolveAPIKey resolves a provider API key.
func ResolveAPIKey(source, configValue, envVar string) (string, error) {
	key, err := ResolveSecret(source, configValue, envVar)
	if err != nil {
		return "", fmt.Errorf("api key: %w", err)
	}
	return key, nil
}

// OptionalSecret is ResolveSecret for credentials that may be absent, such as
// tokens for public repositories. A missing value is not an error.
func OptionalSecret(source, configValue, envVar string) string {
	if source == "config" {
		return configValue
	}
	return os.Getenv(envVar)
}

// RemoteToken returns the credential for a repository host, or "".
func (c *Config) RemoteToken(gitlab bool) string {
	if gitlab {
		return OptionalSecret(c.Ingest.TokenSource, c.Ingest.GitLabToken, EnvGitLabToken)
	}
	return OptionalSecret(c.Ingest.TokenSource, c.Ingest.GitHubToken, EnvGitHubToken)
}

// SMTPPassword resolves the mail relay password. A relay without
// authentication needs none.
func (c *Config) SMTPPassword() (string, error) {
	if c.Mail.Username == "" {
		return "", nil
	}
	pw, err := ResolveSecret(c.Mail.PasswordSource, c.Mail.Password, EnvSMTPPassword)
	if err != nil {
		return "", fmt.Errorf("smtp password: %w", err)
	}
	return pw, nil
}

func resolveFromEnv(envVar string) (string, error) {
	if envVar == "" {
		return "", fmt.Errorf("no environment variable name specified")
	}
	val := os.Getenv(envVar)
	if val == "" {
		return "", fmt.Errorf("environment variable %s is not set", envVar)
	}
	return val, nil
}
