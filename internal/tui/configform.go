package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianshen/repodoc/internal/config"
)

// ConfigForm wraps a Huh form for editing the repodoc configuration.
type ConfigForm struct {
	form     *huh.Form
	cfg      *config.Config
	savePath string
	portStr  string
}

// NewConfigForm creates a config editor form populated from the given config.
func NewConfigForm(cfg *config.Config, savePath string) *ConfigForm {
	cf := &ConfigForm{
		cfg:      cfg,
		savePath: savePath,
		portStr:  strconv.Itoa(cfg.Mail.Port),
	}

	providerOptions := []huh.Option[string]{huh.NewOption("Anthropic", "anthropic")}
	for _, oc := range cfg.Provider.OpenAI {
		providerOptions = append(providerOptions, huh.NewOption(oc.Name+" (OpenAI compatible)", oc.Name))
	}

	providerGroup := huh.NewGroup(
		huh.NewSelect[string]().
			Title("Provider").
			Options(providerOptions...).
			Value(&cfg.Provider.Default),
		huh.NewInput().
			Title("Model").
			Value(&cfg.Provider.Model),
		huh.NewInput().
			Title("Anthropic API Key").
			Description("Leave empty to read " + config.EnvAnthropicKey).
			Value(&cfg.Provider.Anthropic.APIKey).
			EchoMode(huh.EchoModePassword),
	).Title("Provider")

	repoGroup := huh.NewGroup(
		huh.NewInput().
			Title("GitHub token").
			Description("Leave empty to read " + config.EnvGitHubToken).
			Value(&cfg.Ingest.GitHubToken).
			EchoMode(huh.EchoModePassword),
		huh.NewInput().
			Title("GitLab token").
			Description("Leave empty to read " + config.EnvGitLabToken).
			Value(&cfg.Ingest.GitLabToken).
			EchoMode(huh.EchoModePassword),
		huh.NewInput().
			Title("GitLab base URL").
			Placeholder("https://gitlab.com").
			Value(&cfg.Ingest.GitLabBaseURL),
	).Title("Repositories")

	mailGroup := huh.NewGroup(
		huh.NewConfirm().
			Title("Enable email delivery").
			Value(&cfg.Mail.Enabled),
		huh.NewInput().
			Title("SMTP host").
			Value(&cfg.Mail.Host),
		huh.NewInput().
			Title("SMTP port").
			Validate(validatePort).
			Value(&cf.portStr),
		huh.NewInput().
			Title("SMTP username").
			Value(&cfg.Mail.Username),
		huh.NewInput().
			Title("SMTP password").
			Description("Leave empty to read " + config.EnvSMTPPassword).
			Value(&cfg.Mail.Password).
			EchoMode(huh.EchoModePassword),
		huh.NewInput().
			Title("From address").
			Value(&cfg.Mail.From),
	).Title("Email")

	cf.form = huh.NewForm(providerGroup, repoGroup, mailGroup)
	return cf
}

// GroupCount returns the number of form groups.
func (c *ConfigForm) GroupCount() int { return 3 }

// Form returns the underlying huh.Form.
func (c *ConfigForm) Form() *huh.Form { return c.form }

// Run shows the form and saves the result on completion.
func (c *ConfigForm) Run(ctx context.Context) error {
	if err := c.form.RunWithContext(ctx); err != nil {
		return fmt.Errorf("running config form: %w", err)
	}
	return c.Save()
}

// Save persists the config to disk. Secrets typed into the form switch their
// source to "config"; the port string is parsed back to an int.
func (c *ConfigForm) Save() error {
	if v, err := strconv.Atoi(strings.TrimSpace(c.portStr)); err == nil {
		c.cfg.Mail.Port = v
	}
	if c.cfg.Provider.Anthropic.APIKey != "" {
		c.cfg.Provider.Anthropic.APIKeySource = "config"
	}
	if c.cfg.Ingest.GitHubToken != "" || c.cfg.Ingest.GitLabToken != "" {
		c.cfg.Ingest.TokenSource = "config"
	}
	if c.cfg.Mail.Password != "" {
		c.cfg.Mail.PasswordSource = "config"
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	return config.Save(c.savePath, c.cfg)
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}
