package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/julianshen/repodoc/internal/config"
	"github.com/julianshen/repodoc/internal/delivery"
	"github.com/julianshen/repodoc/internal/ingest"
	"github.com/julianshen/repodoc/internal/integrations"
	"github.com/julianshen/repodoc/internal/pipeline"
	"github.com/julianshen/repodoc/internal/provider"
)

// remoteHTTPTimeout bounds a single hosting API call.
const remoteHTTPTimeout = 60 * time.Second

func ingestConfig(cfg *config.Config) ingest.Config {
	return ingest.Config{
		MaxFileSize:       cfg.Ingest.MaxFileSize,
		MaxContentChars:   cfg.Ingest.MaxContentChars,
		MaxDepth:          cfg.Ingest.MaxDepth,
		MaxRemoteFiles:    cfg.Ingest.MaxRemoteFiles,
		FetchConcurrency:  cfg.Ingest.FetchConcurrency,
		RequestsPerSecond: cfg.Ingest.RequestsPerSecond,
		Ref:               cfg.Ingest.Ref,
		GitHubBaseURL:     cfg.Ingest.GitHubBaseURL,
		GitLabBaseURL:     cfg.Ingest.GitLabBaseURL,
	}
}

func pipelineConfig(cfg *config.Config) pipeline.Config {
	return pipeline.Config{
		CodeFiles:           cfg.Pipeline.CodeFiles,
		DocFiles:            cfg.Pipeline.DocFiles,
		PromptFileChars:     cfg.Pipeline.PromptFileChars,
		AnalysisMaxTokens:   cfg.Pipeline.AnalysisMaxTokens,
		ReviewMaxTokens:     cfg.Pipeline.ReviewMaxTokens,
		GenerationMaxTokens: cfg.Pipeline.GenerationMaxTokens,
	}
}

func smtpConfig(cfg *config.Config) (delivery.SMTPConfig, error) {
	pw, err := cfg.SMTPPassword()
	if err != nil {
		return delivery.SMTPConfig{}, err
	}
	return delivery.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: pw,
		From:     cfg.Mail.From,
	}, nil
}

// newDeliverer returns the SMTP mailer, or nil when mail is disabled.
func newDeliverer(cfg *config.Config, logger *slog.Logger) (delivery.Deliverer, error) {
	if !cfg.Mail.Enabled {
		return nil, nil
	}
	sc, err := smtpConfig(cfg)
	if err != nil {
		return nil, err
	}
	return delivery.NewSMTPMailer(sc, logger), nil
}

// newCoordinator wires the ingester, the LLM provider and the mailer.
func newCoordinator(cfg *config.Config, logger *slog.Logger) (*pipeline.Coordinator, error) {
	p, err := provider.NewProvider(cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("creating provider: %w", err)
	}
	gen := integrations.NewLLMCompleter(p, cfg.Provider.Model, logger)

	deliverer, err := newDeliverer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("configuring mail: %w", err)
	}

	httpClient := &http.Client{Timeout: remoteHTTPTimeout}
	ing := &credentialIngester{
		next: ingest.NewIngester(ingestConfig(cfg), httpClient, logger),
		cfg:  cfg,
	}
	return pipeline.NewCoordinator(pipelineConfig(cfg), ing, gen, deliverer, logger), nil
}

// credentialIngester fills in the configured host token for remote sources
// that arrive without one.
type credentialIngester struct {
	next pipeline.Ingester
	cfg  *config.Config
}

func (c *credentialIngester) Ingest(ctx context.Context, src ingest.Source) ([]ingest.FileRecord, error) {
	if rs, ok := src.(ingest.RemoteSource); ok && rs.Credential == "" {
		rs.Credential = c.defaultToken(rs.Locator)
		src = rs
	}
	return c.next.Ingest(ctx, src)
}

func (c *credentialIngester) defaultToken(locator string) string {
	ref, err := ingest.ParseRepoRef(locator)
	if err != nil {
		return ""
	}
	gitlab := ref.Host == ingest.HostGitLab || strings.Contains(ref.Host, "gitlab") ||
		(c.cfg.Ingest.GitLabBaseURL != "" && ref.Host == hostOf(c.cfg.Ingest.GitLabBaseURL))
	return c.cfg.RemoteToken(gitlab)
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// exitCode maps run failures onto distinct process exit codes.
func exitCode(err error) int {
	var re *pipeline.RunError
	if !errors.As(err, &re) {
		return 1
	}
	switch re.Kind {
	case pipeline.KindInvalidSource:
		return 2
	case pipeline.KindRepositoryNotFound, pipeline.KindAuthenticationRequired:
		return 3
	case pipeline.KindTransportFailure:
		return 4
	default:
		return 5
	}
}
