package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Ingester resolves a Source into a ranked record sequence.
type Ingester struct {
	walker  *Walker
	remotes map[string]RemoteFetcher
	gitlab  RemoteFetcher
	logger  *slog.Logger
}

// NewIngester wires the local walker and the GitHub and GitLab fetchers. The
// configured API base URLs also register their hosts.
func NewIngester(cfg Config, httpClient *http.Client, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	gh := NewGitHubFetcher(cfg, httpClient, logger)
	gl := NewGitLabFetcher(cfg, httpClient, logger)
	in := &Ingester{
		walker: NewWalker(cfg, logger),
		remotes: map[string]RemoteFetcher{
			HostGitHub: gh,
			HostGitLab: gl,
		},
		gitlab: gl,
		logger: logger,
	}
	if h := hostOf(cfg.GitHubBaseURL); h != "" {
		in.registerRemote(h, gh)
	}
	if h := hostOf(cfg.GitLabBaseURL); h != "" {
		in.registerRemote(h, gl)
	}
	return in
}

// registerRemote routes repositories on host to fetcher.
func (in *Ingester) registerRemote(host string, fetcher RemoteFetcher) {
	in.remotes[strings.ToLower(host)] = fetcher
}

// Ingest validates the source, collects its records and ranks them.
func (in *Ingester) Ingest(ctx context.Context, src Source) ([]FileRecord, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no source", ErrInvalidSourceLocator)
	}

	var (
		records []FileRecord
		err     error
	)
	switch s := src.(type) {
	case LocalSource:
		if err := s.Validate(); err != nil {
			return nil, err
		}
		records, err = in.walker.Walk(ctx, s.Path)
	case RemoteSource:
		ref, perr := ParseRepoRef(s.Locator)
		if perr != nil {
			return nil, perr
		}
		fetcher, ok := in.remoteFor(ref.Host)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported host %q", ErrInvalidSourceLocator, ref.Host)
		}
		records, err = fetcher.Fetch(ctx, ref, s.Credential)
	default:
		return nil, fmt.Errorf("%w: unknown source type %T", ErrInvalidSourceLocator, src)
	}
	if err != nil {
		return nil, err
	}

	in.logger.Info("ingestion complete", "files", len(records))
	return Rank(records), nil
}

func (in *Ingester) remoteFor(host string) (RemoteFetcher, bool) {
	if f, ok := in.remotes[host]; ok {
		return f, true
	}
	if isGitLabHost(host) {
		return in.gitlab, true
	}
	return nil, false
}

func hostOf(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
