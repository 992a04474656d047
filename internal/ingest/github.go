package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v68/github"
)

// GitHubFetcher reads a repository through the GitHub git data API: one
// recursive tree listing, then one blob request per selected file.
type GitHubFetcher struct {
	cfg        Config
	logger     *slog.Logger
	httpClient *http.Client
}

// NewGitHubFetcher creates a GitHubFetcher. A nil httpClient uses
// http.DefaultClient; a nil logger uses slog.Default().
func NewGitHubFetcher(cfg Config, httpClient *http.Client, logger *slog.Logger) *GitHubFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &GitHubFetcher{cfg: cfg.withDefaults(), logger: logger, httpClient: httpClient}
}

func (f *GitHubFetcher) client(credential string) (*github.Client, error) {
	c := github.NewClient(f.httpClient)
	if credential != "" {
		c = c.WithAuthToken(credential)
	}
	if f.cfg.GitHubBaseURL != "" {
		base := f.cfg.GitHubBaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing github base url: %w", err)
		}
		c.BaseURL = u
	}
	return c, nil
}

// Fetch lists the tree at ref (or the configured default) and fetches up to
// MaxRemoteFiles eligible blobs. A failed listing fails the whole fetch.
func (f *GitHubFetcher) Fetch(ctx context.Context, ref RepoRef, credential string) ([]FileRecord, error) {
	c, err := f.client(credential)
	if err != nil {
		return nil, err
	}

	treeish := ref.Ref
	if treeish == "" {
		treeish = f.cfg.Ref
	}

	tree, resp, err := c.Git.GetTree(ctx, ref.Owner, ref.Name, treeish, true)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, classifyListingStatus(status, err)
	}
	if tree.GetTruncated() {
		f.logger.Warn("github tree listing truncated upstream", "repo", ref.FullName())
	}

	var entries []remoteEntry
	for _, te := range tree.Entries {
		if te.GetType() != "blob" {
			continue
		}
		e := remoteEntry{Path: te.GetPath(), SHA: te.GetSHA(), Size: int64(te.GetSize())}
		if !selectEntry(e, f.cfg) {
			continue
		}
		entries = append(entries, e)
		if len(entries) == f.cfg.MaxRemoteFiles {
			f.logger.Info("remote file cap reached", "repo", ref.FullName(), "cap", f.cfg.MaxRemoteFiles)
			break
		}
	}
	f.logger.Info("github tree listed", "repo", ref.FullName(), "entries", len(tree.Entries), "selected", len(entries))

	get := func(ctx context.Context, e remoteEntry) ([]byte, int64, error) {
		blob, _, err := c.Git.GetBlob(ctx, ref.Owner, ref.Name, e.SHA)
		if err != nil {
			return nil, 0, fmt.Errorf("fetching blob %s: %w", e.SHA, err)
		}
		data, err := decodeBlob(blob.GetContent(), blob.GetEncoding())
		if err != nil {
			return nil, 0, err
		}
		return data, int64(blob.GetSize()), nil
	}

	return fetchEntries(ctx, f.cfg, f.logger, entries, get), nil
}
