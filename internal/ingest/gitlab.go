package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xanzy/go-gitlab"
)

const gitlabPageSize = 100

// GitLabFetcher reads a repository through the GitLab repositories API. The
// tree listing is paginated, and because it carries no sizes the size
// ceiling is enforced on each fetched blob instead.
type GitLabFetcher struct {
	cfg        Config
	logger     *slog.Logger
	httpClient *http.Client
}

// NewGitLabFetcher creates a GitLabFetcher.
func NewGitLabFetcher(cfg Config, httpClient *http.Client, logger *slog.Logger) *GitLabFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &GitLabFetcher{cfg: cfg.withDefaults(), logger: logger, httpClient: httpClient}
}

func (f *GitLabFetcher) client(credential, host string) (*gitlab.Client, error) {
	opts := []gitlab.ClientOptionFunc{gitlab.WithoutRetries()}
	switch {
	case f.cfg.GitLabBaseURL != "":
		opts = append(opts, gitlab.WithBaseURL(f.cfg.GitLabBaseURL))
	case host != "" && host != HostGitLab:
		opts = append(opts, gitlab.WithBaseURL("https://"+host))
	}
	if f.httpClient != nil {
		opts = append(opts, gitlab.WithHTTPClient(f.httpClient))
	}
	c, err := gitlab.NewClient(credential, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}
	return c, nil
}

// gitlabBlob is the JSON body of GET /projects/:id/repository/blobs/:sha.
type gitlabBlob struct {
	Size     int64  `json:"size"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
	SHA      string `json:"sha"`
}

// Fetch pages through the recursive tree until MaxRemoteFiles eligible blobs
// are collected, then fetches them. A failed listing page fails the fetch.
func (f *GitLabFetcher) Fetch(ctx context.Context, ref RepoRef, credential string) ([]FileRecord, error) {
	c, err := f.client(credential, ref.Host)
	if err != nil {
		return nil, err
	}
	pid := ref.FullName()

	opts := &gitlab.ListTreeOptions{
		ListOptions: gitlab.ListOptions{PerPage: gitlabPageSize, Page: 1},
		Recursive:   gitlab.Ptr(true),
	}
	treeish := ref.Ref
	if treeish == "" {
		treeish = f.cfg.Ref
	}
	if treeish != "" && treeish != "HEAD" {
		opts.Ref = gitlab.Ptr(treeish)
	}

	var entries []remoteEntry
	listed := 0
listing:
	for {
		nodes, resp, err := c.Repositories.ListTree(pid, opts, gitlab.WithContext(ctx))
		if err != nil {
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			return nil, classifyListingStatus(status, err)
		}
		listed += len(nodes)
		for _, n := range nodes {
			if n.Type != "blob" {
				continue
			}
			e := remoteEntry{Path: n.Path, SHA: n.ID}
			if !selectEntry(e, f.cfg) {
				continue
			}
			entries = append(entries, e)
			if len(entries) == f.cfg.MaxRemoteFiles {
				f.logger.Info("remote file cap reached", "repo", pid, "cap", f.cfg.MaxRemoteFiles)
				break listing
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	f.logger.Info("gitlab tree listed", "repo", pid, "entries", listed, "selected", len(entries))

	get := func(ctx context.Context, e remoteEntry) ([]byte, int64, error) {
		raw, _, err := c.Repositories.Blob(pid, e.SHA, gitlab.WithContext(ctx))
		if err != nil {
			return nil, 0, fmt.Errorf("fetching blob %s: %w", e.SHA, err)
		}
		var blob gitlabBlob
		if err := json.Unmarshal(raw, &blob); err != nil {
			return nil, 0, fmt.Errorf("parsing blob %s: %w", e.SHA, err)
		}
		data, err := decodeBlob(blob.Content, blob.Encoding)
		if err != nil {
			return nil, 0, err
		}
		return data, blob.Size, nil
	}

	return fetchEntries(ctx, f.cfg, f.logger, entries, get), nil
}
