package ingest

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"
)

// RemoteFetcher lists a remote repository tree and fetches its blobs.
type RemoteFetcher interface {
	Fetch(ctx context.Context, ref RepoRef, credential string) ([]FileRecord, error)
}

// remoteEntry is a tree entry that survived filtering. Size is zero when the
// listing does not report it.
type remoteEntry struct {
	Path string
	SHA  string
	Size int64
}

// blobFunc fetches one blob and returns its decoded bytes and reported size.
type blobFunc func(ctx context.Context, e remoteEntry) ([]byte, int64, error)

// selectEntry applies the shared inclusion rule to a listed blob.
func selectEntry(e remoteEntry, cfg Config) bool {
	return !SkipPath(e.Path) && Eligible(e.Path, e.Size, cfg.MaxFileSize)
}

// fetchEntries fetches every entry concurrently. Each fetch fails on its own;
// failed, oversized and binary files are logged and dropped. The batch
// returns once every request has settled.
func fetchEntries(ctx context.Context, cfg Config, logger *slog.Logger, entries []remoteEntry, get blobFunc) []FileRecord {
	if len(entries) == 0 {
		return nil
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.FetchConcurrency)
	}

	p := pool.NewWithResults[FileRecord]().WithErrors().WithMaxGoroutines(cfg.FetchConcurrency)
	for _, e := range entries {
		p.Go(func() (FileRecord, error) {
			rec, err := fetchEntry(ctx, cfg, limiter, e, get)
			if err != nil {
				logger.Warn("skipping remote file", "path", e.Path, "reason", err)
			}
			return rec, err
		})
	}

	// Per-file errors were already logged; only successes are kept.
	records, _ := p.Wait()
	return records
}

func fetchEntry(ctx context.Context, cfg Config, limiter *rate.Limiter, e remoteEntry, get blobFunc) (FileRecord, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return FileRecord{}, fmt.Errorf("rate limit wait: %w", err)
		}
	}
	data, size, err := get(ctx, e)
	if err != nil {
		return FileRecord{}, err
	}
	if size <= 0 {
		size = e.Size
	}
	if size >= cfg.MaxFileSize {
		return FileRecord{}, fmt.Errorf("size %d exceeds limit %d", size, cfg.MaxFileSize)
	}
	rec, ok := newRecord(e.Path, data, size, cfg.MaxContentChars)
	if !ok {
		return FileRecord{}, fmt.Errorf("binary content")
	}
	return rec, nil
}

// decodeBlob decodes blob content from its transport encoding.
func decodeBlob(content, encoding string) ([]byte, error) {
	switch strings.ToLower(encoding) {
	case "base64":
		// Hosting APIs wrap base64 payloads at 60 or 76 columns.
		clean := strings.NewReplacer("\n", "", "\r", "").Replace(content)
		data, err := base64.StdEncoding.DecodeString(clean)
		if err != nil {
			return nil, fmt.Errorf("decoding base64 blob: %w", err)
		}
		return data, nil
	case "", "utf-8", "utf8", "text":
		return []byte(content), nil
	default:
		return nil, fmt.Errorf("unsupported blob encoding %q", encoding)
	}
}
