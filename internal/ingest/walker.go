package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
)

// Walker enumerates a local directory into file records. Traversal is
// sequential and depth-first.
type Walker struct {
	cfg    Config
	logger *slog.Logger
}

// NewWalker creates a Walker. A nil logger uses slog.Default().
func NewWalker(cfg Config, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{cfg: cfg.withDefaults(), logger: logger}
}

// Walk returns every eligible record beneath root in traversal order. Only a
// missing or non-directory root is an error; unreadable entries are skipped.
func (w *Walker) Walk(ctx context.Context, root string) ([]FileRecord, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSourceLocator, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidSourceLocator, root)
	}

	var records []FileRecord
	if err := w.walkDir(ctx, root, "", 0, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (w *Walker) walkDir(ctx context.Context, abs, rel string, depth int, out *[]FileRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth >= w.cfg.MaxDepth {
		w.logger.Debug("depth limit reached", "path", rel, "depth", depth)
		return nil
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		w.logger.Warn("skipping unreadable directory", "path", rel, "reason", err)
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		if SkipSegment(name) {
			continue
		}
		childAbs := filepath.Join(abs, name)
		childRel := path.Join(rel, name)

		// Stat follows symlinks; the depth cap bounds any cycle.
		info, err := os.Stat(childAbs)
		if err != nil {
			w.logger.Warn("skipping unreadable entry", "path", childRel, "reason", err)
			continue
		}

		if info.IsDir() {
			if err := w.walkDir(ctx, childAbs, childRel, depth+1, out); err != nil {
				return err
			}
			continue
		}

		if !info.Mode().IsRegular() || !Eligible(childRel, info.Size(), w.cfg.MaxFileSize) {
			continue
		}

		raw, err := os.ReadFile(childAbs)
		if err != nil {
			w.logger.Warn("skipping unreadable file", "path", childRel, "reason", err)
			continue
		}
		rec, ok := newRecord(childRel, raw, info.Size(), w.cfg.MaxContentChars)
		if !ok {
			w.logger.Debug("skipping binary file", "path", childRel)
			continue
		}
		*out = append(*out, rec)
	}
	return nil
}
