package processor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"mpic/internal/codec"
	"mpic/internal/config"
	"mpic/internal/logging"
	"mpic/pkg/imgutil"
)

// Handler processes one discovered image.
type Handler interface {
	Transcode(task Task) Result
}

// Walker visits a tree depth-first, one file at a time, and hands image files
// to its Handler.
type Walker struct {
	fs      afero.Fs
	cfg     config.Config
	handler Handler
	logger  *slog.Logger
	summary Summary
}

func NewWalker(fsys afero.Fs, cfg config.Config, h Handler, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Walker{fs: fsys, cfg: cfg, handler: h, logger: logger}
}

// Run compresses every image under cfg.SourceRoot.
func Run(ctx context.Context, fsys afero.Fs, c codec.Codec, cfg config.Config, logger *slog.Logger) (Summary, error) {
	info, err := fsys.Stat(cfg.SourceRoot)
	if err != nil {
		return Summary{}, fmt.Errorf("%w %s: %w", ErrDirectoryList, cfg.SourceRoot, err)
	}
	if !info.IsDir() {
		return Summary{}, fmt.Errorf("%w %s: not a directory", ErrDirectoryList, cfg.SourceRoot)
	}

	w := NewWalker(fsys, cfg, NewTranscoder(fsys, c, cfg, logger), logger)
	err = w.Walk(ctx, cfg.SourceRoot, cfg.SourceRoot)
	return w.Summary(), err
}

// Walk visits dir recursively. Entries come back sorted by name, so the order
// is deterministic. Per-file failures are counted and the walk moves on; a
// directory that cannot be listed aborts the walk. Cancelling ctx stops the
// walk before the next entry.
func (w *Walker) Walk(ctx context.Context, dir, base string) error {
	entries, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrDirectoryList, dir, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		full := filepath.Join(dir, entry.Name())
		if !w.cfg.Replace && full == w.cfg.OutputRoot {
			w.logger.Info("directory skipped", "path", full, "reason", "output directory")
			w.summary.SkippedDirs++
			continue
		}

		switch {
		case entry.IsDir():
			if w.cfg.IsExcluded(entry.Name()) {
				w.logger.Info("directory skipped", "path", full)
				w.summary.SkippedDirs++
				continue
			}
			if err := w.Walk(ctx, full, base); err != nil {
				return err
			}
		case entry.Mode().IsRegular() && imgutil.IsImagePath(full):
			w.summary.add(w.handler.Transcode(Task{Path: full, BaseDir: base}))
		}
	}
	return nil
}

// Summary returns the counters accumulated so far.
func (w *Walker) Summary() Summary {
	return w.summary
}
