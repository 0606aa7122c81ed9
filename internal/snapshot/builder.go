// Package snapshot builds the path-keyed source snapshot served to the UI.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/taigrr/annotate/internal/scanner"
	"github.com/taigrr/annotate/internal/types"
)

// Builder scans a root and reads every matching file on a bounded pool of
// workers. A Builder holds no per-request state.
type Builder struct {
	scanner *scanner.Scanner
	workers int
	logger  *log.Logger
}

// New creates a Builder. workers <= 0 uses one worker per CPU.
func New(sc *scanner.Scanner, workers int, logger *log.Logger) *Builder {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Builder{
		scanner: sc,
		workers: workers,
		logger:  logger,
	}
}

type fileResult struct {
	key   string
	lines types.SourceFile
	err   error
}

// Build produces a fresh snapshot of root. Files that cannot be read are
// left out and reported in BuildResult.Skipped; only scan failures abort.
func (b *Builder) Build(ctx context.Context, root string) (types.BuildResult, error) {
	start := time.Now()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return types.BuildResult{}, types.NewError(types.KindScan, root, err)
	}

	files, err := b.scanner.Scan(ctx, absRoot)
	if err != nil {
		return types.BuildResult{}, err
	}
	sort.Strings(files)

	results := make([]fileResult, len(files))
	jobs := make(chan int)

	numWorkers := max(min(b.workers, len(files)), 1)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Go(func() {
			for idx := range jobs {
				lines, err := ReadSourceFile(files[idx])
				results[idx] = fileResult{
					key:   pathKey(absRoot, files[idx]),
					lines: lines,
					err:   err,
				}
			}
		})
	}

feed:
	for idx := range files {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return types.BuildResult{}, fmt.Errorf("snapshot build cancelled: %w", err)
	}

	result := types.BuildResult{Snapshot: make(types.Snapshot, len(files))}
	for _, r := range results {
		if r.err != nil {
			b.logger.Warn("skipping unreadable file", "path", r.key, "err", r.err)
			result.Skipped = append(result.Skipped, types.SkippedFile{
				Path:   r.key,
				Reason: reason(r.err),
			})
			continue
		}
		result.Snapshot[r.key] = r.lines
	}

	b.logger.Debug("snapshot built",
		"root", absRoot,
		"files", len(result.Snapshot),
		"skipped", len(result.Skipped),
		"duration", time.Since(start),
	)

	return result, nil
}

// pathKey returns the root-relative, slash-separated key for a file.
func pathKey(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func reason(err error) string {
	var e *types.Error
	if errors.As(err, &e) {
		return e.Err.Error()
	}
	return err.Error()
}
