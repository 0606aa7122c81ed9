// Package scanner enumerates the source files of a project tree.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/taigrr/annotate/internal/pathfilter"
	"github.com/taigrr/annotate/internal/types"
)

var (
	// ErrNotADirectory is returned when the scan root is missing or is not a
	// directory.
	ErrNotADirectory = errors.New("not a directory")

	// ErrCyclicSymlink is returned when a symlinked directory leads back to
	// one of its own ancestors.
	ErrCyclicSymlink = errors.New("cyclic symlink")
)

// Scanner walks a root directory and collects files accepted by its filter.
type Scanner struct {
	pathFilter *pathfilter.PathFilter
}

// New creates a Scanner. A nil filter accepts no files.
func New(pf *pathfilter.PathFilter) *Scanner {
	if pf == nil {
		pf = pathfilter.New(nil)
	}
	return &Scanner{pathFilter: pf}
}

// Scan returns the absolute paths of every qualifying file under root.
// Order is unspecified. Each file appears once per distinct path reaching it.
func (s *Scanner) Scan(ctx context.Context, root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, types.NewError(types.KindScan, root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, types.NewError(types.KindScan, root, fmt.Errorf("%w: %v", ErrNotADirectory, err))
	}
	if !info.IsDir() {
		return nil, types.NewError(types.KindScan, root, ErrNotADirectory)
	}

	if len(s.pathFilter.Extensions()) == 0 {
		return []string{}, nil
	}

	canonical, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, types.NewError(types.KindScan, root, err)
	}

	w := &walker{
		ctx:        ctx,
		pathFilter: s.pathFilter,
		ancestors:  make(map[string]bool),
		files:      []string{},
	}
	if err := w.walk(absRoot, "", canonical); err != nil {
		return nil, err
	}

	return w.files, nil
}

type walker struct {
	ctx        context.Context
	pathFilter *pathfilter.PathFilter
	// ancestors holds the canonical paths of the directories on the current
	// descent, so a symlink pointing back up is caught.
	ancestors map[string]bool
	files     []string
}

func (w *walker) walk(dir, rel, canonical string) error {
	if err := w.ctx.Err(); err != nil {
		return fmt.Errorf("scan cancelled: %w", err)
	}

	if w.ancestors[canonical] {
		return types.NewError(types.KindScan, displayPath(rel), ErrCyclicSymlink)
	}
	w.ancestors[canonical] = true
	defer delete(w.ancestors, canonical)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return types.NewError(types.KindScan, displayPath(rel), fmt.Errorf("permission denied: %w", err))
		}
		return types.NewError(types.KindScan, displayPath(rel), err)
	}

	for _, entry := range entries {
		fullPath := filepath.Join(dir, entry.Name())
		relPath := path.Join(rel, entry.Name())

		// Symlinks are classified by their target; dangling links count as
		// non-regular and are skipped.
		mode := entry.Type()
		if mode&fs.ModeSymlink != 0 {
			mode = fs.ModeIrregular
			if target, err := os.Stat(fullPath); err == nil {
				mode = target.Mode().Type()
			}
		}
		isDir := mode.IsDir()

		if isDir {
			if w.pathFilter.IsIgnoredDir(relPath) {
				continue
			}
			childCanonical, err := filepath.EvalSymlinks(fullPath)
			if err != nil {
				return types.NewError(types.KindScan, relPath, err)
			}
			if err := w.walk(fullPath, relPath, childCanonical); err != nil {
				return err
			}
			continue
		}

		// Sockets, pipes and devices are never source files, whether found
		// directly or through a symlink.
		if !mode.IsRegular() {
			continue
		}

		if w.pathFilter.IsAllowed(relPath) {
			w.files = append(w.files, fullPath)
		}
	}

	return nil
}

func displayPath(rel string) string {
	if rel == "" {
		return "."
	}
	return rel
}
