// Package store persists the notes document and the snapshot cache inside the
// project root.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/taigrr/annotate/internal/types"
)

const (
	// DefaultNotesFile is the notes artifact name used by the UI.
	DefaultNotesFile = "notes.json"
	// DefaultCacheFile is the snapshot cache artifact name.
	DefaultCacheFile = "source.json"
	// DefaultNotes is returned when no notes have been saved yet.
	DefaultNotes = "{}"
)

// renameFile commits a finished temp file. Replaced in tests.
var renameFile = os.Rename

// Store reads and writes the two on-disk artifacts.
type Store struct {
	notes *artifact
	cache *artifact
}

// artifact is one file with its own writer lock.
type artifact struct {
	mu   sync.Mutex
	path string
}

// New creates a Store keeping both artifacts directly in dir. Empty names
// fall back to the defaults.
func New(dir, notesName, cacheName string) *Store {
	absDir, _ := filepath.Abs(dir)
	if notesName == "" {
		notesName = DefaultNotesFile
	}
	if cacheName == "" {
		cacheName = DefaultCacheFile
	}
	return &Store{
		notes: &artifact{path: filepath.Join(absDir, notesName)},
		cache: &artifact{path: filepath.Join(absDir, cacheName)},
	}
}

// NotesPath returns the absolute path of the notes artifact.
func (s *Store) NotesPath() string {
	return s.notes.path
}

// CachePath returns the absolute path of the snapshot cache artifact.
func (s *Store) CachePath() string {
	return s.cache.path
}

// ReadNotes returns the stored notes verbatim, or DefaultNotes if none exist.
func (s *Store) ReadNotes() (string, error) {
	content, err := os.ReadFile(s.notes.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultNotes, nil
		}
		if errors.Is(err, fs.ErrPermission) {
			return "", types.NewError(types.KindPersistence, s.notes.path, fmt.Errorf("permission denied: %w", err))
		}
		return "", types.NewError(types.KindPersistence, s.notes.path, fmt.Errorf("failed to read notes: %w", err))
	}
	return string(content), nil
}

// WriteNotes replaces the notes artifact with text. No validation or merge
// takes place.
func (s *Store) WriteNotes(text string) error {
	return s.notes.replace([]byte(text))
}

// WriteSnapshotCache overwrites the snapshot cache with data. The cache is
// never read back by the server.
func (s *Store) WriteSnapshotCache(data []byte) error {
	return s.cache.replace(data)
}

// replace writes data to a temp file next to the artifact and renames it into
// place, so readers see either the old or the new content.
func (a *artifact) replace(data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := writeAtomic(a.path, data); err != nil {
		return types.NewError(types.KindPersistence, a.path, err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := renameFile(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	committed = true
	return nil
}
