package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/taigrr/annotate/internal/types"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	return string(data)
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestStore_ReadNotesDefault(t *testing.T) {
	s := New(t.TempDir(), "", "")

	notes, err := s.ReadNotes()
	if err != nil {
		t.Fatalf("ReadNotes() error = %v", err)
	}
	if notes != "{}" {
		t.Errorf("ReadNotes() = %q, want {}", notes)
	}
}

func TestStore_NotesRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"json object", `{"a.py:1":"todo"}`},
		{"plain text", "not json at all\n\twith  trailing space  \n"},
		{"empty", ""},
		{"unicode", `{"unicode":"ünïcødé ✓"}`},
	}

	dir := t.TempDir()
	s := New(dir, "", "")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.WriteNotes(tt.body); err != nil {
				t.Fatalf("WriteNotes() error = %v", err)
			}

			got, err := s.ReadNotes()
			if err != nil {
				t.Fatalf("ReadNotes() error = %v", err)
			}
			if got != tt.body {
				t.Errorf("ReadNotes() = %q, want %q", got, tt.body)
			}
			if onDisk := readFile(t, filepath.Join(dir, DefaultNotesFile)); onDisk != tt.body {
				t.Errorf("notes on disk = %q, want %q", onDisk, tt.body)
			}
		})
	}
}

func TestStore_WriteReplacesWholesale(t *testing.T) {
	s := New(t.TempDir(), "", "")

	if err := s.WriteNotes(`{"a":1,"b":2,"c":3}`); err != nil {
		t.Fatalf("WriteNotes() error = %v", err)
	}
	if err := s.WriteNotes(`{"z":0}`); err != nil {
		t.Fatalf("WriteNotes() error = %v", err)
	}

	got, err := s.ReadNotes()
	if err != nil {
		t.Fatalf("ReadNotes() error = %v", err)
	}
	if got != `{"z":0}` {
		t.Errorf("ReadNotes() = %q, want %q", got, `{"z":0}`)
	}
}

func TestStore_WriteSnapshotCache(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "", "")

	if err := s.WriteSnapshotCache([]byte(`{"a.py":["x"]}`)); err != nil {
		t.Fatalf("WriteSnapshotCache() error = %v", err)
	}
	if err := s.WriteSnapshotCache([]byte(`{}`)); err != nil {
		t.Fatalf("WriteSnapshotCache() error = %v", err)
	}

	want := filepath.Join(dir, DefaultCacheFile)
	if s.CachePath() != want {
		t.Errorf("CachePath() = %q, want %q", s.CachePath(), want)
	}
	if got := readFile(t, want); got != `{}` {
		t.Errorf("cache = %q, want {}", got)
	}
}

func TestStore_CustomNames(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "annotations.json", "last-source.json")

	if err := s.WriteNotes("n"); err != nil {
		t.Fatalf("WriteNotes() error = %v", err)
	}

	want := filepath.Join(dir, "annotations.json")
	if s.NotesPath() != want {
		t.Errorf("NotesPath() = %q, want %q", s.NotesPath(), want)
	}
	if got := readFile(t, want); got != "n" {
		t.Errorf("notes = %q, want n", got)
	}
	if s.CachePath() != filepath.Join(dir, "last-source.json") {
		t.Errorf("CachePath() = %q", s.CachePath())
	}
}

func TestStore_FailedWriteKeepsPreviousNotes(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "", "")

	const previous = `{"a.py:1":"keep me"}`
	if err := s.WriteNotes(previous); err != nil {
		t.Fatalf("WriteNotes() error = %v", err)
	}

	renameFile = func(string, string) error { return errors.New("disk full") }
	t.Cleanup(func() { renameFile = os.Rename })

	err := s.WriteNotes(`{"a.py:1":"lost"}`)
	if err == nil {
		t.Fatal("WriteNotes() should fail when the rename fails")
	}
	if kind := types.KindOf(err); kind != types.KindPersistence {
		t.Errorf("KindOf() = %q, want %q", kind, types.KindPersistence)
	}

	got, err := s.ReadNotes()
	if err != nil {
		t.Fatalf("ReadNotes() error = %v", err)
	}
	if got != previous {
		t.Errorf("ReadNotes() = %q, want previous notes %q", got, previous)
	}
	assertNoTempFiles(t, dir)
}

func TestStore_FailedWriteLeavesNoTemporaryFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "", "")

	// A non-empty directory in place of the artifact makes the rename fail.
	blocker := filepath.Join(dir, DefaultCacheFile)
	if err := os.MkdirAll(filepath.Join(blocker, "keep"), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	err := s.WriteSnapshotCache([]byte(`{}`))
	if err == nil {
		t.Fatal("WriteSnapshotCache() should fail over a non-empty directory")
	}
	if kind := types.KindOf(err); kind != types.KindPersistence {
		t.Errorf("KindOf() = %q, want %q", kind, types.KindPersistence)
	}

	assertNoTempFiles(t, dir)
	if info, err := os.Stat(filepath.Join(blocker, "keep")); err != nil || !info.IsDir() {
		t.Errorf("blocking directory was disturbed: %v", err)
	}
}

func TestStore_ReadNotesFailure(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "", "")

	if err := os.Mkdir(filepath.Join(dir, DefaultNotesFile), 0o755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	_, err := s.ReadNotes()
	if err == nil {
		t.Fatal("ReadNotes() should fail when the notes path is a directory")
	}
	if kind := types.KindOf(err); kind != types.KindPersistence {
		t.Errorf("KindOf() = %q, want %q", kind, types.KindPersistence)
	}
}

func TestStore_ConcurrentWritesAreSerialized(t *testing.T) {
	s := New(t.TempDir(), "", "")

	written := make(map[string]bool)
	var wg sync.WaitGroup
	for i := range 32 {
		body := fmt.Sprintf(`{"writer":%d,"pad":"%s"}`, i, strings.Repeat("x", 4096))
		written[body] = true
		wg.Go(func() {
			if err := s.WriteNotes(body); err != nil {
				t.Errorf("WriteNotes() error = %v", err)
			}
		})
	}
	wg.Wait()

	got, err := s.ReadNotes()
	if err != nil {
		t.Fatalf("ReadNotes() error = %v", err)
	}
	if !written[got] {
		t.Error("final notes are not one of the written bodies")
	}
}
