package snapshot

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/taigrr/annotate/internal/pathfilter"
	"github.com/taigrr/annotate/internal/scanner"
	"github.com/taigrr/annotate/internal/types"
)

func setupTestTree(t *testing.T, files map[string]string) string {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "annotate-snapshot-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	for rel, content := range files {
		full := filepath.Join(tmpDir, filepath.FromSlash(rel))
		os.MkdirAll(filepath.Dir(full), 0o755)
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
	return tmpDir
}

func newBuilder(exts []string, logger *log.Logger) *Builder {
	pf := pathfilter.New(&types.PathFilterConfig{AllowedExtensions: exts})
	return New(scanner.New(pf), 4, logger)
}

func keys(s types.Snapshot) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func TestBuilder_Build(t *testing.T) {
	t.Run("single file", func(t *testing.T) {
		root := setupTestTree(t, map[string]string{"a.py": "x = 1\ny = 2\n"})

		result, err := newBuilder([]string{"py"}, nil).Build(context.Background(), root)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}

		data, _ := Encode(result.Snapshot)
		if got, want := string(data), `{"a.py":["x = 1","y = 2"]}`; got != want {
			t.Errorf("Encode() = %s, want %s", got, want)
		}
	})

	t.Run("nested key uses forward slashes", func(t *testing.T) {
		root := setupTestTree(t, map[string]string{"sub/d.py": "pass\n"})

		result, err := newBuilder([]string{"py"}, nil).Build(context.Background(), root)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}

		lines, ok := result.Snapshot["sub/d.py"]
		if !ok {
			t.Fatalf("snapshot keys = %v, want sub/d.py", keys(result.Snapshot))
		}
		if !slices.Equal([]string(lines), []string{"pass"}) {
			t.Errorf("lines = %q, want [pass]", lines)
		}
	})

	t.Run("key set matches extension set exactly", func(t *testing.T) {
		root := setupTestTree(t, map[string]string{
			"a.py":  "",
			"b.txt": "",
			"c.md":  "",
		})

		result, err := newBuilder([]string{"py", "txt"}, nil).Build(context.Background(), root)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}

		if got := keys(result.Snapshot); !slices.Equal(got, []string{"a.py", "b.txt"}) {
			t.Errorf("keys = %v, want [a.py b.txt]", got)
		}
	})

	t.Run("empty file encodes as empty array", func(t *testing.T) {
		root := setupTestTree(t, map[string]string{"empty.py": ""})

		result, err := newBuilder([]string{"py"}, nil).Build(context.Background(), root)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}

		data, _ := Encode(result.Snapshot)
		if got := string(data); got != `{"empty.py":[]}` {
			t.Errorf("Encode() = %s", got)
		}
	})

	t.Run("empty extension set yields empty snapshot", func(t *testing.T) {
		root := setupTestTree(t, map[string]string{"a.py": "x"})

		result, err := newBuilder(nil, nil).Build(context.Background(), root)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}

		data, _ := Encode(result.Snapshot)
		if got := string(data); got != "{}" {
			t.Errorf("Encode() = %s, want {}", got)
		}
	})

	t.Run("unreadable file is skipped and reported", func(t *testing.T) {
		root := setupTestTree(t, map[string]string{
			"good.py":    "ok\n",
			"bad/bin.py": string([]byte{0xff, 0xfe, 0xfd}),
		})
		var buf bytes.Buffer
		logger := log.New(&buf)

		result, err := newBuilder([]string{"py"}, logger).Build(context.Background(), root)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}

		if got := keys(result.Snapshot); !slices.Equal(got, []string{"good.py"}) {
			t.Errorf("keys = %v, want [good.py]", got)
		}
		if got := result.SkippedPaths(); !slices.Equal(got, []string{"bad/bin.py"}) {
			t.Errorf("SkippedPaths() = %v, want [bad/bin.py]", got)
		}
		if result.Skipped[0].Reason != ErrNotText.Error() {
			t.Errorf("Reason = %q, want %q", result.Skipped[0].Reason, ErrNotText.Error())
		}
		if !strings.Contains(buf.String(), "skipping unreadable file") {
			t.Errorf("expected warning in log output, got: %s", buf.String())
		}
	})

	t.Run("missing root fails", func(t *testing.T) {
		root := setupTestTree(t, nil)

		_, err := newBuilder([]string{"py"}, nil).Build(context.Background(), filepath.Join(root, "missing"))
		if types.KindOf(err) != types.KindScan {
			t.Errorf("KindOf() = %q, want %q", types.KindOf(err), types.KindScan)
		}
	})
}

func TestBuilder_Idempotent(t *testing.T) {
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		files["pkg/"+name+".py"] = "def " + name + "():\n    return '<" + name + ">'\n"
	}
	root := setupTestTree(t, files)
	builder := newBuilder([]string{"py"}, nil)

	first, err := builder.Build(context.Background(), root)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	second, err := builder.Build(context.Background(), root)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	a, _ := Encode(first.Snapshot)
	b, _ := Encode(second.Snapshot)
	if !bytes.Equal(a, b) {
		t.Errorf("consecutive builds differ:\n%s\n%s", a, b)
	}
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("Fingerprint() differs for identical snapshots")
	}
	if !strings.Contains(string(a), "'<a>'") {
		t.Errorf("Encode() escaped HTML characters: %s", a)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte(`{"a.py":["x"]}`))
	b := Fingerprint([]byte(`{"a.py":["y"]}`))
	if a == b {
		t.Error("Fingerprint() should differ for different content")
	}
	if !strings.HasPrefix(a, `"`) || !strings.HasSuffix(a, `"`) {
		t.Errorf("Fingerprint() = %s, want quoted entity tag", a)
	}
}
