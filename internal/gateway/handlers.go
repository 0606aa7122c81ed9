package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"
	"unicode/utf8"

	"github.com/taigrr/annotate/internal/logging"
	"github.com/taigrr/annotate/internal/snapshot"
	"github.com/taigrr/annotate/internal/types"
)

func (g *Gateway) handleIndex(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(g.indexPath())
	if err != nil {
		g.writeError(w, r, types.NewError(types.KindNotFound, "index.html", err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		g.writeError(w, r, types.NewError(types.KindNotFound, "index.html", fs.ErrNotExist))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, "index.html", info.ModTime(), f)
}

func (g *Gateway) handleSource(w http.ResponseWriter, r *http.Request) {
	defer logging.Performance(g.logger, "source", time.Now())

	result, err := g.builder.Build(r.Context(), g.cfg.Root)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			g.logger.Debug("source request cancelled", "path", r.URL.Path)
			return
		}
		g.writeError(w, r, err)
		return
	}

	data, err := snapshot.Encode(result.Snapshot)
	if err != nil {
		g.writeError(w, r, err)
		return
	}

	if err := g.store.WriteSnapshotCache(data); err != nil {
		g.writeError(w, r, err)
		return
	}

	etag := snapshot.Fingerprint(data)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if len(result.Skipped) > 0 {
		skipped, _ := json.Marshal(result.SkippedPaths())
		w.Header().Set(HeaderSkipped, string(skipped))
	}

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (g *Gateway) handleGetNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := g.store.ReadNotes()
	if err != nil {
		g.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, notes)
}

func (g *Gateway) handlePostNotes(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, g.cfg.MaxNotesBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			g.writeError(w, r, types.NewError(types.KindTooLarge, "",
				fmt.Errorf("notes body exceeds %d bytes", maxErr.Limit)))
			return
		}
		g.writeError(w, r, types.NewError(types.KindBadRequest, "", fmt.Errorf("failed to read body: %w", err)))
		return
	}

	if !utf8.Valid(data) {
		g.writeError(w, r, types.NewError(types.KindBadRequest, "", errors.New("notes body is not valid UTF-8")))
		return
	}

	if err := g.store.WriteNotes(string(data)); err != nil {
		g.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, NotesAck)
}

// handleStatic serves files below the static directory. Directories and
// paths escaping the directory are not found.
func (g *Gateway) handleStatic(w http.ResponseWriter, r *http.Request) {
	rel := r.PathValue("path")
	if rel == "" || !fs.ValidPath(rel) {
		g.writeError(w, r, types.NewError(types.KindNotFound, rel, fs.ErrNotExist))
		return
	}

	root, err := os.OpenRoot(g.staticDir())
	if err != nil {
		g.writeError(w, r, types.NewError(types.KindNotFound, rel, err))
		return
	}
	defer root.Close()

	f, err := root.Open(rel)
	if err != nil {
		g.writeError(w, r, types.NewError(types.KindNotFound, rel, fs.ErrNotExist))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		g.writeError(w, r, types.NewError(types.KindNotFound, rel, fs.ErrNotExist))
		return
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
