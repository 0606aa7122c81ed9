// Package gateway exposes the source snapshot and the notes document over
// HTTP and serves the browser UI files.
package gateway

import (
	"context"
	"io"
	"net/http"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/taigrr/annotate/internal/types"
)

const (
	// HeaderSkipped lists, as a JSON array, files left out of a snapshot
	// because they could not be read.
	HeaderSkipped = "X-Annotate-Skipped"
	// HeaderRequestID carries the request identifier on every response.
	HeaderRequestID = "X-Request-ID"
	// NotesAck is the body returned after notes are saved.
	NotesAck = "Done"
)

// SnapshotBuilder builds a fresh snapshot of a project root.
type SnapshotBuilder interface {
	Build(ctx context.Context, root string) (types.BuildResult, error)
}

// ArtifactStore persists the notes document and the snapshot cache.
type ArtifactStore interface {
	ReadNotes() (string, error)
	WriteNotes(text string) error
	WriteSnapshotCache(data []byte) error
}

// Gateway routes requests over a fixed configuration. It keeps no state
// between requests.
type Gateway struct {
	cfg     types.ScanConfig
	builder SnapshotBuilder
	store   ArtifactStore
	logger  *log.Logger
}

// New creates a Gateway.
func New(cfg types.ScanConfig, builder SnapshotBuilder, store ArtifactStore, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Gateway{
		cfg:     cfg,
		builder: builder,
		store:   store,
		logger:  logger,
	}
}

// Handler returns the routed handler wrapped with request ID and logging
// middleware.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", g.handleIndex)
	mux.HandleFunc("GET /index.html", g.handleIndex)

	for _, path := range []string{"/source", "/source.json"} {
		mux.HandleFunc("GET "+path, g.handleSource)
	}

	for _, path := range []string{"/notes", "/notes.json"} {
		mux.HandleFunc("GET "+path, g.handleGetNotes)
		mux.HandleFunc("POST "+path, g.handlePostNotes)
	}

	mux.HandleFunc("GET /static/{path...}", g.handleStatic)

	return withRequestID(withLogging(g.logger, mux))
}

func (g *Gateway) indexPath() string {
	return filepath.Join(g.cfg.UIDir, "index.html")
}

func (g *Gateway) staticDir() string {
	return filepath.Join(g.cfg.UIDir, "static")
}
