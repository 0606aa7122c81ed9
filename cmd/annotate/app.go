package main

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/taigrr/annotate/internal/config"
	"github.com/taigrr/annotate/internal/logging"
	"github.com/taigrr/annotate/internal/pathfilter"
	"github.com/taigrr/annotate/internal/scanner"
	"github.com/taigrr/annotate/internal/search"
	"github.com/taigrr/annotate/internal/snapshot"
	"github.com/taigrr/annotate/internal/store"
	"github.com/taigrr/annotate/internal/types"
)

// app holds the services shared by every command.
type app struct {
	cfg     types.ScanConfig
	logger  *log.Logger
	builder *snapshot.Builder
	store   *store.Store
	search  *search.Service
}

func loadApp(cmd *cobra.Command, args []string) (*app, error) {
	var root string
	if len(args) > 0 {
		root = args[0]
	}

	cfg, err := config.Load(cmd.Flags(), root)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	return newApp(cfg, logger), nil
}

func newApp(cfg types.ScanConfig, logger *log.Logger) *app {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	pf := pathfilter.New(cfg.FilterConfig())

	return &app{
		cfg:     cfg,
		logger:  logger,
		builder: snapshot.New(scanner.New(pf), cfg.Workers, logger),
		store:   store.New(cfg.Root, cfg.NotesFile, cfg.CacheFile),
		search:  search.New(),
	}
}
