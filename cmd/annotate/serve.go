package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/taigrr/annotate/internal/config"
	"github.com/taigrr/annotate/internal/gateway"
)

func runServe(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd, args)
	if err != nil {
		return err
	}

	a.logger.Info("project folder", "path", a.cfg.Root)
	a.logger.Info("url", "address", fmt.Sprintf("http://localhost:%d/", a.cfg.Port))
	a.logger.Info("extensions", "include", strings.Join(a.cfg.Extensions, ", "))
	if a.cfg.ConfigFileUsed != "" {
		a.logger.Info("config file", "path", a.cfg.ConfigFileUsed)
	}
	a.logger.Info("notes file", "path", a.store.NotesPath())
	a.logger.Debug("snapshot cache", "path", a.store.CachePath())
	a.logger.Debug("ui directory", "path", a.cfg.UIDir)

	gw := gateway.New(a.cfg, a.builder, a.store, a.logger)
	srv := gateway.NewServer(config.Addr(a.cfg), gw.Handler(), a.logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("error running server: %w", err)
	}

	return nil
}
