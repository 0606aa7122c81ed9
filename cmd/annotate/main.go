// Package main runs annotate, a small server for reading the source files of
// a project in the browser and keeping notes on them.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/annotate/internal/config"
)

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate [project-root]",
		Short: "Browse and annotate source files",
		Long: `annotate serves a snapshot of the source files below a project root,
filtered by extension, together with a single notes document kept in
the project root. The browser UI reads the snapshot, and saves notes
back through the same server.`,
		Example: `annotate ~/src/project -e py,txt -p 8888`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runServe,
	}

	config.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve [project-root]",
			Short: "Serve the snapshot, notes and UI over HTTP",
			Args:  cobra.MaximumNArgs(1),
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "mcp [project-root]",
			Short: "Expose the snapshot and notes as MCP tools over stdio",
			Args:  cobra.MaximumNArgs(1),
			RunE:  runMCP,
		},
		&cobra.Command{
			Use:   "config [project-root]",
			Short: "Print the resolved configuration as YAML",
			Args:  cobra.MaximumNArgs(1),
			RunE:  runConfig,
		},
	)

	return cmd
}
