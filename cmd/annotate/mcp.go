package main

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd, args)
	if err != nil {
		return err
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "annotate",
		Version: version,
	}, nil)

	a.registerTools(server)

	a.logger.Info("serving project over MCP stdio", "path", a.cfg.Root)
	if err := server.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("error running server: %w", err)
	}

	return nil
}
