package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/choplin/medialedger/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long:  "Start the Model Context Protocol server for medialedger on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := mcp.NewServer(cfg)
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			return server.Run(context.Background())
		},
	}

	return cmd
}
