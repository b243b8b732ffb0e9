package main

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/docspec/internal/mcp"
	"github.com/Sumatoshi-tech/docspec/pkg/observability"
)

func mcpCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

Tools:
  - docspec_reconstruct: typed trees for sentence documents
  - docspec_classify: classify grammar labels against the catalog

Logs are written to stderr as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			startErr := state.start(observability.ModeMCP, cmd.ErrOrStderr())
			if startErr != nil {
				return startErr
			}

			defer state.stop()

			srv := mcp.NewServer(mcp.ServerDeps{
				Reconstructor: state.reconstructor(),
				Logger:        state.logger(),
				Metrics:       state.metrics,
				Tracer:        state.providers.Tracer,
			})

			return srv.Run(cmd.Context())
		},
	}
}
