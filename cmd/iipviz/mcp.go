package main

import (
	"os"

	"github.com/spf13/cobra"

	"iipviz/internal/app"
	"iipviz/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the visualization tools over MCP on stdio",
		Long: `Starts a Model Context Protocol server on stdin/stdout exposing the
visualize_industrial_query and list_provinces tools. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), "iipviz-mcp", os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			a.Logger.Info().Str("version", Version).Msg("Serving MCP on stdio")
			return mcp.ServeStdio(mcp.NewServer(a.Service, Version, a.Logger))
		},
	}
}
