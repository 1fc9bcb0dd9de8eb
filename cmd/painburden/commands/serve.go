package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"painburden/internal/api"
	"painburden/internal/mcp"
)

var httpAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the model as an MCP server over stdio, or over HTTP with --http",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := httpAddr
		if addr == "" {
			addr = cfg.HTTPAddr
		}
		if addr == "" {
			return mcp.NewServer(cfg, engine, Version).Run(cmd.Context())
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return api.New(engine, cfg.Seed).ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&httpAddr, "http", "", "listen address for the HTTP API, e.g. :8080 (default: HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
