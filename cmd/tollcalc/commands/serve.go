package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"tollcalc/internal/mcp"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve every analysis as an MCP tool over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv, err := mcp.NewServer(cfg, schedule, Version)
		if err != nil {
			return err
		}

		log.Info().Str("version", Version).Msg("MCP server listening on stdio")
		if err := srv.Start(ctx); err != nil && !errors.Is(ctx.Err(), context.Canceled) {
			return err
		}
		log.Info().Msg("MCP server stopped")
		return nil
	},
}
