// Package cmd - serve command
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"synergism-calc/api"
	"synergism-calc/internal/config"
	"synergism-calc/internal/version"
)

var serveAddr string

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis HTTP API",
	Long: `Serve the analysis HTTP API.

Endpoints:
  POST   /analyze                        analyze a save (JSON object or base64 export)
  GET    /health                         liveness
  GET    /version                        version information
  GET    /reports                        recorded reports (?profile=&limit=&offset=)
  GET    /reports/{id}                   one recorded report
  GET    /reports/{id}/compare/{other}   what changed between two reports
  DELETE /reports/{id}                   delete a recorded report`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		addr := firstNonEmpty(serveAddr, cfg.Server.Address)

		store, err := openHistory(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return api.NewServer(version.String(), cfg.Server, api.WithStore(store)).ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
}
