package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jakechorley/ward-rota/internal/config"
	"github.com/jakechorley/ward-rota/pkg/api"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulation over HTTP (SERVER_HOST, SERVER_PORT, ...)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			serverCfg, err := config.LoadServerConfig()
			if err != nil {
				return err
			}

			sim, err := app.Simulation()
			if err != nil {
				return err
			}

			handler := api.NewHandler(app.Cfg, sim, app.Database, app.Logger)
			handler.RegisterRoutes()

			ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return api.Serve(ctx, handler.Mux, serverCfg, app.Logger)
		},
	}
}
