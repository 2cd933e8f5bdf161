package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fieldtrack.com/fieldtrack/attendance/app"
	"fieldtrack.com/fieldtrack/attendance/web"
	"fieldtrack.com/fieldtrack/security"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return opts.withApp(ctx, func(a *app.App) error {
				secret, err := security.DecodeSecret(a.Config.Auth.SigningSecret)
				if err != nil {
					return err
				}

				gin.SetMode(gin.ReleaseMode)
				router := web.NewRouter(web.Services{
					Aggregator: a.Aggregator,
					Distances:  a.Distances,
					Roster:     a.Roster,
				}, secret)

				srv := &http.Server{
					Addr:              a.Config.Server.Address,
					Handler:           router,
					ReadHeaderTimeout: 10 * time.Second,
				}

				errc := make(chan error, 1)
				go func() {
					log.Info().Str("address", srv.Addr).Msg("listening")
					errc <- srv.ListenAndServe()
				}()

				select {
				case err := <-errc:
					if errors.Is(err, http.ErrServerClosed) {
						return nil
					}
					return err
				case <-ctx.Done():
				}

				log.Info().Msg("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
		},
	}
	return cmd
}
