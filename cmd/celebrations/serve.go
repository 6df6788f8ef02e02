package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpapi "github.com/tbourn/go-celebrations-backend/internal/http"
	"github.com/tbourn/go-celebrations-backend/internal/observability"
)

const shutdownGrace = 20 * time.Second

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the daily dispatch scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load("api")
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
			if err != nil {
				return err
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownOTel(sctx); err != nil {
					log.Warn().Err(err).Msg("otel shutdown")
				}
			}()

			a, err := newApp(ctx, cfg)
			defer func() {
				if cerr := a.Close(); cerr != nil {
					log.Warn().Err(cerr).Msg("close resources")
				}
			}()
			if err != nil {
				return err
			}

			gin.SetMode(cfg.GinMode)
			r := gin.New()
			httpapi.RegisterRoutes(r, httpapi.Deps{Handlers: a.handlers(), Tokens: a.tokens}, cfg)

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           r,
				ReadTimeout:       cfg.ReadTimeout,
				ReadHeaderTimeout: cfg.ReadHeaderTimeout,
				WriteTimeout:      cfg.WriteTimeout,
				IdleTimeout:       cfg.IdleTimeout,
				MaxHeaderBytes:    cfg.MaxHeaderBytes,
			}

			schedDone := make(chan struct{})
			if cfg.Schedule.Enabled {
				go func() {
					defer close(schedDone)
					a.scheduler.Start(ctx)
				}()
			} else {
				close(schedDone)
				log.Info().Msg("scheduler disabled")
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
				log.Info().Msg("shutdown signal received")
			case err := <-errCh:
				if err != nil {
					stop()
					<-schedDone
					return err
				}
			}

			sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				log.Error().Err(err).Msg("graceful shutdown failed")
			}
			<-schedDone
			log.Info().Msg("server stopped")
			return nil
		},
	}
}
