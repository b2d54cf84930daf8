package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"invoice-service/internal/handler"
	"invoice-service/internal/middleware"
	"invoice-service/internal/oauth"
	"invoice-service/pkg/config"
	"invoice-service/pkg/database"
	"invoice-service/pkg/jwtutil"
	"invoice-service/pkg/logger"
	"invoice-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Connect to the database, apply pending migrations and serve the HTTP API until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logger.GetLogger()
			log.Info("Starting invoice service...", cfg.LogConfig()...)

			db, closeDB, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDB()
			log.Info("Database connection established")

			if !skipMigrate {
				if err := database.Migrate(db); err != nil {
					return fmt.Errorf("failed to migrate: %w", err)
				}
				log.Info("Database migrations applied")
			}

			jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
				SigningKey:      cfg.JWT.SigningKey,
				ExpirationHours: cfg.JWT.ExpirationHours,
			})

			// a nil Provider keeps the Google routes answering 404
			var google oauth.Provider
			if cfg.Google.Enabled() {
				google = oauth.NewGoogle(cfg.Google)
				log.Info("Google sign-in enabled")
			}

			e := echo.New()
			e.HideBanner = true

			// Apply global middleware - order matters
			e.Use(echomiddleware.Recover())
			e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{AllowOrigins: cfg.Server.AllowOrigins}))
			e.Use(echomiddleware.ContextTimeout(cfg.Server.RequestTimeout))
			e.Use(middleware.RequestIDMiddleware())
			e.Use(logger.Middleware())
			if cfg.Metrics.Enabled {
				e.Use(prometheus.MetricsMiddleware())
			}

			metricsPath := ""
			if cfg.Metrics.Enabled {
				metricsPath = cfg.Metrics.Path
			}
			handler.RegisterRoutes(e, handler.Dependencies{
				ServiceName:   cfg.ServiceName,
				DB:            db,
				JWT:           jwtUtil,
				Google:        google,
				FrontendURL:   cfg.Server.FrontendURL,
				SecureCookies: cfg.Server.Env == "production",
				MetricsPath:   metricsPath,
			})

			errCh := make(chan error, 1)
			go func() {
				log.Info("Starting server", zap.String("port", cfg.Server.Port))
				if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("Shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply migrations on start")
	return cmd
}
