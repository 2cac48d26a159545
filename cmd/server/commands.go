package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront/backend/internal/database"
	"storefront/backend/internal/handler"
	"storefront/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the orphan sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			sweeper := a.sweeper()
			if err := sweeper.Start(cfg.MediaSweepSchedule); err != nil {
				return fmt.Errorf("schedule orphan sweep: %w", err)
			}
			defer sweeper.Stop()

			housekeeping := cron.New()
			if _, err := housekeeping.AddFunc(cfg.MediaSweepSchedule, func() {
				if n := a.carts.Prune(); n > 0 {
					logrus.WithField("removed", n).Info("idle carts pruned")
				}
			}); err != nil {
				return fmt.Errorf("schedule cart pruning: %w", err)
			}
			housekeeping.Start()
			defer housekeeping.Stop()

			if logrus.IsLevelEnabled(logrus.DebugLevel) {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           handler.NewRouter(a.newHandler(), a.routerOptions()),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logrus.WithField("addr", cfg.HTTPAddr).Info("Server is running")
				logrus.Infof("Swagger UI is available at http://localhost%s/swagger/index.html", cfg.HTTPAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logrus.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func newMigrateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			return database.Migrate(db)
		},
	}
}

func newSweepCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete uploads no listing references once MEDIA_ORPHAN_TTL has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.sweeper().Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d orphaned objects\n", n)
			return nil
		},
	}
}

func newTokenCmd(load loader) *cobra.Command {
	var (
		creator string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a creator token for the Authorization header",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			token, err := jwt.GenerateToken(cfg.JWTSecret, creator, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&creator, "creator", "", "creator id stored as developer_id")
	cmd.Flags().DurationVar(&ttl, "ttl", jwt.DefaultTTL, "token lifetime")
	_ = cmd.MarkFlagRequired("creator")
	return cmd
}
