package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"oreoffice-backend/config"
	"oreoffice-backend/routes"
	"oreoffice-backend/services"
	"oreoffice-backend/utils"
)

var (
	overdueSchedule string
	billingSchedule string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		if cfg.JWTSecret == "" {
			return errors.New("JWT_SECRET is not set")
		}
		if err := config.Seed(db, cfg); err != nil {
			return err
		}
		if err := utils.RegisterValidators(); err != nil {
			return err
		}

		svcs := newServices(cfg, db)
		router := routes.SetupRouter(routes.NewControllers(svcs), svcs.Auth, cfg.CORSOrigins)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		scheduler := services.NewScheduler(svcs.Billings)
		if err := scheduler.ScheduleOverdueRefresh(overdueSchedule); err != nil {
			return err
		}
		if billingSchedule != "" {
			if err := scheduler.ScheduleBillingGeneration(billingSchedule); err != nil {
				return err
			}
		}
		schedulerDone := make(chan struct{})
		go func() {
			scheduler.Run(ctx)
			close(schedulerDone)
		}()

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadTimeout:       30 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("server starting", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			stop()
			<-schedulerDone
			return err
		case <-ctx.Done():
		}
		zap.L().Info("shutdown signal received, shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-schedulerDone
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
		zap.L().Info("server stopped gracefully")
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, _, err := bootstrap(); err != nil {
			return err
		}
		zap.L().Info("migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the first admin account and the default contract template",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		return config.Seed(db, cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&overdueSchedule, "overdue-schedule", "@hourly", "Cron spec for flipping due billings to overdue")
	serveCmd.Flags().StringVar(&billingSchedule, "billing-schedule", "", `Cron spec for generating the current month's billings, e.g. "0 1 1 * *" (empty disables)`)
}
