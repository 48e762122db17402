package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Karansehgal0611/meditation-app/internal/auth"
	"github.com/Karansehgal0611/meditation-app/internal/config"
	"github.com/Karansehgal0611/meditation-app/internal/jobs"
	"github.com/Karansehgal0611/meditation-app/internal/repository"
	"github.com/Karansehgal0611/meditation-app/internal/server"
	"github.com/Karansehgal0611/meditation-app/internal/service"
	"github.com/Karansehgal0611/meditation-app/internal/streak"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var (
		migrate bool
		noSweep bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the stale session sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), migrate, !noSweep)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	cmd.Flags().BoolVar(&noSweep, "no-sweep", false, "do not run the stale session sweeper")

	return cmd
}

func runServe(ctx context.Context, migrate, sweep bool) error {
	cfg, db, err := openDatabase(ctx, (*config.Config).RequireServer)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Println("✅ Database connected")

	if migrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		log.Println("✅ Schema applied")
	}

	tracker := streak.NewTracker(cfg.StreakLocation, cfg.StreakContinuity)
	users := repository.NewUserRepository(db.Pool)
	groups := repository.NewGroupRepository(db.Pool)
	meditations := repository.NewMeditationRepository(db.Pool)

	if sweep {
		sched, err := jobs.NewSweeper(meditations, cfg.StaleSessionAfter).Start(cfg.SweepInterval)
		if err != nil {
			return err
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				log.Printf("⚠️  Sweeper shutdown: %v", err)
			}
		}()
	}

	r := server.New(server.Deps{
		Version:        Version,
		AllowedOrigins: cfg.AllowedOrigins,
		Tokens:         auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTLifetime),
		Users:          users,
		Groups:         groups,
		Meditations:    meditations,
		Sessions:       service.NewSessionService(db.Pool, tracker),
		Clock:          tracker,
		Health:         db.Health,
		PoolStats:      db.PoolStats,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Server starting on port %s (streaks in %s, continuity %s)", cfg.Port, cfg.StreakLocation, cfg.StreakContinuity)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	log.Println("🛑 Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("✅ Server exited")
	return nil
}
