package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Karansehgal0611/meditation-app/internal/config"
	"github.com/Karansehgal0611/meditation-app/internal/database"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "meditation-server",
		Short:        "Group meditation tracker API",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(sweepCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDatabase loads config, validates it with require and connects
func openDatabase(ctx context.Context, require func(*config.Config) error) (*config.Config, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := require(cfg); err != nil {
		return nil, nil, err
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
