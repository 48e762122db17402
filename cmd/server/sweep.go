package main

import (
	"fmt"
	"time"

	"github.com/Karansehgal0611/meditation-app/internal/config"
	"github.com/Karansehgal0611/meditation-app/internal/jobs"
	"github.com/Karansehgal0611/meditation-app/internal/repository"
	"github.com/spf13/cobra"
)

func sweepCmd() *cobra.Command {
	var staleAfter time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Abandon stale open sessions once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDatabase(cmd.Context(), (*config.Config).RequireDatabase)
			if err != nil {
				return err
			}
			defer db.Close()

			if staleAfter <= 0 {
				staleAfter = cfg.StaleSessionAfter
			}

			n, err := jobs.NewSweeper(repository.NewMeditationRepository(db.Pool), staleAfter).Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Abandoned %d stale session(s)\n", n)
			return nil
		},
	}

	cmd.Flags().DurationVar(&staleAfter, "stale-after", 0, "override STALE_SESSION_AFTER")

	return cmd
}
