package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/pylearn-backend/internal/app"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			log, err := app.NewLogger()
			if err != nil {
				return err
			}
			a, err := app.New(ctx, log)
			if err != nil {
				log.Error("Failed to initialize app", "error", err)
				log.Sync()
				return err
			}
			defer a.Close()

			a.Start(ctx)
			return a.Run(ctx)
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := app.NewLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			svc, err := app.OpenDatabase(log, true)
			if err != nil {
				return err
			}
			defer svc.Close()
			log.Info("Migrations applied")
			return nil
		},
	}
}
