package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikhil/teamtasks/internal/config"
	"github.com/nikhil/teamtasks/internal/database"
	"github.com/nikhil/teamtasks/internal/logger"
	"github.com/nikhil/teamtasks/internal/repository"
	authService "github.com/nikhil/teamtasks/internal/service/auth"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "teamtasks",
		Short:         "Team task management API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(promoteCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads config, builds the logger and opens a migrated database.
func bootstrap(ctx context.Context) (*config.Config, *logger.Logger, *sql.DB, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, nil, err
	}
	log := logger.NewLogger("teamtasks", logger.Options{
		Env:   cfg.Env,
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})

	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, db, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			defer log.Sync()

			log.Info("Schema applied")
			return nil
		},
	}
}

func promoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote [email]",
		Short: "Grant the admin role to an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			defer log.Sync()

			svc := authService.NewAuthService(repository.NewStore(db), nil, log, cfg.BcryptCost, cfg.AdminEmails)
			if err := svc.Promote(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("promote %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", args[0])
			return nil
		},
	}
}
