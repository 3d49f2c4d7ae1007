// Package migrate implements the `migrate` CLI command.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"stridesync/internal/infrastructure/config"
	"stridesync/internal/infrastructure/database"
	"stridesync/internal/infrastructure/migration"
	"stridesync/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Bring the database schema up to date with the current models.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if err := migration.Run(database.Get(), log); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("migrations applied")
	return nil
}
