package commands

import (
	"fmt"

	"github.com/SscSPs/bookkeeping_engine/internal/platform/config"
	"github.com/SscSPs/bookkeeping_engine/pkg/database"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}
	cmd.AddCommand(
		newMigrateDirectionCommand(database.Up, "Apply all pending migrations"),
		newMigrateDirectionCommand(database.Down, "Roll back the most recent migration"),
	)
	return cmd
}

func newMigrateDirectionCommand(direction database.Direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(direction),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.DBDriver == config.DriverMemory {
				return fmt.Errorf("the %s driver has no schema to migrate", config.DriverMemory)
			}
			return database.Migrate(cfg.DBDriver, cfg.StoreDSN(), direction, logger)
		},
	}
}
