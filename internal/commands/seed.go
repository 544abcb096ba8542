package commands

import (
	"fmt"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/services"
	"github.com/SscSPs/bookkeeping_engine/internal/middleware"
	"github.com/spf13/cobra"
)

func newSeedCommand() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Install the default fiscal year and chart of accounts into an empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := middleware.WithLogger(cmd.Context(), logger)

			store, closeStore, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			cache, err := services.NewBalanceCache(cfg.BalanceCacheSize, nil)
			if err != nil {
				return err
			}
			result, err := services.NewSeeder(services.NewServiceContainer(store, cache)).Seed(ctx, time.Now(), actor)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.FiscalYear != nil {
				fmt.Fprintf(out, "created fiscal year %s (%s)\n", result.FiscalYear.Name, result.FiscalYear.FiscalYearID)
			}
			fmt.Fprintf(out, "created %d accounts\n", result.AccountsCreated)
			return nil
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "system", "user recorded as creator of the seeded rows")
	return cmd
}
