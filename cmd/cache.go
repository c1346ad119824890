package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/resale-cli/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the valuation cache",
}

var cachePurgeOlderThan time.Duration

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("purge"); err != nil {
			return err
		}

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close() //nolint:errcheck

		age := cachePurgeOlderThan
		if age <= 0 {
			age = time.Duration(cfg.Cache.TTLHours) * time.Hour
		}
		n, err := st.PurgeExpired(ctx, time.Now().Add(-age))
		if err != nil {
			return err
		}

		zap.L().Info("cache purge complete", zap.Int("deleted", n), zap.Duration("older_than", age))
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d entries older than %s\n", n, age)
		return nil
	},
}

func init() {
	cachePurgeCmd.Flags().DurationVar(&cachePurgeOlderThan, "older-than", 0, "age cutoff (default: cache.ttl_hours)")
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
