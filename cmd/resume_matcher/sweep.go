package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/cache"
	"github.com/jonathan/resume-matcher/internal/config"
	"github.com/jonathan/resume-matcher/internal/maintenance"
	"github.com/jonathan/resume-matcher/internal/ratelimit"
)

var sweepConfigPath string

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the maintenance sweeps once and exit",
	Long:  `Delete expired cache entries, aged-out usage records, and orphaned uploads. Useful from cron when the server is not running continuously.`,
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().StringVar(&sweepConfigPath, "config", "", "Path to JSON config file")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(sweepConfigPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	cacheStore, usageStore, closeStores, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	cacheDeleted, err := cache.New(cacheStore).SweepExpired(ctx)
	if err != nil {
		return err
	}

	limiter := ratelimit.NewLimiter(usageStore, ratelimit.Config{
		Window:    cfg.UsageWindow,
		Retention: cfg.UsageRetention,
	})
	usageDeleted, err := limiter.PruneExpired(ctx)
	if err != nil {
		return err
	}

	uploadsDeleted, err := maintenance.SweepUploads(cfg.UploadDir, cfg.UploadMaxAge)
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d cache entries, %d usage records, %d uploads\n",
		cacheDeleted, usageDeleted, uploadsDeleted)
	return nil
}
