package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/cache"
	"github.com/jonathan/resume-matcher/internal/config"
	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/maintenance"
	"github.com/jonathan/resume-matcher/internal/matching"
	"github.com/jonathan/resume-matcher/internal/ratelimit"
	"github.com/jonathan/resume-matcher/internal/server"
	"github.com/jonathan/resume-matcher/internal/store"
	"github.com/jonathan/resume-matcher/internal/suggest"
)

var (
	servePort       int
	serveConfigPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for resume analysis, AI suggestions, and resume tailoring.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to JSON config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cacheStore, usageStore, closeStores, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	responseCache := cache.New(cacheStore)
	limiter := ratelimit.NewLimiter(usageStore, ratelimit.Config{
		Quotas: map[ratelimit.Operation]int{
			ratelimit.OpAnalyze:     cfg.AnalyzeLimit,
			ratelimit.OpTailor:      cfg.TailorLimit,
			ratelimit.OpSuggestions: cfg.SuggestionsLimit,
		},
		Window:    cfg.UsageWindow,
		Retention: cfg.UsageRetention,
	})

	client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	scorer := matching.NewScorer()
	scorer.TitleSimilarityThreshold = cfg.TitleSimilarity

	runner := &maintenance.Runner{
		Cache:          responseCache,
		Limiter:        limiter,
		UploadDir:      cfg.UploadDir,
		UploadMaxAge:   cfg.UploadMaxAge,
		CacheInterval:  cfg.CacheSweepInterval,
		PruneInterval:  cfg.UsagePruneInterval,
		UploadInterval: cfg.UploadSweepInterval,
	}
	runner.Start(ctx)

	srv := server.New(server.Config{
		Port:      cfg.Port,
		UploadDir: cfg.UploadDir,
		Scorer:    scorer,
		Suggest:   suggest.NewService(client, responseCache, limiter, cfg.CacheTTL),
		Limiter:   limiter,
	})
	return srv.Start()
}

// buildStores constructs the cache and usage stores for the configured
// backend. The returned closer releases backend resources.
func buildStores(ctx context.Context, cfg *config.Config) (cache.Store, ratelimit.Store, func(), error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return store.NewPostgresCacheStore(db), store.NewPostgresRateLimitStore(db), db.Close, nil

	case config.BackendFile:
		cacheStore, err := store.NewFileCacheStore(filepath.Join(cfg.DataDir, "cache"))
		if err != nil {
			return nil, nil, nil, err
		}
		usageStore, err := store.NewFileRateLimitStore(filepath.Join(cfg.DataDir, "rate_limits.json"))
		if err != nil {
			return nil, nil, nil, err
		}
		return cacheStore, usageStore, func() {}, nil

	case config.BackendMemory:
		return store.NewMemoryCacheStore(), store.NewMemoryRateLimitStore(), func() {}, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
