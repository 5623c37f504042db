package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/breaker"
	"mercator-hq/saturn/pkg/cache"
	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/evaluator"
	"mercator-hq/saturn/pkg/inference"
	"mercator-hq/saturn/pkg/judge"
	"mercator-hq/saturn/pkg/ruleset"
	"mercator-hq/saturn/pkg/server"
	"mercator-hq/saturn/pkg/telemetry/logging"
	"mercator-hq/saturn/pkg/telemetry/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the judgment server",
	Long: `Start the Saturn judgment server.

The server loads its configuration file (--config), applies SATURN_*
environment overrides, and serves the judgment API until interrupted.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	logging.Setup(cfg.Logging)

	// Metrics.
	var (
		judgmentMetrics *metrics.JudgmentMetrics
		metricsHandler  http.Handler
		promRegistry    *prometheus.Registry
	)
	if cfg.Metrics.Enabled {
		promRegistry = prometheus.NewRegistry()
		judgmentMetrics = metrics.NewJudgmentMetrics(&cfg.Metrics, promRegistry)
		metricsHandler = metrics.Handler(promRegistry)
	}

	// Circuit breakers.
	breakers := breaker.NewRegistry()
	inferenceBreaker := breakers.GetOrCreate("inference", inferenceBreakerConfig(cfg.Breakers), nil)
	if promRegistry != nil {
		metrics.NewBreakerCollector(&cfg.Metrics, promRegistry, breakers)
	}

	// Inference client.
	client, err := inference.NewAnthropicClient(cfg.Inference)
	if err != nil {
		return err
	}

	// Rulesets.
	resolver, rulesetStore, watchSource, err := buildRulesets(cfg.Rulesets)
	if err != nil {
		return err
	}
	if rulesetStore != nil {
		defer rulesetStore.Close()
	}

	// Result cache.
	cacheStore, pruner, err := buildCache(cfg.Cache)
	if err != nil {
		return err
	}
	defer cacheStore.Close()
	if pruner != nil {
		if err := pruner.Start(); err != nil {
			return err
		}
		defer pruner.Stop()
	}

	// Engine.
	ruleAdapter := evaluator.NewRuleAdapter(evaluator.NewThresholdRunner(), resolver)
	llmAdapter := evaluator.NewLLMAdapter(client, inferenceBreaker)
	engine := judge.NewEngine(ruleAdapter, llmAdapter, cacheStore, judge.Options{
		RuleWeight: cfg.Engine.RuleWeight,
		LLMWeight:  cfg.Engine.LLMWeight,
		CacheTTL:   cfg.Cache.TTL,
		Metrics:    judgmentMetrics,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if watchSource != nil {
		go func() {
			if err := watchSource.Watch(ctx); err != nil && ctx.Err() == nil {
				slog.Error("ruleset watcher stopped", "error", err)
			}
		}()
	}

	srv := server.New(&cfg.Server, server.Options{
		Engine:   engine,
		Breakers: breakers,
		Rulesets: rulesetStore,
		Metrics:  metricsHandler,
	})
	return srv.Start(ctx)
}

// loadConfig reads the configured file, or runs on pure defaults plus
// environment overrides when the default file is absent.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		if cfgFile != "config.yaml" {
			return nil, fmt.Errorf("config file %q not found", cfgFile)
		}
		cfg := config.Default()
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.LoadWithEnv(cfgFile)
}

// inferenceBreakerConfig overlays configured fields on the inference
// service profile.
func inferenceBreakerConfig(cfg config.BreakerConfig) breaker.Config {
	bc := breaker.InferenceServiceConfig()
	if cfg.FailureThreshold > 0 {
		bc.FailureThreshold = cfg.FailureThreshold
	}
	if cfg.RecoveryTimeout > 0 {
		bc.RecoveryTimeout = cfg.RecoveryTimeout
	}
	if cfg.SuccessThreshold > 0 {
		bc.SuccessThreshold = cfg.SuccessThreshold
	}
	if cfg.SlidingWindow > 0 {
		bc.SlidingWindow = cfg.SlidingWindow
	}
	if cfg.CallTimeout > 0 {
		bc.CallTimeout = cfg.CallTimeout
	}
	return bc
}

func buildRulesets(cfg config.RulesetConfig) (ruleset.Resolver, ruleset.Store, *ruleset.FileSource, error) {
	switch cfg.Backend {
	case "file":
		source := ruleset.NewFileSource(cfg.Path, ruleset.NewMemoryStore())
		if err := source.Load(); err != nil {
			return nil, nil, nil, err
		}
		if cfg.Watch {
			return source.Store(), nil, source, nil
		}
		return source.Store(), nil, nil, nil
	default:
		store, err := ruleset.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, nil, nil
	}
}

func buildCache(cfg config.CacheConfig) (cache.Store, *cache.Pruner, error) {
	if cfg.Backend == "sqlite" {
		store, err := cache.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, cache.NewPruner(store, cfg.PruneSchedule), nil
	}
	return cache.NewMemoryStore(cfg.MaxEntries), nil, nil
}
