package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rodrinoblega/hr-climate-insight/internal/cache"
	"github.com/rodrinoblega/hr-climate-insight/internal/llm"
	"github.com/rodrinoblega/hr-climate-insight/internal/model"
	"github.com/rodrinoblega/hr-climate-insight/internal/pipeline"
	"github.com/rodrinoblega/hr-climate-insight/internal/worker"
)

// addRunFlags registers the flags generate and batch share
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&country, "country", "", "client country")
	cmd.Flags().StringVar(&city, "city", "", "client city")
	cmd.Flags().StringVar(&outputDir, "output-dir", "output", "directory for reports, manifests and charts")
	cmd.Flags().BoolVar(&noCharts, "no-charts", false, "skip chart generation")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

// resolvedConfig merges the config file and CLIMATE_* environment over the
// built-in defaults
func resolvedConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	}); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	return cfg, nil
}

// loadConfig resolves the effective configuration: defaults, then the config
// file and CLIMATE_* environment via viper, then explicit flags on top
func loadConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := resolvedConfig()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("llm-provider") {
		cfg.LLM.Provider = llmProvider
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir = outputDir
	}
	if flags.Changed("no-charts") {
		cfg.Output.IncludeCharts = !noCharts
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}

	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = defaultCacheDir()
	}
	cfg.Output.Verbose = verbose
	return cfg, nil
}

// applyLLMEnv resolves provider credentials from the environment. Keys are
// never read from flags or config files.
func applyLLMEnv(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}

// newProvider builds the generation backend, wrapped with the response cache
// when enabled
func newProvider(cfg *model.Config) (llm.Provider, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, err
	}

	if !cfg.Cache.Enabled {
		return provider, nil
	}

	var store cache.Cache
	if cfg.Cache.Dir != "" {
		store = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
	} else {
		store = cache.NewMemoryCache(cfg.Cache.TTL)
	}
	return llm.NewCachedProvider(provider, store, cfg.Cache.TTL), nil
}

// defaultCacheDir is where the disk cache layer lives unless configured
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".climate-insight", "cache")
}

// newPipeline wires the pipeline with rate limiting and progress output
func newPipeline(cfg *model.Config, provider llm.Provider) *pipeline.Pipeline {
	p := pipeline.NewPipeline(cfg, provider)

	limiter := worker.NewLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	p.OnBeforeCall(func(ctx context.Context) error {
		return limiter.Wait(ctx, cfg.LLM.Provider)
	})

	p.OnProgress(func(ev model.ProgressEvent) {
		status := "✓"
		switch {
		case ev.Failed:
			status = "✗"
		case ev.Degraded:
			status = "⚠"
		}
		fmt.Fprintf(os.Stderr, "%s [%d] %s: %d words, %d attempt(s), %v\n",
			status, ev.Position, ev.Name, ev.WordCount, ev.Attempts, ev.Elapsed.Round(100*time.Millisecond))
	})

	return p
}
