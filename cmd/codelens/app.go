package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/codelens-ai/codelens/cache"
	"github.com/codelens-ai/codelens/config"
	"github.com/codelens-ai/codelens/llm"
	"github.com/codelens-ai/codelens/llm/factory"
	"github.com/codelens-ai/codelens/logger"
	"github.com/codelens-ai/codelens/orchestrator"
	"github.com/codelens-ai/codelens/retry"
)

// timeRounding keeps durations in CLI output readable.
const timeRounding = 10 * time.Millisecond

// app bundles everything a command needs after setup.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	client llm.Client
	cache  *cache.Cache // nil when caching is disabled
	orc    *orchestrator.Orchestrator
}

func (a *app) close() {
	if a.cache != nil {
		a.cache.Close()
	}
}

// setup loads config and logging from the root flags.
func setup(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}

	logFile, _ := cmd.Flags().GetString("logfile")
	verbose, _ := cmd.Flags().GetBool("verbose")
	log, err := logger.Init(logFile, verbose)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	return cfg, log, nil
}

// newApp resolves the provider, opens the project-local cache, and builds the
// orchestrator for a run against dir.
func newApp(cmd *cobra.Command, dir, providerFlag, modelFlag string, noCache bool) (*app, error) {
	cfg, log, err := setup(cmd)
	if err != nil {
		return nil, err
	}

	registry := llm.NewRegistry(cfg.ProviderConfig(), cfg.Providers)

	provider := providerFlag
	if provider == "" {
		provider = cfg.Provider
	}
	model := modelFlag
	if model == "" {
		model = cfg.Model
	}

	var key *llm.ClientKey
	if provider != "" {
		key, err = registry.Resolve(provider, model)
	} else {
		key, err = registry.ResolveFirst()
		if err == nil && model != "" {
			key.Model = model
		}
	}
	if err != nil {
		return nil, err
	}

	client, err := factory.NewClient(key, log)
	if err != nil {
		return nil, err
	}

	var store *cache.Cache
	if !noCache && !cfg.Cache.Disabled {
		store, err = openCache(cfg, dir, log)
		if err != nil {
			// A broken cache degrades to uncached operation.
			log.Warn().Err(err).Msg("Cache unavailable, running uncached")
			store = nil
		}
	}

	orc := orchestrator.New(client, store, retry.New(log), log)
	return &app{cfg: cfg, log: log, client: client, cache: store, orc: orc}, nil
}

func openCache(cfg *config.Config, dir string, log zerolog.Logger) (*cache.Cache, error) {
	path := cfg.Cache.Path
	if path == "" {
		return nil, fmt.Errorf("cache path not configured")
	}
	return cache.Open(cachePath(dir, path), cfg.CacheTTL(), cache.GitRevision(dir), log)
}

// cachePath anchors a relative cache path at the analyzed project directory.
func cachePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
