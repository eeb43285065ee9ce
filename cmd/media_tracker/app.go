package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonathan/media-workflow/internal/analysis"
	"github.com/jonathan/media-workflow/internal/config"
	"github.com/jonathan/media-workflow/internal/db"
	"github.com/jonathan/media-workflow/internal/llm"
	"github.com/jonathan/media-workflow/internal/logging"
	"github.com/jonathan/media-workflow/internal/persistence"
	"github.com/jonathan/media-workflow/internal/prompts"
	"github.com/jonathan/media-workflow/internal/schemas"
	"github.com/jonathan/media-workflow/internal/tracker"
)

// app holds everything a command needs, opened from the config
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	slot    persistence.Slot
	store   *persistence.Adapter
	tracker *tracker.Tracker
	gateway *analysis.Gateway
	closers []func()
}

// appOptions selects the parts a command opens
type appOptions struct {
	tracker bool
	gateway bool
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logging.New(cfg.LogLevel)}

	if opts.tracker {
		slot, closer, err := openSlot(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		if closer != nil {
			a.closers = append(a.closers, closer)
		}
		a.slot = slot
		a.store = persistence.NewAdapter(slot, persistence.Options{
			SkipEmptySave: cfg.Storage.SkipEmptySave,
			Logger:        a.logger,
		})
		a.tracker = tracker.New(ctx, a.store, tracker.Options{Logger: a.logger})
	}

	if opts.gateway {
		client, err := newLLMClient(ctx, cfg.Analysis)
		if err != nil {
			a.Close()
			return nil, err
		}
		if client == nil {
			a.logger.Warn("no API key configured, analysis will fall back to manual review", "provider", cfg.Analysis.Provider)
		} else {
			a.closers = append(a.closers, func() { _ = client.Close() })
		}
		a.gateway = analysis.NewGateway(client, analysis.Options{
			Timeout: cfg.Analysis.Timeout,
			Tier:    llm.ModelTier(cfg.Analysis.Tier),
			Logger:  a.logger,
		})
	}
	return a, nil
}

// Close releases storage and LLM resources in reverse order
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// openSlot opens the configured storage backend
func openSlot(ctx context.Context, cfg config.StorageConfig) (persistence.Slot, func(), error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		slot, err := persistence.OpenSQLiteSlot(cfg.Path, cfg.Slot)
		if err != nil {
			return nil, nil, err
		}
		return slot, func() { _ = slot.Close() }, nil
	case config.BackendPostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		return database.Slot(cfg.Slot), database.Close, nil
	default:
		slot, err := persistence.NewFileSlot(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return slot, nil, nil
	}
}

// newLLMClient returns nil without an API key; the gateway then always falls back
func newLLMClient(ctx context.Context, cfg config.AnalysisConfig) (llm.Client, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, nil
	}
	provider, err := llm.ParseProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}
	systemPrompt, err := prompts.Get(prompts.AnalysisFile, prompts.KeySystem)
	if err != nil {
		return nil, err
	}
	llmConfig := llm.ConfigFor(provider).
		WithResponseSchema(schemas.SuggestionSchema).
		WithSystemPrompt(systemPrompt)
	client, err := llm.NewClient(ctx, llmConfig, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}
