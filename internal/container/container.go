// Package container wires configuration, logging, storage, and the
// report pipeline into ready-to-use application components.
package container

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"visioncheck/adapters/excel"
	"visioncheck/adapters/kv"
	"visioncheck/adapters/llm"
	"visioncheck/app"
	"visioncheck/domain/screening"
	"visioncheck/domain/vision"
	"visioncheck/internal/config"
	"visioncheck/internal/logging"
	"visioncheck/ports"
)

// Container holds all application dependencies and manages their
// lifecycle.
type Container struct {
	Config *config.Holder
	Log    *zap.Logger

	Store     ports.KVStore
	History   *app.HistoryStore
	Generator ports.ReportGenerator
	Exporter  *excel.HistoryExporter

	closers []func() error
}

// New builds the dependency graph from configuration found under
// projectRoot.
func New(ctx context.Context, projectRoot string) (*Container, error) {
	bootLog := zap.NewNop()
	holder, err := config.Load(projectRoot, bootLog)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := holder.Get()

	log, err := logging.Init(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	c := &Container{Config: holder, Log: log}

	if err := c.initStorage(cfg.Storage); err != nil {
		return nil, err
	}
	c.History = app.NewHistoryStore(c.Store, log.Named("history"))
	c.Exporter = excel.NewHistoryExporter(log.Named("export"))

	if err := c.initGenerator(ctx, cfg.Providers); err != nil {
		return nil, err
	}

	log.Info("container ready",
		zap.String("storage", cfg.Storage.Backend))
	return c, nil
}

// NewSession creates one screening run for a test type. Each call owns
// a fresh engine instance.
func (c *Container) NewSession(testType vision.TestType, opts ...app.SessionOption) (*app.Session, error) {
	var engine screening.Engine
	switch testType {
	case vision.TestSnellen:
		engine = screening.NewSnellenEngine()
	case vision.TestColorBlind:
		engine = screening.NewColorBlindEngine()
	case vision.TestAstigmatism:
		engine = screening.NewAstigmatismEngine()
	case vision.TestAmsler:
		engine = screening.NewAmslerGridEngine()
	case vision.TestDuochrome:
		engine = screening.NewDuochromeEngine()
	default:
		return nil, fmt.Errorf("unknown test type %q", testType)
	}

	cfg := c.Config.Get()
	base := []app.SessionOption{
		app.WithReportTimeout(cfg.Report.Timeout),
		app.WithLocale(cfg.Report.Locale),
		app.WithRecentForReport(cfg.History.RecentForReport),
		app.WithSessionLogger(c.Log.Named("session")),
	}
	return app.NewSession(engine, c.Generator, c.History, append(base, opts...)...), nil
}

// Close releases held resources, last-constructed first.
func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.Log.Sync()
	return firstErr
}

func (c *Container) initStorage(cfg config.StorageConfig) error {
	switch cfg.Backend {
	case "memory":
		c.Store = kv.NewMemoryStore()
	case "file":
		store, err := kv.NewFileStore(cfg.Path)
		if err != nil {
			return fmt.Errorf("init file storage: %w", err)
		}
		c.Store = store
	case "sqlite":
		store, err := kv.NewSQLiteStore(cfg.Path)
		if err != nil {
			return fmt.Errorf("init sqlite storage: %w", err)
		}
		c.Store = store
		c.closers = append(c.closers, store.Close)
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	return nil
}

// initGenerator assembles the provider ensemble. Providers without an
// API key are skipped; at least one must be configured.
func (c *Container) initGenerator(ctx context.Context, cfg config.ProvidersConfig) error {
	var providers []llm.Provider

	if cfg.Gemini.APIKey != "" {
		gemini, err := llm.NewGemini(ctx, llm.GeminiConfig{
			APIKey:      cfg.Gemini.APIKey,
			Model:       cfg.Gemini.Model,
			Temperature: float32(cfg.Gemini.Temperature),
			MaxTokens:   int32(cfg.Gemini.MaxTokens),
		}, c.Log.Named("gemini"))
		if err != nil {
			return fmt.Errorf("init gemini provider: %w", err)
		}
		providers = append(providers, llm.Provider{
			Name: "gemini", Weight: cfg.Gemini.Weight, Generator: gemini,
		})
	}

	for _, chat := range []struct {
		name string
		cfg  config.ProviderConfig
	}{
		{"minimax", cfg.Minimax},
		{"deepseek", cfg.Deepseek},
	} {
		if chat.cfg.APIKey == "" {
			continue
		}
		gen, err := llm.NewOpenAICompat(llm.OpenAICompatConfig{
			Name:        chat.name,
			APIKey:      chat.cfg.APIKey,
			BaseURL:     chat.cfg.BaseURL,
			Model:       chat.cfg.Model,
			Temperature: chat.cfg.Temperature,
			MaxTokens:   chat.cfg.MaxTokens,
		}, c.Log.Named(chat.name))
		if err != nil {
			return fmt.Errorf("init %s provider: %w", chat.name, err)
		}
		providers = append(providers, llm.Provider{
			Name: chat.name, Weight: chat.cfg.Weight, Generator: gen,
		})
	}

	ensemble, err := llm.NewEnsemble(providers, c.Log.Named("ensemble"))
	if err != nil {
		return fmt.Errorf("init report ensemble: %w", err)
	}
	c.Generator = ensemble
	return nil
}
