package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/budregistry/internal/assistant"
	"github.com/jask/budregistry/internal/catalog"
	"github.com/jask/budregistry/internal/config"
	"github.com/jask/budregistry/internal/llm"
	"github.com/jask/budregistry/internal/prefs"
	"github.com/jask/budregistry/internal/product"
	"github.com/jask/budregistry/internal/search"
	"github.com/jask/budregistry/internal/secrets"
	"github.com/jask/budregistry/internal/service"
	"github.com/jask/budregistry/internal/tui"
	"github.com/jask/budregistry/internal/wizard"
)

func runTUI(ctx context.Context, importPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	uc, err := wizard.ParseUseCase(cfg.Wizard.UseCase)
	if err != nil {
		return err
	}

	store, err := prefs.DefaultStore()
	if err != nil {
		return err
	}
	p, err := store.Load(prefs.Prefs{DarkMode: cfg.UI.Theme != config.ThemeLight, Layout: cfg.Catalog.Layout})
	if err != nil {
		logger.Warn("load prefs", zap.Error(err))
	}

	engine, err := buildCatalog(ctx, catalog.ParseLayout(p.Layout), importPath)
	if err != nil {
		return err
	}
	provider := buildProvider()
	conv, err := buildConversation(provider)
	if err != nil {
		return err
	}
	searcher, err := buildSearcher(uc)
	if err != nil {
		return err
	}

	app := tui.New(ctx, tui.Deps{
		Catalog:   engine,
		Searcher:  searcher,
		Generator: &service.GeneratorService{Provider: provider, Log: logger.Named("generator")},
		Chat:      conv,
		Prefs:     &store,
		UseCase:   uc,
		DarkMode:  p.DarkMode,
		Log:       logger.Named("tui"),
	})
	_, err = tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// buildCatalog seeds the in-memory catalog and optionally imports a CSV.
func buildCatalog(ctx context.Context, layout catalog.Layout, importPath string) (*catalog.Engine, error) {
	var (
		seed []product.DashboardProduct
		err  error
	)
	if cfg.Catalog.SeedFile != "" {
		seed, err = catalog.LoadSeedFile(cfg.Catalog.SeedFile)
	} else {
		seed, err = catalog.DefaultSeed()
	}
	if err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	store, err := catalog.NewMemoryStore(seed)
	if err != nil {
		return nil, err
	}
	engine, err := catalog.NewEngine(catalog.EngineDeps{
		Store:    store,
		Logger:   logger.Named("catalog"),
		PageSize: cfg.Catalog.PageSize,
		Layout:   layout,
	})
	if err != nil {
		return nil, err
	}
	if importPath == "" {
		return engine, nil
	}
	f, err := os.Open(importPath)
	if err != nil {
		return nil, fmt.Errorf("open import: %w", err)
	}
	defer f.Close()
	ingest := &service.IngestService{Catalog: engine, Log: logger.Named("ingest")}
	res, err := ingest.ImportCSV(ctx, f)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "imported %d, skipped %d, errors %d\n", res.Imported, res.Skipped, len(res.Errors))
	return engine, nil
}

// buildProvider never fails: a missing key surfaces as llm.ErrNoAPIKey on
// first use and the callers degrade.
func buildProvider() llm.Provider {
	p, err := llm.New(cfg.LLM.Provider, resolveAPIKey(cfg, secretStore()), cfg.LLM.Model)
	if err != nil {
		logger.Warn("llm provider", zap.Error(err))
		return nil
	}
	return p
}

func buildConversation(provider llm.Provider) (*assistant.Conversation, error) {
	var (
		replies assistant.Replies
		err     error
	)
	if cfg.Assistant.TableFile != "" {
		replies, err = assistant.LoadRepliesFile(cfg.Assistant.TableFile)
	} else {
		replies, err = assistant.DefaultReplies()
	}
	if err != nil {
		return nil, fmt.Errorf("assistant replies: %w", err)
	}
	var r assistant.Responder = assistant.NewStaticResponder(replies)
	if cfg.Assistant.Mode == config.AssistantLLM && provider != nil {
		r = &assistant.ModelResponder{Provider: provider, Fallback: r, Log: logger.Named("assistant")}
	}
	return assistant.NewConversation(r, cfg.Assistant.ReplyDelay, logger.Named("assistant")), nil
}

func buildSearcher(uc wizard.UseCase) (search.Searcher, error) {
	if uc.ForcesEmptySearch() {
		return search.Delayed{Inner: search.Empty{}, Delay: cfg.Wizard.SearchDelay}, nil
	}
	index, err := search.DefaultIndex()
	if err != nil {
		return nil, fmt.Errorf("candidate registry: %w", err)
	}
	return search.Delayed{Inner: index, Delay: cfg.Wizard.SearchDelay}, nil
}

type keyGetter interface {
	Get(provider string) (string, error)
}

func secretStore() keyGetter {
	s, err := secrets.DefaultStore()
	if err != nil {
		logger.Warn("secret store", zap.Error(err))
		return nil
	}
	return s
}

// resolveAPIKey prefers the environment, then the key store, then the
// config file.
func resolveAPIKey(c config.Config, store keyGetter) string {
	provider := strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	env := strings.TrimSpace(c.LLM.APIKeyEnv)
	if env == "" {
		if provider == llm.ProviderOpenAI {
			env = "OPENAI_API_KEY"
		} else {
			env = "GEMINI_API_KEY"
		}
	}
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v
	}
	if store != nil {
		if k, err := store.Get(provider); err == nil && k != "" {
			return k
		}
	}
	return strings.TrimSpace(c.LLM.APIKey)
}
