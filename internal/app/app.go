package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"farmstand/internal/config"
	"farmstand/internal/draft"
	"farmstand/internal/match"
	"farmstand/internal/store"
	"farmstand/internal/store/primary"
	"farmstand/internal/vision"
)

// App wires the stores, the vision client, and the matching pipeline.
type App struct {
	Config *config.Config

	TaxonomyStore store.TaxonomyStore
	DraftStore    store.DraftStore
	ImageStore    store.ImageStore

	VisionClient  vision.Client
	TaxonomyCache *match.TaxonomyCache
	Matcher       *match.Matcher
	Synthesizer   *draft.Synthesizer

	primaryStore *primary.StoreImpl
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()
	app := &App{Config: cfg}

	if err := app.initPrimaryStore(ctx); err != nil {
		return nil, err
	}
	if err := app.initVisionClient(ctx); err != nil {
		app.Close()
		return nil, err
	}
	app.initMatching()

	log.Println("Application initialization complete.")
	return app, nil
}

func (a *App) initPrimaryStore(ctx context.Context) error {
	ps, err := primary.NewPrimaryStore(ctx, a.Config.Database.DSN)
	if err != nil {
		return fmt.Errorf("init primary store: %w", err)
	}
	a.primaryStore = ps
	a.TaxonomyStore = ps
	a.DraftStore = ps
	a.ImageStore = ps
	return nil
}

func (a *App) initVisionClient(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Vision.Provider {
	case "azure", "":
		a.VisionClient = vision.NewAzureClient(
			cfg.Vision.Azure.Endpoint,
			cfg.Vision.Azure.Key,
			cfg.Vision.Azure.Features,
			nil,
		)
	case "openai":
		a.VisionClient = vision.NewOpenAIClient(cfg.Vision.OpenAI.APIKey, cfg.Vision.OpenAI.Model)
	case "gemini":
		client, err := vision.NewGeminiClient(ctx, cfg.Vision.Gemini.APIKey, cfg.Vision.Gemini.Model)
		if err != nil {
			return fmt.Errorf("init gemini vision client: %w", err)
		}
		a.VisionClient = client
	default:
		return fmt.Errorf("unknown vision provider configured: %s", cfg.Vision.Provider)
	}
	log.Infof("Vision provider: %s", a.VisionClient.Name())
	return nil
}

func (a *App) initMatching() {
	a.TaxonomyCache = match.NewTaxonomyCache(a.TaxonomyStore, a.Config.Match.CacheTTL, nil)
	a.Matcher = match.NewMatcher(a.TaxonomyCache)
	a.Synthesizer = draft.NewSynthesizer(a.DraftStore)
}

// EnsureSchema creates missing database tables.
func (a *App) EnsureSchema(ctx context.Context) error {
	return a.primaryStore.EnsureSchema(ctx)
}

// Ping checks database connectivity.
func (a *App) Ping(ctx context.Context) error {
	return a.primaryStore.Ping(ctx)
}

// Close releases held resources.
func (a *App) Close() {
	if c, ok := a.VisionClient.(interface{ Close() error }); ok && c != nil {
		if err := c.Close(); err != nil {
			log.Errorf("Error closing vision client: %v", err)
		}
	}
	if a.primaryStore != nil {
		a.primaryStore.Close()
	}
}
