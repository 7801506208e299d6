package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/skela-dev/skela/src/approval"
	"github.com/skela-dev/skela/src/config"
	"github.com/skela-dev/skela/src/gateway"
	"github.com/skela-dev/skela/src/modelclient"
	"github.com/skela-dev/skela/src/orchestrator"
	"github.com/skela-dev/skela/src/router"
	"github.com/skela-dev/skela/src/skelagent"
	"github.com/skela-dev/skela/src/storage"
	"github.com/skela-dev/skela/src/templates"
	"github.com/skela-dev/skela/src/toolcall"
)

// App holds every long-lived service of the skela server.
type App struct {
	Config       *config.Config
	Store        *storage.DB
	ModelClient  *modelclient.Client
	Registry     *toolcall.Registry
	Orchestrator *orchestrator.Service
	Sessions     *gateway.SessionManager
	Logger       *slog.Logger
}

// New wires the application from its configuration.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	store, err := storage.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	client := modelclient.NewClient(modelclient.Config{
		APIKey:     cfg.Model.APIKey,
		BaseURL:    cfg.Model.BaseURL,
		RetryCount: cfg.Model.RetryCount,
		RetryDelay: cfg.Model.RetryDelay,
		Logger:     logger,
	})

	registry := toolcall.NewRegistry(skelagent.DefaultTools())

	var catalog orchestrator.Catalog = templates.NewStaticCatalog(templates.BuiltinTemplates())
	if cfg.Templates.Dir != "" {
		catalog = templates.NewDirCatalog(afero.NewOsFs(), cfg.Templates.Dir, logger)
	}

	models := skelagent.DefaultModels()
	for tier, model := range cfg.Tiers {
		models[router.Tier(tier)] = model
	}

	svc := orchestrator.NewService(orchestrator.Config{
		AgentID:  skelagent.AgentID,
		Store:    store,
		Gate:     approval.NewGate(registry, store, logger),
		Provider: client,
		Registry: registry,
		Parser:   toolcall.NewParser(registry, logger),
		Catalog:  catalog,
		Models:   models,
		Logger:   logger,
	})

	sessions := gateway.NewSessionManager(gateway.SessionManagerConfig{
		Runner:      svc,
		Logger:      logger,
		MailboxSize: cfg.Session.MailboxSize,
		TurnTimeout: cfg.Session.TurnTimeout,
	})

	return &App{
		Config:       cfg,
		Store:        store,
		ModelClient:  client,
		Registry:     registry,
		Orchestrator: svc,
		Sessions:     sessions,
		Logger:       logger,
	}, nil
}

// Close releases all resources held by the app.
func (a *App) Close() error {
	a.Sessions.Close()
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
