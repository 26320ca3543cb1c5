package app

import (
	"context"
	"fmt"
	"log"

	"workbench/internal/gateway/config"
	"workbench/internal/gateway/handler"
	"workbench/internal/gateway/repository/style"
	"workbench/internal/gateway/repository/tenant"
	"workbench/internal/gateway/server"
	chatsvc "workbench/internal/gateway/service/chat"
	kbsvc "workbench/internal/gateway/service/kb"
	versionsvc "workbench/internal/gateway/service/version"
	llmclient "workbench/internal/llmClient"
	"workbench/internal/summarize"
)

type App struct {
	server *server.Server
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	stores, err := initStores(cfg)
	if err != nil {
		return nil, err
	}
	if err := seed(context.Background(), cfg, stores); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}

	router := llmclient.NewRouterClient(cfg.Router.APIKey, cfg.Router.BaseURL, cfg.Router.AppURL, cfg.Router.AppTitle)
	generator, err := chooseGenerator(cfg, router)
	if err != nil {
		return nil, err
	}

	versionSvc := versionsvc.New(stores.artifacts, stores.runs, stores.blobs, summarize.New(generator), router)
	chatSvc := chatsvc.New(stores.styles, stores.conversations, router, cfg.Router.DefaultModel)
	kbSvc := kbsvc.New(stores.kb)

	svc := handler.NewService(
		versionSvc,
		chatSvc,
		kbSvc,
		stores.kb,
		stores.styles,
		stores.conversations,
		stores.playbooks,
		handler.Defaults{OrgID: cfg.Defaults.OrgID, ProjectID: cfg.Defaults.ProjectID},
	)

	mux := server.NewMux(svc)
	srv := server.New(cfg.Port, mux)

	return &App{server: srv}, nil
}

// chooseGenerator picks the summarizer backend: the router by default, the
// direct Gemini client when only a Gemini key is configured.
func chooseGenerator(cfg *config.Config, router *llmclient.RouterClient) (summarize.Generator, error) {
	if cfg.Router.APIKey == "" && cfg.Router.GeminiKey != "" {
		gen, err := llmclient.NewGeminiGenerator(context.Background(), "")
		if err != nil {
			return nil, fmt.Errorf("init gemini generator: %w", err)
		}
		log.Printf("summarizer: gemini (no router key configured)")
		return gen, nil
	}
	return llmclient.NewRouterGenerator(router, cfg.Router.SummaryModel), nil
}

// seed upserts the default tenant and the stock style presets. Idempotent.
func seed(ctx context.Context, cfg *config.Config, stores *gatewayStores) error {
	if err := stores.tenants.EnsureOrg(ctx, &tenant.Org{ID: cfg.Defaults.OrgID, Name: "Demo Org"}); err != nil {
		return err
	}
	if err := stores.tenants.EnsureProject(ctx, &tenant.Project{ID: cfg.Defaults.ProjectID, OrgID: cfg.Defaults.OrgID, Name: "Demo Project"}); err != nil {
		return err
	}
	return style.Seed(ctx, stores.styles)
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
