package bootstrap

import (
	"context"
	"log/slog"
	"os"
	"strings"

	assistantservice "leadgate/contexts/lead-capture/assistant-service"
	"leadgate/contexts/lead-capture/assistant-service/adapters/gemini"
	"leadgate/contexts/lead-capture/assistant-service/adapters/knowledge"
	intakeservice "leadgate/contexts/lead-capture/intake-service"
	postgresadapter "leadgate/contexts/lead-capture/intake-service/adapters/postgres"
	"leadgate/contexts/lead-capture/intake-service/adapters/recaptcha"
	"leadgate/contexts/lead-capture/intake-service/adapters/sendgrid"
	"leadgate/contexts/lead-capture/intake-service/adapters/telegram"
	"leadgate/contexts/lead-capture/intake-service/application/commands"
	"leadgate/internal/platform/config"
	"leadgate/internal/platform/db"
	"leadgate/internal/platform/httpserver"

	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root. Construction and wiring stay
// here so module code remains framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	denyList, err := commands.NewDenyList(cfg.ExtraDenyDomains)
	if err != nil {
		return nil, err
	}

	deps := intakeservice.Dependencies{
		Captcha: recaptcha.NewVerifier(cfg.RecaptchaSecret, logger),
		Email: sendgrid.NewMailer(sendgrid.Config{
			APIKey:      cfg.SendGridAPIKey,
			FromEmail:   cfg.FromEmail,
			FromName:    cfg.FromName,
			ReplyTo:     cfg.ReplyToEmail,
			NotifyEmail: cfg.NotifyEmail,
			Brand:       cfg.BrandName,
		}, logger),
		Chat:     telegram.NewAlerter(cfg.TelegramBotToken, cfg.TelegramChatID, logger),
		DenyList: denyList,
		Logger:   logger,
	}

	var pg *db.Postgres
	var module intakeservice.Module
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		logger.Warn("POSTGRES_DSN not set, running on the in-memory store",
			"event", "memory_store_fallback",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		module = intakeservice.NewInMemoryModule(nil, deps)
	} else {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		repo := postgresadapter.NewRepository(pg.DB, logger)
		if err := repo.Migrate(); err != nil {
			_ = pg.Close()
			return nil, err
		}
		deps.Repository = repo
		deps.Clock = postgresadapter.SystemClock{}
		deps.IDGen = postgresadapter.UUIDGenerator{}
		deps.Random = postgresadapter.SystemRandom{}
		module = intakeservice.NewModule(deps)
	}

	assistant := buildAssistant(cfg, logger)

	server := httpserver.New(module, assistant, cfg.AdminUsername, cfg.AdminPassword, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

// buildAssistant wires the chat assistant. A missing API key or an
// unreadable campaign page degrades the assistant rather than failing the
// process: greetings still work, turns answer with the apology body.
func buildAssistant(cfg config.Config, logger *slog.Logger) assistantservice.Module {
	deps := assistantservice.Dependencies{
		AssistantName: cfg.AssistantName,
		Brand:         cfg.BrandName,
		Logger:        logger,
	}

	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		logger.Warn("GEMINI_API_KEY not set, chat assistant runs without a model",
			"event", "assistant_model_missing",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		return assistantservice.NewInMemoryModule(deps)
	}

	client := gemini.NewClient(cfg.GeminiAPIKey, logger)
	deps.Model = client

	if strings.TrimSpace(cfg.CampaignPagePath) == "" {
		logger.Warn("CAMPAIGN_PAGE_PATH not set, assistant answers without page context",
			"event", "assistant_page_missing",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		return assistantservice.NewInMemoryModule(deps)
	}

	raw, err := os.ReadFile(cfg.CampaignPagePath)
	if err != nil {
		logger.Error("campaign page not readable, assistant answers without page context",
			"event", "assistant_page_unreadable",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"path", cfg.CampaignPagePath,
			"error", err,
		)
		return assistantservice.NewInMemoryModule(deps)
	}

	index, err := knowledge.BuildIndex(context.Background(), string(raw), client, logger)
	if err != nil {
		logger.Error("page indexing failed, assistant answers without page context",
			"event", "assistant_index_failed",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"error", err,
		)
		return assistantservice.NewInMemoryModule(deps)
	}
	deps.Retriever = index

	return assistantservice.NewInMemoryModule(deps)
}

func (a *APIApp) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.server.Run(ctx)
	})
	return g.Wait()
}

func (a *APIApp) Close() error {
	return a.postgres.Close()
}

func normalizeAddr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ":8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
