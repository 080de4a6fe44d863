package config

import (
	"errors"
	"os"
	"strings"
)

// Config is centralized process configuration. Infra values live here and
// typed config is passed into the builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	RecaptchaSecret string

	SendGridAPIKey string
	FromEmail      string
	FromName       string
	ReplyToEmail   string
	NotifyEmail    string
	BrandName      string

	TelegramBotToken string
	TelegramChatID   string

	GeminiAPIKey     string
	AssistantName    string
	CampaignPagePath string

	AdminUsername string
	AdminPassword string

	ExtraDenyDomains []string
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "leadgate"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	brand := os.Getenv("BRAND_NAME")
	if brand == "" {
		brand = "LeadGate"
	}

	assistant := os.Getenv("ASSISTANT_NAME")
	if assistant == "" {
		assistant = "Rose"
	}

	cfg := Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		RecaptchaSecret: os.Getenv("RECAPTCHA_SECRET_KEY"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		FromEmail:      os.Getenv("FROM_EMAIL"),
		FromName:       os.Getenv("FROM_NAME"),
		ReplyToEmail:   os.Getenv("REPLY_TO"),
		NotifyEmail:    os.Getenv("NOTIFY_EMAIL"),
		BrandName:      brand,

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),

		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		AssistantName:    assistant,
		CampaignPagePath: os.Getenv("CAMPAIGN_PAGE_PATH"),

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		ExtraDenyDomains: splitList(os.Getenv("EXTRA_DENY_DOMAINS")),
	}

	if cfg.RecaptchaSecret == "" {
		return Config{}, errors.New("RECAPTCHA_SECRET_KEY is required")
	}
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return Config{}, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD are required")
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var values []string
	for _, value := range strings.Split(raw, ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			values = append(values, value)
		}
	}
	return values
}
