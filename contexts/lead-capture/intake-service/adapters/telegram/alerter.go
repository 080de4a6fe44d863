// Package telegram posts operator alerts for stored leads to a Telegram
// bot chat.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	application "leadgate/contexts/lead-capture/intake-service/application"
	"leadgate/contexts/lead-capture/intake-service/domain/entities"
)

const defaultAPIBase = "https://api.telegram.org"

type Alerter struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
	logger   *slog.Logger
}

func NewAlerter(botToken string, chatID string, logger *slog.Logger) *Alerter {
	return &Alerter{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   application.ResolveLogger(logger),
	}
}

// WithEndpoint overrides the API base URL. Tests point it at a stub.
func (a *Alerter) WithEndpoint(apiBase string) *Alerter {
	a.apiBase = strings.TrimRight(apiBase, "/")
	return a
}

func (a *Alerter) Alert(ctx context.Context, lead entities.Lead) error {
	if strings.TrimSpace(a.botToken) == "" || strings.TrimSpace(a.chatID) == "" {
		return errors.New("telegram credentials not configured")
	}

	form := url.Values{
		"chat_id":    {a.chatID},
		"text":       {formatAlert(lead)},
		"parse_mode": {"HTML"},
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", a.apiBase, a.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && !result.OK {
		return errors.New("telegram api reported failure")
	}
	return nil
}

// formatAlert escapes every submitted value. The message is sent with
// parse_mode=HTML, so raw angle brackets in a field would make Telegram
// reject the whole alert.
func formatAlert(lead entities.Lead) string {
	var b strings.Builder
	b.WriteString("<b>New lead</b>\n")
	fmt.Fprintf(&b, "Ref: %s\n", lead.ReferenceCode())
	fmt.Fprintf(&b, "Name: %s\n", html.EscapeString(lead.FullName))
	fmt.Fprintf(&b, "Email: %s\n", html.EscapeString(lead.Email))
	fmt.Fprintf(&b, "Phone: %s\n", html.EscapeString(lead.Phone))
	fmt.Fprintf(&b, "Contact via: %s\n", html.EscapeString(lead.ContactMethod))
	fmt.Fprintf(&b, "Address: %s, %s, %s %s\n",
		html.EscapeString(lead.Address), html.EscapeString(lead.City),
		html.EscapeString(lead.State), html.EscapeString(lead.ZipCode))
	fmt.Fprintf(&b, "18+: %v\n", lead.AgeConfirmed)
	fmt.Fprintf(&b, "IP: %s\n", html.EscapeString(lead.ClientIP))
	fmt.Fprintf(&b, "Submitted: %s", lead.CreatedAt.Format(time.RFC3339))
	return b.String()
}
