// Package sendgrid delivers the templated acknowledgement mail through the
// SendGrid v3 API. Rendered bodies are passed through the spintax engine so
// no two sends are byte-identical.
package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	application "leadgate/contexts/lead-capture/intake-service/application"
	"leadgate/contexts/lead-capture/intake-service/domain/entities"
	"leadgate/contexts/lead-capture/intake-service/domain/spintax"
)

const defaultSendURL = "https://api.sendgrid.com/v3/mail/send"

var accentColors = []string{"#0b7a3e", "#1463b8", "#b83214", "#6d28d9", "#0f766e"}

const subjectTemplate = "{Thanks|Thank you} for your {Brand} application"

const bodyTemplate = `<html>
<body style="font-family:Arial,sans-serif;padding:{{.Padding}};">
<h2 style="color:{{.AccentColor}};">{{.Brand}}</h2>
<p>{Hi|Hello|Hey} {{.Name}},</p>
<p>{Thanks|Thank you} for {applying to|signing up for} the {{.Brand}} program.
{We received your application|Your application is in} and {our team|someone from our team}
will {reach out|get in touch|follow up} {soon|shortly|within a few days}.</p>
<p>{Your|Application} reference {code|number}: <strong>{{.RefCode}}</strong></p>
<p style="color:#777;">{Talk soon|Speak soon|Until then},<br>{The {{.Brand}} team|Team {{.Brand}}}</p>
</body>
</html>`

type Mailer struct {
	apiKey      string
	fromEmail   string
	fromName    string
	replyTo     string
	notifyEmail string
	brand       string
	sendURL     string
	client      *http.Client
	logger      *slog.Logger
	body        *template.Template
}

type Config struct {
	APIKey      string
	FromEmail   string
	FromName    string
	ReplyTo     string
	NotifyEmail string
	Brand       string
}

func NewMailer(cfg Config, logger *slog.Logger) *Mailer {
	return &Mailer{
		apiKey:      cfg.APIKey,
		fromEmail:   cfg.FromEmail,
		fromName:    cfg.FromName,
		replyTo:     cfg.ReplyTo,
		notifyEmail: cfg.NotifyEmail,
		brand:       cfg.Brand,
		sendURL:     defaultSendURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		logger:      application.ResolveLogger(logger),
		body:        template.Must(template.New("lead_ack").Parse(bodyTemplate)),
	}
}

// WithEndpoint overrides the API URL. Tests point it at a stub.
func (m *Mailer) WithEndpoint(sendURL string) *Mailer {
	m.sendURL = sendURL
	return m
}

type templateVars struct {
	Name        string
	RefCode     string
	Brand       string
	AccentColor string
	Padding     string
}

func (m *Mailer) Send(ctx context.Context, lead entities.Lead, rng *rand.Rand) error {
	if strings.TrimSpace(m.apiKey) == "" {
		return errors.New("sendgrid api key not configured")
	}

	vars := templateVars{
		Name:        lead.FullName,
		RefCode:     lead.ReferenceCode(),
		Brand:       m.brand,
		AccentColor: accentColors[rng.Intn(len(accentColors))],
		Padding:     fmt.Sprintf("%dpx", 12+rng.Intn(16)),
	}

	var rendered bytes.Buffer
	if err := m.body.Execute(&rendered, vars); err != nil {
		return fmt.Errorf("render mail body: %w", err)
	}
	html := spintax.Render(rendered.String(), rng)
	subject := spintax.Render(strings.ReplaceAll(subjectTemplate, "{Brand}", m.brand), rng)

	payload := sendRequest{
		Personalizations: []personalization{{
			To: []address{{Email: lead.Email, Name: lead.FullName}},
		}},
		From:    address{Email: m.fromEmail, Name: m.fromName},
		ReplyTo: &address{Email: m.replyTo},
		Subject: subject,
		Content: []content{{Type: "text/html", Value: html}},
	}
	if err := m.post(ctx, payload); err != nil {
		return err
	}

	if strings.TrimSpace(m.notifyEmail) != "" {
		if err := m.post(ctx, m.operatorCopy(lead)); err != nil {
			return fmt.Errorf("operator copy: %w", err)
		}
	}
	return nil
}

// operatorCopy is the internal heads-up sent to the configured notify
// address, a plain-text summary of the stored lead.
func (m *Mailer) operatorCopy(lead entities.Lead) sendRequest {
	var b strings.Builder
	fmt.Fprintf(&b, "New %s application\n\n", m.brand)
	fmt.Fprintf(&b, "Full Name: %s\n", lead.FullName)
	fmt.Fprintf(&b, "Email: %s\n", lead.Email)
	fmt.Fprintf(&b, "Phone: %s\n", lead.Phone)
	fmt.Fprintf(&b, "Preferred Contact Method: %s\n", lead.ContactMethod)
	fmt.Fprintf(&b, "Address: %s, %s, %s, %s\n", lead.Address, lead.City, lead.State, lead.ZipCode)
	fmt.Fprintf(&b, "Age 18+: %v\n", lead.AgeConfirmed)
	fmt.Fprintf(&b, "Reference: %s\n", lead.ReferenceCode())
	fmt.Fprintf(&b, "Submitted On: %s\n", lead.CreatedAt.Format(time.RFC3339))

	return sendRequest{
		Personalizations: []personalization{{
			To: []address{{Email: m.notifyEmail}},
		}},
		From:    address{Email: m.fromEmail, Name: m.fromName},
		ReplyTo: &address{Email: m.replyTo},
		Subject: fmt.Sprintf("New %s application", m.brand),
		Content: []content{{Type: "text/plain", Value: b.String()}},
	}
}

func (m *Mailer) post(ctx context.Context, payload sendRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.sendURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	ReplyTo          *address          `json:"reply_to,omitempty"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []address `json:"to"`
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
