// Package recaptcha verifies submission challenge tokens against the Google
// siteverify endpoint. The verifier fails closed: every transport, decode or
// API problem reports the token as rejected.
package recaptcha

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	application "leadgate/contexts/lead-capture/intake-service/application"
)

const defaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

type Verifier struct {
	secret    string
	verifyURL string
	client    *http.Client
	logger    *slog.Logger
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

func NewVerifier(secret string, logger *slog.Logger) *Verifier {
	return &Verifier{
		secret:    secret,
		verifyURL: defaultVerifyURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    application.ResolveLogger(logger),
	}
}

// WithEndpoint overrides the verification URL. Tests point it at a stub.
func (v *Verifier) WithEndpoint(verifyURL string) *Verifier {
	v.verifyURL = verifyURL
	return v
}

func (v *Verifier) Verify(ctx context.Context, token string, clientIP string) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}

	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
		"remoteip": {clientIP},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Error("captcha verify request failed",
			"event", "captcha_verify_request_failed",
			"module", "lead-capture/intake-service",
			"layer", "adapter",
			"error", err.Error(),
		)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.logger.Error("captcha verify unexpected status",
			"event", "captcha_verify_unexpected_status",
			"module", "lead-capture/intake-service",
			"layer", "adapter",
			"status", resp.StatusCode,
		)
		return false
	}

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false
	}
	if !result.Success {
		v.logger.Info("captcha token rejected",
			"event", "captcha_token_rejected",
			"module", "lead-capture/intake-service",
			"layer", "adapter",
			"error_codes", strings.Join(result.ErrorCodes, ","),
		)
	}
	return result.Success
}
