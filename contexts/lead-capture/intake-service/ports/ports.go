package ports

import (
	"context"
	"math/rand"
	"time"

	"leadgate/contexts/lead-capture/intake-service/domain/entities"
)

// LeadFilter narrows admin list queries. Empty fields match everything.
type LeadFilter struct {
	FullName string
	Email    string
	Phone    string
	ClientIP string
	State    string
	City     string
	Limit    int
}

type Repository interface {
	SaveLead(ctx context.Context, lead entities.Lead) error
	FindLeadByEmail(ctx context.Context, email string) (entities.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]entities.Lead, error)
}

// CaptchaVerifier gates submissions on an external challenge check.
// Implementations fail closed: any transport or decode problem reports false.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string, clientIP string) bool
}

// EmailNotifier delivers the templated acknowledgement mail for a stored
// lead. The rng drives spintax resolution and cosmetic layout variance.
type EmailNotifier interface {
	Send(ctx context.Context, lead entities.Lead, rng *rand.Rand) error
}

// ChatAlertNotifier posts an operator-facing alert for a stored lead.
type ChatAlertNotifier interface {
	Alert(ctx context.Context, lead entities.Lead) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// RandomSource hands out one randomness stream per submission so tests can
// pin every randomized byte of the outbound notifications.
type RandomSource interface {
	NewRand() *rand.Rand
}
