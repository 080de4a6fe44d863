package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "leadgate/contexts/lead-capture/intake-service/application"
	"leadgate/contexts/lead-capture/intake-service/domain/entities"
	domainerrors "leadgate/contexts/lead-capture/intake-service/domain/errors"
	"leadgate/contexts/lead-capture/intake-service/ports"
)

type SubmitLeadCommand struct {
	FullName         string
	Email            string
	Phone            string
	ContactMethod    string
	Address          string
	City             string
	State            string
	ZipCode          string
	AgeRaw           string
	Honeypot         string
	CaptchaToken     string
	ClientIP         string
	UserAgent        string
	Metadata         string
	FingerprintToken string
}

type SubmitOutcome string

const (
	// OutcomeCreated means a new lead was stored and notifications dispatched.
	OutcomeCreated SubmitOutcome = "created"
	// OutcomeSilentDiscard means the honeypot tripped. The caller must answer
	// as if the submission succeeded.
	OutcomeSilentDiscard SubmitOutcome = "silent_discard"
	// OutcomeDuplicate means the email is already on file. Also answered as
	// success so submitters cannot probe which addresses exist.
	OutcomeDuplicate SubmitOutcome = "duplicate"
)

type SubmitLeadResult struct {
	Outcome SubmitOutcome
	Lead    entities.Lead
}

type SubmitLeadUseCase struct {
	Repository    ports.Repository
	Captcha       ports.CaptchaVerifier
	Email         ports.EmailNotifier
	Chat          ports.ChatAlertNotifier
	DenyList      *DenyList
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Random        ports.RandomSource
	NotifyTimeout time.Duration
	Logger        *slog.Logger
}

// Execute runs the intake state machine: honeypot, validation, captcha,
// duplicate guard, persistence, then best-effort notification fan-out.
// Exactly one terminal outcome is reached per call.
func (uc SubmitLeadUseCase) Execute(ctx context.Context, cmd SubmitLeadCommand) (SubmitLeadResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	if strings.TrimSpace(cmd.Honeypot) != "" {
		logger.Info("lead honeypot tripped",
			"event", "lead_honeypot_tripped",
			"module", "lead-capture/intake-service",
			"layer", "application",
			"client_ip", cmd.ClientIP,
		)
		return SubmitLeadResult{Outcome: OutcomeSilentDiscard}, nil
	}

	lead := entities.Lead{
		FullName:         strings.TrimSpace(cmd.FullName),
		Email:            entities.NormalizeEmail(cmd.Email),
		Phone:            strings.TrimSpace(cmd.Phone),
		ContactMethod:    strings.TrimSpace(cmd.ContactMethod),
		Address:          strings.TrimSpace(cmd.Address),
		City:             strings.TrimSpace(cmd.City),
		State:            strings.TrimSpace(cmd.State),
		ZipCode:          strings.TrimSpace(cmd.ZipCode),
		AgeConfirmed:     strings.TrimSpace(cmd.AgeRaw) == "yes",
		ClientIP:         strings.TrimSpace(cmd.ClientIP),
		UserAgent:        cmd.UserAgent,
		Metadata:         cmd.Metadata,
		FingerprintToken: strings.TrimSpace(cmd.FingerprintToken),
	}

	if err := validateLead(lead, uc.DenyList); err != nil {
		logger.Info("lead rejected",
			"event", "lead_validation_rejected",
			"module", "lead-capture/intake-service",
			"layer", "application",
			"reason", err.Error(),
		)
		return SubmitLeadResult{}, err
	}

	if uc.Captcha == nil || !uc.Captcha.Verify(ctx, cmd.CaptchaToken, lead.ClientIP) {
		logger.Info("lead captcha rejected",
			"event", "lead_captcha_rejected",
			"module", "lead-capture/intake-service",
			"layer", "application",
			"client_ip", lead.ClientIP,
		)
		return SubmitLeadResult{}, domainerrors.ErrCaptchaRejected
	}

	if _, err := uc.Repository.FindLeadByEmail(ctx, lead.Email); err == nil {
		logger.Info("lead duplicate suppressed",
			"event", "lead_duplicate_suppressed",
			"module", "lead-capture/intake-service",
			"layer", "application",
		)
		return SubmitLeadResult{Outcome: OutcomeDuplicate}, nil
	} else if !errors.Is(err, domainerrors.ErrLeadNotFound) {
		return SubmitLeadResult{}, fmt.Errorf("duplicate lookup: %w", err)
	}

	leadID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return SubmitLeadResult{}, err
	}
	lead.LeadID = leadID
	lead.CreatedAt = uc.Clock.Now().UTC()

	// The submitter may hang up mid-request; the record still lands, and
	// notifications still go out for it. Durability outranks cancellation.
	persistCtx := context.WithoutCancel(ctx)
	if err := uc.Repository.SaveLead(persistCtx, lead); err != nil {
		if errors.Is(err, domainerrors.ErrDuplicateLead) {
			// Lost the check-then-insert race. The store's unique index is
			// the backstop; treat exactly like the lookup hit.
			logger.Info("lead duplicate suppressed",
				"event", "lead_duplicate_suppressed",
				"module", "lead-capture/intake-service",
				"layer", "application",
			)
			return SubmitLeadResult{Outcome: OutcomeDuplicate}, nil
		}
		logger.Error("lead persistence failed",
			"event", "lead_persistence_failed",
			"module", "lead-capture/intake-service",
			"layer", "application",
			"error", err.Error(),
		)
		return SubmitLeadResult{}, fmt.Errorf("save lead: %w", err)
	}

	logger.Info("lead created",
		"event", "lead_created",
		"module", "lead-capture/intake-service",
		"layer", "application",
		"lead_id", lead.LeadID,
		"state", lead.State,
	)

	uc.dispatchNotifications(persistCtx, lead)

	return SubmitLeadResult{Outcome: OutcomeCreated, Lead: lead}, nil
}
