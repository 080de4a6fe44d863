package commands

import (
	"context"
	"math/rand"
	"sync"
	"time"

	application "leadgate/contexts/lead-capture/intake-service/application"
	"leadgate/contexts/lead-capture/intake-service/domain/entities"
)

const defaultNotifyTimeout = 10 * time.Second

// dispatchNotifications fans the stored lead out to the email and chat
// notifiers. The two run concurrently, each under its own timeout, and
// neither failure reaches the caller: everything after a successful save is
// best-effort and logged only.
func (uc SubmitLeadUseCase) dispatchNotifications(ctx context.Context, lead entities.Lead) {
	logger := application.ResolveLogger(uc.Logger)
	timeout := uc.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}

	var rng *rand.Rand
	if uc.Random != nil {
		rng = uc.Random.NewRand()
	} else {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	var wg sync.WaitGroup

	if uc.Email != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sendCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			if err := uc.Email.Send(sendCtx, lead, rng); err != nil {
				logger.Error("lead email notification failed",
					"event", "lead_email_notification_failed",
					"module", "lead-capture/intake-service",
					"layer", "application",
					"lead_id", lead.LeadID,
					"error", err.Error(),
				)
				return
			}
			logger.Info("lead email notification sent",
				"event", "lead_email_notification_sent",
				"module", "lead-capture/intake-service",
				"layer", "application",
				"lead_id", lead.LeadID,
			)
		}()
	} else {
		logger.Warn("lead email notifier not configured",
			"event", "lead_email_notifier_missing",
			"module", "lead-capture/intake-service",
			"layer", "application",
			"lead_id", lead.LeadID,
		)
	}

	if uc.Chat != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			alertCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			if err := uc.Chat.Alert(alertCtx, lead); err != nil {
				logger.Error("lead chat alert failed",
					"event", "lead_chat_alert_failed",
					"module", "lead-capture/intake-service",
					"layer", "application",
					"lead_id", lead.LeadID,
					"error", err.Error(),
				)
				return
			}
			logger.Info("lead chat alert sent",
				"event", "lead_chat_alert_sent",
				"module", "lead-capture/intake-service",
				"layer", "application",
				"lead_id", lead.LeadID,
			)
		}()
	} else {
		logger.Warn("lead chat notifier not configured",
			"event", "lead_chat_notifier_missing",
			"module", "lead-capture/intake-service",
			"layer", "application",
			"lead_id", lead.LeadID,
		)
	}

	wg.Wait()
}
