package commands

import (
	"context"
	"fmt"
	"log/slog"

	application "leadgate/contexts/lead-capture/assistant-service/application"
	"leadgate/contexts/lead-capture/assistant-service/domain/entities"
	"leadgate/contexts/lead-capture/assistant-service/ports"
)

// GreetingUseCase starts (or restarts) a chat session with the canned
// opening line. No model call is involved.
type GreetingUseCase struct {
	Sessions      ports.SessionStore
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	AssistantName string
	Brand         string
	Logger        *slog.Logger
}

type GreetingResult struct {
	SessionID string
	Reply     string
	History   []entities.Message
}

func (uc GreetingUseCase) Execute(ctx context.Context, sessionID string) (GreetingResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	if sessionID == "" {
		id, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return GreetingResult{}, fmt.Errorf("mint session id: %w", err)
		}
		sessionID = id
	}

	greeting := fmt.Sprintf(
		"Hello! I'm %s, welcome to the %s program! Let me know how I can assist you today.",
		uc.AssistantName, uc.Brand,
	)

	conv := entities.Conversation{
		SessionID: sessionID,
		Messages: []entities.Message{
			{Role: entities.RoleSystem, Content: baseSystemPrompt(uc.Brand)},
			{Role: entities.RoleAssistant, Content: greeting},
		},
		UpdatedAt: uc.Clock.Now(),
	}
	if err := uc.Sessions.SaveConversation(ctx, conv); err != nil {
		return GreetingResult{}, fmt.Errorf("save session: %w", err)
	}

	logger.Info("chat session greeted",
		"event", "chat_session_greeted",
		"module", "lead-capture/assistant-service",
		"layer", "application",
		"session_id", sessionID,
	)
	return GreetingResult{
		SessionID: sessionID,
		Reply:     greeting,
		History:   conv.Messages,
	}, nil
}
