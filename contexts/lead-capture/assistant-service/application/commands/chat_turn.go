package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	application "leadgate/contexts/lead-capture/assistant-service/application"
	"leadgate/contexts/lead-capture/assistant-service/domain/entities"
	domainerrors "leadgate/contexts/lead-capture/assistant-service/domain/errors"
	"leadgate/contexts/lead-capture/assistant-service/ports"
)

const defaultContextChunks = 3

// ChatTurnUseCase runs one question/answer exchange: load the session,
// retrieve page context, rebuild the system prompt, call the model, persist
// the extended history. A failed model call rolls the user turn back so the
// visitor can simply retry.
type ChatTurnUseCase struct {
	Sessions      ports.SessionStore
	Model         ports.ChatModel
	Retriever     ports.Retriever
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Brand         string
	ContextChunks int
	Logger        *slog.Logger
}

type ChatTurnResult struct {
	SessionID string
	Reply     string
	History   []entities.Message
}

func (uc ChatTurnUseCase) Execute(ctx context.Context, sessionID string, message string) (ChatTurnResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	conv, err := uc.loadOrStart(ctx, sessionID)
	if err != nil {
		return ChatTurnResult{}, err
	}

	if strings.TrimSpace(message) == "" {
		return ChatTurnResult{
			SessionID: conv.SessionID,
			History:   conv.Messages,
		}, domainerrors.ErrEmptyMessage
	}

	conv.SetSystemPrompt(uc.systemPrompt(ctx, message, logger))
	conv.Append(entities.RoleUser, message)

	reply, err := uc.converse(ctx, conv.Messages)
	if err != nil {
		logger.Error("assistant reply failed",
			"event", "chat_model_failed",
			"module", "lead-capture/assistant-service",
			"layer", "application",
			"session_id", conv.SessionID,
			"error", err,
		)
		conv.DropLastUserTurn()
		conv.UpdatedAt = uc.Clock.Now()
		if saveErr := uc.Sessions.SaveConversation(ctx, conv); saveErr != nil {
			logger.Error("session rollback save failed",
				"event", "chat_session_save_failed",
				"module", "lead-capture/assistant-service",
				"layer", "application",
				"session_id", conv.SessionID,
				"error", saveErr,
			)
		}
		return ChatTurnResult{
			SessionID: conv.SessionID,
			History:   conv.Messages,
		}, fmt.Errorf("%w: %w", domainerrors.ErrAssistantUnavailable, err)
	}

	conv.Append(entities.RoleAssistant, reply)
	conv.UpdatedAt = uc.Clock.Now()
	if err := uc.Sessions.SaveConversation(ctx, conv); err != nil {
		return ChatTurnResult{}, fmt.Errorf("save session: %w", err)
	}

	logger.Info("chat turn answered",
		"event", "chat_turn_answered",
		"module", "lead-capture/assistant-service",
		"layer", "application",
		"session_id", conv.SessionID,
		"history_len", len(conv.Messages),
	)
	return ChatTurnResult{
		SessionID: conv.SessionID,
		Reply:     reply,
		History:   conv.Messages,
	}, nil
}

// loadOrStart resumes the session when the id is known, otherwise mints a
// fresh empty conversation. Unknown ids also start fresh: cookies outlive
// server restarts.
func (uc ChatTurnUseCase) loadOrStart(ctx context.Context, sessionID string) (entities.Conversation, error) {
	if sessionID != "" {
		conv, err := uc.Sessions.LoadConversation(ctx, sessionID)
		if err == nil {
			return conv, nil
		}
		if !errors.Is(err, domainerrors.ErrSessionNotFound) {
			return entities.Conversation{}, fmt.Errorf("load session: %w", err)
		}
		return entities.Conversation{SessionID: sessionID}, nil
	}

	id, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Conversation{}, fmt.Errorf("mint session id: %w", err)
	}
	return entities.Conversation{SessionID: id}, nil
}

// systemPrompt grounds the turn on retrieved page chunks. Retrieval problems
// degrade to the ungrounded prompt rather than failing the turn.
func (uc ChatTurnUseCase) systemPrompt(ctx context.Context, message string, logger *slog.Logger) string {
	if uc.Retriever == nil {
		logger.Warn("retriever not configured, answering without page context",
			"event", "chat_retriever_missing",
			"module", "lead-capture/assistant-service",
			"layer", "application",
		)
		return fallbackSystemPrompt(uc.Brand)
	}

	k := uc.ContextChunks
	if k <= 0 {
		k = defaultContextChunks
	}
	chunks, err := uc.Retriever.Retrieve(ctx, message, k)
	if err != nil {
		logger.Error("page context retrieval failed",
			"event", "chat_retrieval_failed",
			"module", "lead-capture/assistant-service",
			"layer", "application",
			"error", err,
		)
		return fallbackSystemPrompt(uc.Brand)
	}
	if len(chunks) == 0 {
		return fallbackSystemPrompt(uc.Brand)
	}
	return groundedSystemPrompt(uc.Brand, chunks)
}

func (uc ChatTurnUseCase) converse(ctx context.Context, messages []entities.Message) (string, error) {
	if uc.Model == nil {
		return "", errors.New("chat model not configured")
	}
	return uc.Model.Converse(ctx, messages)
}
