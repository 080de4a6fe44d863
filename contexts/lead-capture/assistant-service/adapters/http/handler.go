// Package httpadapter maps chat commands onto transport DTOs. Session
// tracking (the cookie) stays at the HTTP server; this layer only sees
// session ids.
package httpadapter

import (
	"context"
	"errors"
	"log/slog"

	"leadgate/contexts/lead-capture/assistant-service/application/commands"
	"leadgate/contexts/lead-capture/assistant-service/domain/entities"
	domainerrors "leadgate/contexts/lead-capture/assistant-service/domain/errors"
	httptransport "leadgate/contexts/lead-capture/assistant-service/transport/http"
)

const (
	emptyMessageReply = "Please type a message."
	unavailableReply  = "Sorry, I'm currently experiencing a technical issue and cannot respond. Please try again in a moment."
)

type Handler struct {
	Greeting commands.GreetingUseCase
	ChatTurn commands.ChatTurnUseCase
	Logger   *slog.Logger
}

// GreetingHandler opens a session. The returned session id is echoed so the
// server can set the session cookie.
func (h Handler) GreetingHandler(ctx context.Context, sessionID string) (httptransport.ChatResponse, string, error) {
	result, err := h.Greeting.Execute(ctx, sessionID)
	if err != nil {
		return httptransport.ChatResponse{}, "", err
	}
	return httptransport.ChatResponse{
		Response: result.Reply,
		History:  mapHistory(result.History),
	}, result.SessionID, nil
}

// ChatHandler runs one exchange. Known failures still carry a user-facing
// body with the surviving history; the error tells the server which status
// to answer with.
func (h Handler) ChatHandler(
	ctx context.Context,
	sessionID string,
	req httptransport.ChatRequest,
) (httptransport.ChatResponse, string, error) {
	result, err := h.ChatTurn.Execute(ctx, sessionID, req.Message)
	switch {
	case err == nil:
		return httptransport.ChatResponse{
			Response: result.Reply,
			History:  mapHistory(result.History),
		}, result.SessionID, nil
	case errors.Is(err, domainerrors.ErrEmptyMessage):
		return httptransport.ChatResponse{
			Response: emptyMessageReply,
			History:  mapHistory(result.History),
		}, result.SessionID, err
	case errors.Is(err, domainerrors.ErrAssistantUnavailable):
		return httptransport.ChatResponse{
			Response: unavailableReply,
			History:  mapHistory(result.History),
		}, result.SessionID, err
	default:
		return httptransport.ChatResponse{}, result.SessionID, err
	}
}

func mapHistory(messages []entities.Message) []httptransport.MessageDTO {
	history := make([]httptransport.MessageDTO, 0, len(messages))
	for _, msg := range messages {
		history = append(history, httptransport.MessageDTO{
			Type:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return history
}
