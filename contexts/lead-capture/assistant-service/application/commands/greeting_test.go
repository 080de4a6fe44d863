package commands

import (
	"context"
	"testing"
	"time"

	"leadgate/contexts/lead-capture/assistant-service/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGreeting(sessions *stubSessions) GreetingUseCase {
	return GreetingUseCase{
		Sessions:      sessions,
		Clock:         stubClock{t: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)},
		IDGen:         stubIDs{id: "9b1f0e44-aaaa-bbbb-cccc-444455556666"},
		AssistantName: "Rose",
		Brand:         "Brand",
	}
}

func TestGreetingOpensSessionWithCannedReply(t *testing.T) {
	sessions := &stubSessions{}
	uc := newGreeting(sessions)

	result, err := uc.Execute(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "9b1f0e44-aaaa-bbbb-cccc-444455556666", result.SessionID)
	assert.Equal(t, "Hello! I'm Rose, welcome to the Brand program! Let me know how I can assist you today.", result.Reply)

	require.Len(t, result.History, 2)
	assert.Equal(t, entities.RoleSystem, result.History[0].Role)
	assert.Contains(t, result.History[0].Content, "Brand campaign webpage")
	assert.Equal(t, entities.RoleAssistant, result.History[1].Role)

	saved, ok := sessions.stored[result.SessionID]
	require.True(t, ok)
	assert.Equal(t, uc.Clock.Now(), saved.UpdatedAt)
}

func TestGreetingResetsExistingSession(t *testing.T) {
	sessions := &stubSessions{stored: map[string]entities.Conversation{
		"sess-1": {
			SessionID: "sess-1",
			Messages: []entities.Message{
				{Role: entities.RoleSystem, Content: "old prompt"},
				{Role: entities.RoleAssistant, Content: "Hello!"},
				{Role: entities.RoleUser, Content: "earlier question"},
				{Role: entities.RoleAssistant, Content: "earlier answer"},
			},
		},
	}}
	uc := newGreeting(sessions)

	result, err := uc.Execute(context.Background(), "sess-1")
	require.NoError(t, err)

	assert.Equal(t, "sess-1", result.SessionID)
	require.Len(t, result.History, 2)
	assert.Len(t, sessions.stored["sess-1"].Messages, 2)
}
