package entities

import "time"

// Role identifies who produced a message. The string values are the wire
// representation used by the chat endpoints.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "human"
	RoleAssistant Role = "ai"
)

type Message struct {
	Role    Role
	Content string
}

// Conversation is one visitor's chat session. The system prompt, when
// present, is always the first message.
type Conversation struct {
	SessionID string
	Messages  []Message
	UpdatedAt time.Time
}

// SetSystemPrompt replaces the leading system message, inserting one when the
// conversation has none yet. The prompt is rebuilt per turn because the
// retrieved page context changes with every question.
func (c *Conversation) SetSystemPrompt(content string) {
	if len(c.Messages) > 0 && c.Messages[0].Role == RoleSystem {
		c.Messages[0].Content = content
		return
	}
	c.Messages = append([]Message{{Role: RoleSystem, Content: content}}, c.Messages...)
}

func (c *Conversation) Append(role Role, content string) {
	c.Messages = append(c.Messages, Message{Role: role, Content: content})
}

// DropLastUserTurn removes a trailing user message. Used to roll the
// conversation back when the model call fails after the turn was appended.
func (c *Conversation) DropLastUserTurn() {
	if n := len(c.Messages); n > 0 && c.Messages[n-1].Role == RoleUser {
		c.Messages = c.Messages[:n-1]
	}
}
