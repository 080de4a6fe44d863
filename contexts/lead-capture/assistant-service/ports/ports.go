package ports

import (
	"context"
	"time"

	"leadgate/contexts/lead-capture/assistant-service/domain/entities"
)

// ChatModel turns a conversation into the next assistant reply. The system
// prompt, when present, is the first message.
type ChatModel interface {
	Converse(ctx context.Context, messages []entities.Message) (string, error)
}

// Embedder maps text to dense vectors for similarity search.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// Retriever returns the page-content chunks most relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]string, error)
}

type SessionStore interface {
	LoadConversation(ctx context.Context, sessionID string) (entities.Conversation, error)
	SaveConversation(ctx context.Context, conv entities.Conversation) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
