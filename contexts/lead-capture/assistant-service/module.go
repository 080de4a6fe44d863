package assistantservice

import (
	"log/slog"

	httpadapter "leadgate/contexts/lead-capture/assistant-service/adapters/http"
	"leadgate/contexts/lead-capture/assistant-service/adapters/memory"
	"leadgate/contexts/lead-capture/assistant-service/application/commands"
	"leadgate/contexts/lead-capture/assistant-service/ports"
)

const (
	defaultAssistantName = "Rose"
	defaultBrand         = "LeadGate"
)

type Module struct {
	Handler  httpadapter.Handler
	Sessions *memory.SessionStore
}

type Dependencies struct {
	Sessions      ports.SessionStore
	Model         ports.ChatModel
	Retriever     ports.Retriever
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	AssistantName string
	Brand         string
	ContextChunks int
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	if deps.AssistantName == "" {
		deps.AssistantName = defaultAssistantName
	}
	if deps.Brand == "" {
		deps.Brand = defaultBrand
	}

	greeting := commands.GreetingUseCase{
		Sessions:      deps.Sessions,
		Clock:         deps.Clock,
		IDGen:         deps.IDGen,
		AssistantName: deps.AssistantName,
		Brand:         deps.Brand,
		Logger:        deps.Logger,
	}
	chatTurn := commands.ChatTurnUseCase{
		Sessions:      deps.Sessions,
		Model:         deps.Model,
		Retriever:     deps.Retriever,
		Clock:         deps.Clock,
		IDGen:         deps.IDGen,
		Brand:         deps.Brand,
		ContextChunks: deps.ContextChunks,
		Logger:        deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			Greeting: greeting,
			ChatTurn: chatTurn,
			Logger:   deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module onto the in-memory session store, which
// also serves as clock and id generator. Sessions are ephemeral by nature,
// so this wiring is used in production too.
func NewInMemoryModule(deps Dependencies) Module {
	store := memory.NewSessionStore()
	deps.Sessions = store
	deps.Clock = store
	deps.IDGen = store
	module := NewModule(deps)
	module.Sessions = store
	return module
}
