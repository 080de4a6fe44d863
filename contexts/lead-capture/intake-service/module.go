package intakeservice

import (
	"log/slog"
	"time"

	httpadapter "leadgate/contexts/lead-capture/intake-service/adapters/http"
	"leadgate/contexts/lead-capture/intake-service/adapters/memory"
	"leadgate/contexts/lead-capture/intake-service/application/commands"
	"leadgate/contexts/lead-capture/intake-service/application/queries"
	"leadgate/contexts/lead-capture/intake-service/domain/entities"
	"leadgate/contexts/lead-capture/intake-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repository    ports.Repository
	Captcha       ports.CaptchaVerifier
	Email         ports.EmailNotifier
	Chat          ports.ChatAlertNotifier
	DenyList      *commands.DenyList
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Random        ports.RandomSource
	NotifyTimeout time.Duration
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	submitLead := commands.SubmitLeadUseCase{
		Repository:    deps.Repository,
		Captcha:       deps.Captcha,
		Email:         deps.Email,
		Chat:          deps.Chat,
		DenyList:      deps.DenyList,
		Clock:         deps.Clock,
		IDGen:         deps.IDGen,
		Random:        deps.Random,
		NotifyTimeout: deps.NotifyTimeout,
		Logger:        deps.Logger,
	}
	queryUseCase := queries.QueryUseCase{
		Repository: deps.Repository,
		Logger:     deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			SubmitLead: submitLead,
			Queries:    queryUseCase,
			Logger:     deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module onto the in-memory store, which also
// serves as clock, id generator and randomness source. Captcha and notifier
// ports come from deps so tests can substitute recorders and stubs.
func NewInMemoryModule(seed []entities.Lead, deps Dependencies) Module {
	store := memory.NewStore(seed)
	deps.Repository = store
	deps.Clock = store
	deps.IDGen = store
	deps.Random = store
	if deps.DenyList == nil {
		if denyList, err := commands.NewDenyList(nil); err == nil {
			deps.DenyList = denyList
		}
	}
	module := NewModule(deps)
	module.Store = store
	return module
}
