package queries

import (
	"context"
	"log/slog"

	application "leadgate/contexts/lead-capture/intake-service/application"
	"leadgate/contexts/lead-capture/intake-service/domain/entities"
	"leadgate/contexts/lead-capture/intake-service/ports"
)

type ListLeadsQuery struct {
	FullName string
	Email    string
	Phone    string
	ClientIP string
	State    string
	City     string
	Limit    int
}

// QueryUseCase serves the admin read surface. The pipeline never reads
// through here; intake only needs the duplicate lookup.
type QueryUseCase struct {
	Repository ports.Repository
	Logger     *slog.Logger
}

func (uc QueryUseCase) GetLeadByEmail(ctx context.Context, email string) (entities.Lead, error) {
	return uc.Repository.FindLeadByEmail(ctx, entities.NormalizeEmail(email))
}

func (uc QueryUseCase) ListLeads(ctx context.Context, query ListLeadsQuery) ([]entities.Lead, error) {
	items, err := uc.Repository.ListLeads(ctx, ports.LeadFilter{
		FullName: query.FullName,
		Email:    query.Email,
		Phone:    query.Phone,
		ClientIP: query.ClientIP,
		State:    query.State,
		City:     query.City,
		Limit:    query.Limit,
	})
	if err != nil {
		application.ResolveLogger(uc.Logger).Error("lead list failed",
			"event", "lead_list_failed",
			"module", "lead-capture/intake-service",
			"layer", "application",
			"error", err.Error(),
		)
		return nil, err
	}
	return items, nil
}
