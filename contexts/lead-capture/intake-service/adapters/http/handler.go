package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"leadgate/contexts/lead-capture/intake-service/application/commands"
	"leadgate/contexts/lead-capture/intake-service/application/queries"
	"leadgate/contexts/lead-capture/intake-service/domain/entities"
	httptransport "leadgate/contexts/lead-capture/intake-service/transport/http"
)

const submittedMessage = "Your application has been submitted successfully!"

type Handler struct {
	SubmitLead commands.SubmitLeadUseCase
	Queries    queries.QueryUseCase
	Logger     *slog.Logger
}

// SubmitLeadHandler drives the intake pipeline. Client IP and user agent are
// derived at the HTTP boundary, never taken from form fields.
func (h Handler) SubmitLeadHandler(
	ctx context.Context,
	clientIP string,
	userAgent string,
	req httptransport.SubmitLeadRequest,
) (httptransport.SubmitLeadResponse, error) {
	_, err := h.SubmitLead.Execute(ctx, commands.SubmitLeadCommand{
		FullName:         req.FullName,
		Email:            req.Email,
		Phone:            req.Phone,
		ContactMethod:    req.ContactMethod,
		Address:          req.Address,
		City:             req.City,
		State:            req.State,
		ZipCode:          req.ZipCode,
		AgeRaw:           req.Age,
		Honeypot:         req.Website,
		CaptchaToken:     req.CaptchaToken,
		ClientIP:         clientIP,
		UserAgent:        userAgent,
		Metadata:         req.Metadata,
		FingerprintToken: req.FingerprintToken,
	})
	if err != nil {
		return httptransport.SubmitLeadResponse{}, err
	}
	// Created, duplicate and silent-discard all answer identically.
	return httptransport.SubmitLeadResponse{
		Status:  "ok",
		Message: submittedMessage,
	}, nil
}

func (h Handler) ListLeadsHandler(
	ctx context.Context,
	query queries.ListLeadsQuery,
) (httptransport.ListLeadsResponse, error) {
	items, err := h.Queries.ListLeads(ctx, query)
	if err != nil {
		return httptransport.ListLeadsResponse{}, err
	}
	result := make([]httptransport.LeadDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapLead(item))
	}
	return httptransport.ListLeadsResponse{Items: result}, nil
}

func mapLead(lead entities.Lead) httptransport.LeadDTO {
	return httptransport.LeadDTO{
		LeadID:        lead.LeadID,
		FullName:      lead.FullName,
		Email:         lead.Email,
		Phone:         lead.Phone,
		ContactMethod: lead.ContactMethod,
		Address:       lead.Address,
		City:          lead.City,
		State:         lead.State,
		ZipCode:       lead.ZipCode,
		AgeConfirmed:  lead.AgeConfirmed,
		ClientIP:      lead.ClientIP,
		UserAgent:     lead.UserAgent,
		CreatedAt:     lead.CreatedAt.UTC().Format(time.RFC3339),
	}
}
