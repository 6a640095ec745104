package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	CustomerID  *string `json:"customerId"`
}

// UpdateTicketRequest is a partial update; null clears nullable fields.
type UpdateTicketRequest struct {
	Title       domain.Optional[string] `json:"title"`
	Description domain.Optional[string] `json:"description"`
	Status      domain.Optional[string] `json:"status"`
	Priority    domain.Optional[string] `json:"priority"`
	AgentID     domain.Optional[string] `json:"agentId"`
	TeamID      domain.Optional[string] `json:"teamId"`
}

// TicketResponse is the full ticket view.
type TicketResponse struct {
	ID                string                 `json:"id"`
	Code              string                 `json:"code"`
	Title             string                 `json:"title"`
	Description       string                 `json:"description"`
	Status            domain.TicketStatus    `json:"status"`
	Priority          *domain.TicketPriority `json:"priority"`
	Category          *string                `json:"category"`
	Sentiment         *string                `json:"sentiment"`
	Diagnosis         *string                `json:"diagnosis"`
	SuggestedSolution *string                `json:"suggestedSolution"`
	CustomerID        *string                `json:"customerId"`
	AgentID           *string                `json:"agentId"`
	TeamID            *string                `json:"teamId"`
	OrganizationID    string                 `json:"organizationId"`
	ResolvedAt        *time.Time             `json:"resolvedAt"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

// NewTicketResponse maps a ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                t.ID,
		Code:              t.Code,
		Title:             t.Title,
		Description:       t.Description,
		Status:            t.Status,
		Priority:          t.Priority,
		Category:          t.Category,
		Sentiment:         t.Sentiment,
		Diagnosis:         t.Diagnosis,
		SuggestedSolution: t.SuggestedSolution,
		CustomerID:        t.CustomerID,
		AgentID:           t.AgentID,
		TeamID:            t.TeamID,
		OrganizationID:    t.OrganizationID,
		ResolvedAt:        t.ResolvedAt,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// ProcessTextRequest asks the model to refine or summarize text.
type ProcessTextRequest struct {
	Text        string `json:"text"`
	Instruction string `json:"instruction"`
}

// ProcessTextResponse returns raw model output.
type ProcessTextResponse struct {
	Result string `json:"result"`
}
