package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated EventType = "ticket_created"
	EventTicketUpdated EventType = "ticket_updated"
	EventTicketDeleted EventType = "ticket_deleted"
)

// Actor identifies who caused an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID             string      `json:"id"`
	Type           EventType   `json:"type"`
	TicketID       string      `json:"ticket_id"`
	OrganizationID string      `json:"organization_id"`
	Actor          Actor       `json:"actor"`
	Timestamp      time.Time   `json:"timestamp"`
	Payload        interface{} `json:"payload,omitempty"`
}

// NewEvent stamps an event with an id and the current time.
func NewEvent(eventType EventType, ticket *domain.Ticket, actor *domain.User, payload interface{}) Event {
	e := Event{
		ID:             uuid.NewString(),
		Type:           eventType,
		TicketID:       ticket.ID,
		OrganizationID: ticket.OrganizationID,
		Timestamp:      time.Now().UTC(),
		Payload:        payload,
	}
	if actor != nil {
		e.Actor = Actor{UserID: actor.ID, Role: actor.Role}
	}
	return e
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Code     string                 `json:"code"`
	Priority *domain.TicketPriority `json:"priority,omitempty"`
	Title    string                 `json:"title"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}
