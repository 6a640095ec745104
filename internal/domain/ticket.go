package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusPending    TicketStatus = "PENDING"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// ParseTicketStatus normalizes case and rejects unknown values.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	s := TicketStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusPending, TicketStatusResolved, TicketStatusClosed:
		return s, true
	}
	return "", false
}

// IsResolved reports whether the status counts as resolved for metrics.
func (s TicketStatus) IsResolved() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// ParseTicketPriority normalizes case and rejects unknown values.
func ParseTicketPriority(raw string) (TicketPriority, bool) {
	p := TicketPriority(strings.ToUpper(strings.TrimSpace(raw)))
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return p, true
	}
	return "", false
}

// Ticket is the aggregate for support requests. Priority, Category, Sentiment,
// Diagnosis and SuggestedSolution are filled by enrichment and may stay nil.
type Ticket struct {
	ID                string
	Code              string
	Title             string
	Description       string
	Status            TicketStatus
	Priority          *TicketPriority
	Category          *string
	Sentiment         *string
	Diagnosis         *string
	SuggestedSolution *string
	CustomerID        *string
	AgentID           *string
	TeamID            *string
	OrganizationID    string
	ResolvedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Enrichment is the subset of ticket fields written by the AI pipeline.
type Enrichment struct {
	Title             string
	Priority          *TicketPriority
	Category          *string
	Sentiment         *string
	Diagnosis         *string
	SuggestedSolution *string
}

// EnrichmentOf extracts the AI-owned fields of t.
func EnrichmentOf(t *Ticket) Enrichment {
	return Enrichment{
		Title:             t.Title,
		Priority:          t.Priority,
		Category:          t.Category,
		Sentiment:         t.Sentiment,
		Diagnosis:         t.Diagnosis,
		SuggestedSolution: t.SuggestedSolution,
	}
}
