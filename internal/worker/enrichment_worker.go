package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
)

// TicketAnalyzer enriches one ticket by id. Implementations swallow their own errors.
type TicketAnalyzer interface {
	AnalyzeTicket(ctx context.Context, ticketID string)
}

// StartEnrichmentWorker schedules an analysis on pool for every created ticket.
// A full queue is logged and counted but never fails the request that created
// the ticket.
func StartEnrichmentWorker(dispatcher events.Dispatcher, pool *Pool, analyzer TicketAnalyzer, logger *zap.Logger, metrics *observability.Metrics) {
	if dispatcher == nil || pool == nil || analyzer == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, func(_ context.Context, event events.Event) error {
		ticketID := event.TicketID
		err := pool.Submit("analyze:"+ticketID, func(ctx context.Context) {
			analyzer.AnalyzeTicket(ctx, ticketID)
		})
		if err != nil {
			metrics.RecordEnrichment(observability.EnrichmentRejected, 0)
			logger.Error("enrichment not scheduled",
				zap.String("ticket_id", ticketID),
				zap.String("organization_id", event.OrganizationID),
				zap.Error(err))
		}
		return nil
	})
}
