package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/ai"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// CategoryNameSource yields the category names an organization already uses.
type CategoryNameSource interface {
	Get(ctx context.Context, organizationID string) ([]string, error)
}

// RetryPolicy bounds model calls per enrichment. MaxAttempts of one means no retry.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// EnrichmentDependencies wires the enrichment service.
type EnrichmentDependencies struct {
	TicketRepo  repository.TicketRepository
	Categories  CategoryNameSource
	Model       ai.ChatModel
	ModelName   string
	Temperature float64
	Retry       RetryPolicy
	Logger      *zap.Logger
	Metrics     *observability.Metrics
}

// EnrichmentService calls the chat model for text rewriting and ticket triage.
type EnrichmentService struct {
	tickets     repository.TicketRepository
	categories  CategoryNameSource
	model       ai.ChatModel
	modelName   string
	temperature float64
	retry       RetryPolicy
	logger      *zap.Logger
	metrics     *observability.Metrics
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewEnrichmentService constructs the service.
func NewEnrichmentService(deps EnrichmentDependencies) *EnrichmentService {
	retry := deps.Retry
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrichmentService{
		tickets:     deps.TicketRepo,
		categories:  deps.Categories,
		model:       deps.Model,
		modelName:   deps.ModelName,
		temperature: deps.Temperature,
		retry:       retry,
		logger:      logger,
		metrics:     deps.Metrics,
		sleep:       sleepContext,
	}
}

// ProcessText refines or summarizes free text and returns the raw model output.
func (s *EnrichmentService) ProcessText(ctx context.Context, actor *domain.User, text, instruction string) (string, error) {
	if actor == nil {
		return "", apperrors.NewUnauthorized("authentication required")
	}
	if strings.TrimSpace(text) == "" {
		return "", apperrors.NewValidationError("text is required", map[string]any{"field": "text"})
	}
	instr, ok := ai.ParseInstruction(instruction)
	if !ok {
		return "", apperrors.NewValidationError("invalid instruction: "+instruction, map[string]any{"field": "instruction"})
	}

	out, err := s.model.Generate(ctx, s.withModel(ai.TextPrompt(text, instr)))
	if err != nil {
		var providerErr *ai.ProviderError
		if errors.As(err, &providerErr) && providerErr.IsRateLimited() {
			return "", apperrors.NewUpstreamRateLimited(err)
		}
		s.logger.Error("text processing failed", zap.String("instruction", string(instr)), zap.Error(err))
		return "", apperrors.NewInternalError(err)
	}
	return out, nil
}

// AnalyzeTicket enriches one ticket in place. It never returns an error: every
// failure is logged and counted, and the ticket is left as it was.
func (s *EnrichmentService) AnalyzeTicket(ctx context.Context, ticketID string) {
	start := time.Now()
	outcome := s.analyze(ctx, ticketID)
	s.metrics.RecordEnrichment(outcome, time.Since(start))
}

func (s *EnrichmentService) analyze(ctx context.Context, ticketID string) string {
	log := s.logger.With(zap.String("ticket_id", ticketID))

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Info("ticket gone before enrichment")
			return observability.EnrichmentSkipped
		}
		log.Error("enrichment lookup failed", zap.Error(err))
		return observability.EnrichmentStoreFailed
	}

	var categories []string
	if s.categories != nil {
		categories, err = s.categories.Get(ctx, ticket.OrganizationID)
		if err != nil {
			log.Warn("category names unavailable, analyzing without them", zap.Error(err))
			categories = nil
		}
	}

	raw, err := s.generateWithRetry(ctx, log, s.withModel(ai.AnalysisPrompt(ticket.Title, ticket.Description, categories)))
	if err != nil {
		var providerErr *ai.ProviderError
		if errors.As(err, &providerErr) && providerErr.IsRateLimited() {
			log.Warn("enrichment skipped: provider quota exceeded", zap.Error(err))
			return observability.EnrichmentRateLimited
		}
		log.Error("enrichment model call failed", zap.Error(err))
		return observability.EnrichmentModelFailed
	}

	analysis, err := ai.ParseAnalysis(raw)
	if err != nil {
		log.Error("enrichment response is not valid JSON", zap.Error(err), zap.String("response", truncate(raw, 512)))
		return observability.EnrichmentParseFailed
	}

	enrichment := domain.EnrichmentOf(ticket)
	if rejected := analysis.ApplyTo(&enrichment); rejected != "" {
		log.Warn("model returned unknown priority, keeping current value", zap.String("priority", rejected))
	}

	if err := s.tickets.UpdateEnrichment(ctx, ticket.ID, enrichment); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Info("ticket deleted during enrichment")
			return observability.EnrichmentSkipped
		}
		log.Error("persisting enrichment failed", zap.Error(err))
		return observability.EnrichmentStoreFailed
	}
	log.Info("ticket enriched", zap.String("code", ticket.Code))
	return observability.EnrichmentApplied
}

func (s *EnrichmentService) generateWithRetry(ctx context.Context, log *zap.Logger, prompt ai.Prompt) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		out, err := s.model.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err

		var providerErr *ai.ProviderError
		if attempt == s.retry.MaxAttempts || !errors.As(err, &providerErr) || !providerErr.Retryable() {
			break
		}
		wait := s.retry.Backoff * time.Duration(attempt)
		log.Warn("retrying model call",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err))
		if err := s.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

func (s *EnrichmentService) withModel(p ai.Prompt) ai.Prompt {
	p.Model = s.modelName
	p.Temperature = s.temperature
	return p
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
