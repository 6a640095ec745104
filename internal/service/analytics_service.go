package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// TicketAggregator computes metrics over an organization's tickets created after
// since, optionally narrowed to one agent.
type TicketAggregator interface {
	Aggregate(ctx context.Context, organizationID string, agentID *string, since time.Time) (domain.Metrics, error)
}

const aggregateBatchSize = 500

// InMemoryAggregator loads matching tickets in batches and folds them in process.
type InMemoryAggregator struct {
	tickets repository.TicketRepository
}

// NewInMemoryAggregator constructs the aggregator.
func NewInMemoryAggregator(tickets repository.TicketRepository) *InMemoryAggregator {
	return &InMemoryAggregator{tickets: tickets}
}

func (a *InMemoryAggregator) Aggregate(ctx context.Context, organizationID string, agentID *string, since time.Time) (domain.Metrics, error) {
	filter := repository.TicketFilter{
		OrganizationID: organizationID,
		AgentID:        agentID,
		CreatedAfter:   &since,
		Page:           repository.Page{Limit: aggregateBatchSize, Sort: "created_at"},
	}
	var all []domain.Ticket
	for {
		batch, err := a.tickets.List(ctx, filter)
		if err != nil {
			return domain.Metrics{}, err
		}
		all = append(all, batch...)
		if len(batch) < aggregateBatchSize {
			break
		}
		filter.Page.Offset += aggregateBatchSize
	}
	return ComputeMetrics(all), nil
}

// ComputeMetrics folds tickets into the metrics aggregate. Period is left unset.
func ComputeMetrics(tickets []domain.Ticket) domain.Metrics {
	m := domain.Metrics{
		StatusDistribution:    map[string]int64{},
		PriorityDistribution:  map[string]int64{},
		SentimentDistribution: map[string]int64{},
		SentimentShift: map[string]int64{
			"Negative -> Positive": 0,
			"Positive -> Negative": 0,
		},
		AvgFirstResponseTime: FormatDuration(0),
	}

	var resolvedMinutes int64
	var withResolution int64
	for i := range tickets {
		t := &tickets[i]
		m.TotalTickets++
		m.StatusDistribution[string(t.Status)]++
		if t.Priority != nil {
			m.PriorityDistribution[string(*t.Priority)]++
		}
		if t.Sentiment != nil {
			m.SentimentDistribution[*t.Sentiment]++
		}
		if t.Status.IsResolved() {
			m.ResolvedTickets++
		}
		if t.Priority != nil && *t.Priority == domain.TicketPriorityCritical && t.Status == domain.TicketStatusOpen {
			m.CriticalOpenTickets++
		}
		if t.ResolvedAt != nil {
			resolvedMinutes += int64(t.ResolvedAt.Sub(t.CreatedAt) / time.Minute)
			withResolution++
		}
	}

	var avg float64
	if withResolution > 0 {
		avg = float64(resolvedMinutes) / float64(withResolution)
	}
	m.AvgResolutionTime = FormatDuration(avg)
	m.ResolutionRate = ResolutionRate(m.ResolvedTickets, m.TotalTickets)
	return m
}

// ResolutionRate is resolved/total*100, or zero for an empty window.
func ResolutionRate(resolved, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(resolved) / float64(total) * 100
}

// FormatDuration renders minutes as "<n> min" below an hour and "<n>h" otherwise,
// truncating in both cases.
func FormatDuration(minutes float64) string {
	if minutes < 60 {
		return strconv.Itoa(int(minutes)) + " min"
	}
	return strconv.Itoa(int(minutes/60)) + "h"
}

// ParsePeriod defaults blank input to MONTH.
func ParsePeriod(raw string) (domain.AnalyticsPeriod, error) {
	p := domain.AnalyticsPeriod(strings.ToUpper(strings.TrimSpace(raw)))
	switch p {
	case "":
		return domain.PeriodMonth, nil
	case domain.PeriodWeek, domain.PeriodMonth, domain.PeriodThreeMonths,
		domain.PeriodQuarter, domain.PeriodSemester, domain.PeriodYear:
		return p, nil
	}
	return "", apperrors.NewValidationError("invalid period: "+raw, map[string]any{"field": "period"})
}

// PeriodStart is the exclusive lower bound of period's window ending at now.
func PeriodStart(period domain.AnalyticsPeriod, now time.Time) time.Time {
	switch period {
	case domain.PeriodWeek:
		return now.AddDate(0, 0, -7)
	case domain.PeriodThreeMonths, domain.PeriodQuarter:
		return now.AddDate(0, -3, 0)
	case domain.PeriodSemester:
		return now.AddDate(0, -6, 0)
	case domain.PeriodYear:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, -1, 0)
	}
}

// AnalyticsService serves dashboard metrics.
type AnalyticsService struct {
	aggregator TicketAggregator
	now        func() time.Time
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(aggregator TicketAggregator) *AnalyticsService {
	return &AnalyticsService{aggregator: aggregator, now: time.Now}
}

// Dashboard returns organization-wide metrics, or the caller's own when the
// caller is an agent.
func (s *AnalyticsService) Dashboard(ctx context.Context, actor *domain.User, period string) (domain.Metrics, error) {
	return s.Advanced(ctx, actor, nil, period)
}

// Advanced returns metrics narrowed to agentID when given. Agents may only ask
// for themselves.
func (s *AnalyticsService) Advanced(ctx context.Context, actor *domain.User, agentID *string, period string) (domain.Metrics, error) {
	agent, err := auth.ResolveMetricsAgent(actor, agentID)
	if err != nil {
		return domain.Metrics{}, err
	}
	p, err := ParsePeriod(period)
	if err != nil {
		return domain.Metrics{}, err
	}
	metrics, err := s.aggregator.Aggregate(ctx, actor.OrganizationID, agent, PeriodStart(p, s.now()))
	if err != nil {
		return domain.Metrics{}, err
	}
	metrics.Period = p
	return metrics, nil
}
