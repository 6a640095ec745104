package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/testutil"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0 min", FormatDuration(0))
	assert.Equal(t, "45 min", FormatDuration(45))
	assert.Equal(t, "59 min", FormatDuration(59.9))
	assert.Equal(t, "1h", FormatDuration(60))
	assert.Equal(t, "2h", FormatDuration(125))
	assert.Equal(t, "2h", FormatDuration(179.5))
}

func TestResolutionRate(t *testing.T) {
	assert.Equal(t, 0.0, ResolutionRate(0, 0))
	assert.InDelta(t, 30.0, ResolutionRate(3, 10), 1e-9)
	assert.Equal(t, 100.0, ResolutionRate(4, 4))
}

func TestParsePeriodAndStart(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodMonth, p)

	p, err = ParsePeriod("quarter")
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodQuarter, p)

	_, err = ParsePeriod("DECADE")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	now := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 7, 8, 12, 0, 0, 0, time.UTC), PeriodStart(domain.PeriodWeek, now))
	assert.Equal(t, time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC), PeriodStart(domain.PeriodMonth, now))
	assert.Equal(t, time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC), PeriodStart(domain.PeriodThreeMonths, now))
	assert.Equal(t, PeriodStart(domain.PeriodThreeMonths, now), PeriodStart(domain.PeriodQuarter, now))
	assert.Equal(t, time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC), PeriodStart(domain.PeriodSemester, now))
	assert.Equal(t, time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC), PeriodStart(domain.PeriodYear, now))
}

func ptr[T any](v T) *T { return &v }

func TestComputeMetrics(t *testing.T) {
	created := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{
		{Status: domain.TicketStatusResolved, Priority: ptr(domain.TicketPriorityLow), Sentiment: ptr("Neutral"),
			CreatedAt: created, ResolvedAt: ptr(created.Add(30 * time.Minute))},
		{Status: domain.TicketStatusClosed, Priority: ptr(domain.TicketPriorityHigh),
			CreatedAt: created, ResolvedAt: ptr(created.Add(60*time.Minute + 59*time.Second))},
		{Status: domain.TicketStatusOpen, Priority: ptr(domain.TicketPriorityCritical), Sentiment: ptr("Frustrated/Urgent"), CreatedAt: created},
		{Status: domain.TicketStatusInProgress, Priority: ptr(domain.TicketPriorityCritical), CreatedAt: created},
	}

	m := ComputeMetrics(tickets)
	assert.EqualValues(t, 4, m.TotalTickets)
	assert.EqualValues(t, 2, m.ResolvedTickets)
	assert.EqualValues(t, 1, m.CriticalOpenTickets)
	assert.Equal(t, 50.0, m.ResolutionRate)
	// (30 + 60) / 2 minutes, seconds truncated per ticket.
	assert.Equal(t, "45 min", m.AvgResolutionTime)
	assert.Equal(t, "0 min", m.AvgFirstResponseTime)
	assert.Equal(t, map[string]int64{"RESOLVED": 1, "CLOSED": 1, "OPEN": 1, "IN_PROGRESS": 1}, m.StatusDistribution)
	assert.Equal(t, map[string]int64{"LOW": 1, "HIGH": 1, "CRITICAL": 2}, m.PriorityDistribution)
	assert.Equal(t, map[string]int64{"Neutral": 1, "Frustrated/Urgent": 1}, m.SentimentDistribution)
	assert.Len(t, m.SentimentShift, 2)
	assert.Zero(t, m.SLACompliance)
	assert.Zero(t, m.CSAT)
}

func TestComputeMetricsEmpty(t *testing.T) {
	m := ComputeMetrics(nil)
	assert.Zero(t, m.TotalTickets)
	assert.Zero(t, m.ResolutionRate)
	assert.Equal(t, "0 min", m.AvgResolutionTime)
	assert.Empty(t, m.StatusDistribution)
	assert.NotNil(t, m.PriorityDistribution)
}

func TestAnalyticsDashboardAndAdvanced(t *testing.T) {
	store := testutil.NewStore()
	acme := seedTenant(t, store, "acme", "11222333000181")
	team := seedTeam(t, store, acme.org.ID, "support")
	agent := seedUser(t, store, acme.org.ID, domain.RoleAgent, &team.ID)
	now := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)

	put := func(status domain.TicketStatus, agentID *string, age time.Duration) {
		store.PutTicket(domain.Ticket{
			Code:           "TKT-" + age.String(),
			Status:         status,
			AgentID:        agentID,
			OrganizationID: acme.org.ID,
			CreatedAt:      now.Add(-age),
		})
	}
	put(domain.TicketStatusResolved, &agent.ID, 24*time.Hour)
	put(domain.TicketStatusOpen, &agent.ID, 48*time.Hour)
	put(domain.TicketStatusOpen, nil, 72*time.Hour)
	put(domain.TicketStatusResolved, nil, 90*24*time.Hour)

	svc := NewAnalyticsService(NewInMemoryAggregator(store.Tickets()))
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	m, err := svc.Dashboard(ctx, acme.admin, "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, m.TotalTickets)
	assert.EqualValues(t, 1, m.ResolvedTickets)
	assert.Equal(t, domain.PeriodMonth, m.Period)

	m, err = svc.Dashboard(ctx, acme.admin, "YEAR")
	require.NoError(t, err)
	assert.EqualValues(t, 4, m.TotalTickets)

	m, err = svc.Dashboard(ctx, agent, "WEEK")
	require.NoError(t, err)
	assert.EqualValues(t, 2, m.TotalTickets)
	assert.Equal(t, 50.0, m.ResolutionRate)

	m, err = svc.Advanced(ctx, acme.admin, &agent.ID, "MONTH")
	require.NoError(t, err)
	assert.EqualValues(t, 2, m.TotalTickets)

	_, err = svc.Advanced(ctx, agent, &acme.admin.ID, "MONTH")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = svc.Advanced(ctx, acme.admin, nil, "FOREVER")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}
