package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/support-desk/internal/domain"
)

func TestClassifySearch(t *testing.T) {
	tests := []struct {
		term string
		kind SearchKind
		code string
	}{
		{"", SearchNone, ""},
		{"   ", SearchNone, ""},
		{"tkt-ab12", SearchCodeFragment, "TKT-AB12"},
		{"ab12cd34", SearchExactCode, "TKT-AB12CD34"},
		{"AB12CD34", SearchExactCode, "TKT-AB12CD34"},
		{"printer", SearchText, ""},
		{"ab12cd3", SearchText, ""},
		{"ab12cd345", SearchText, ""},
	}
	for _, tt := range tests {
		got := ClassifySearch(tt.term)
		assert.Equal(t, tt.kind, got.Kind, tt.term)
		assert.Equal(t, tt.code, got.Code, tt.term)
	}
}

func TestTicketSearchMatches(t *testing.T) {
	ticket := &domain.Ticket{Code: "TKT-AB12CD34", Title: "Printer offline", Description: "Floor 3"}

	assert.True(t, ClassifySearch("").Matches(ticket))
	assert.True(t, ClassifySearch("tkt-ab1").Matches(ticket))
	assert.True(t, ClassifySearch("ab12cd34").Matches(ticket))
	assert.False(t, ClassifySearch("zz99zz99").Matches(ticket))
	assert.True(t, ClassifySearch("PRINTER").Matches(ticket))
	assert.True(t, ClassifySearch("floor").Matches(ticket))
	assert.False(t, ClassifySearch("network").Matches(ticket))
}

func TestBuildTicketWhere(t *testing.T) {
	status := domain.TicketStatusOpen
	w := buildTicketWhere(TicketFilter{
		OrganizationID: "org-1",
		Status:         &status,
		Search:         ClassifySearch("printer"),
	})
	assert.Equal(t,
		"organization_id=$1 AND status=$2 AND (LOWER(title) LIKE $3 OR LOWER(description) LIKE $3)",
		w.sql())
	assert.Equal(t, []any{"org-1", domain.TicketStatusOpen, "%printer%"}, w.args)
}

func TestBuildTicketWhereCodeSearch(t *testing.T) {
	w := buildTicketWhere(TicketFilter{OrganizationID: "org-1", Search: ClassifySearch("ab12cd34")})
	assert.Equal(t,
		"organization_id=$1 AND (code=$3 OR LOWER(title) LIKE $2 OR LOWER(description) LIKE $2)",
		w.sql())
	assert.Equal(t, []any{"org-1", "%ab12cd34%", "TKT-AB12CD34"}, w.args)

	w = buildTicketWhere(TicketFilter{OrganizationID: "org-1", Search: ClassifySearch("TKT-AB")})
	assert.Contains(t, w.sql(), "code ILIKE $3")
	assert.Equal(t, "%TKT-AB%", w.args[2])
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, "%printer%", likePattern("  Printer "))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))

	w := buildTicketWhere(TicketFilter{OrganizationID: "org-1", Search: ClassifySearch("TKT-%")})
	assert.Equal(t, `%TKT-\%%`, w.args[2])

	ticket := &domain.Ticket{Code: "TKT-AB12CD34", Title: "Printer offline", Description: "Floor 3"}
	assert.False(t, ClassifySearch("%").Matches(ticket))
	assert.True(t, ClassifySearch("100%").Matches(&domain.Ticket{Title: "CPU at 100%"}))
}

func TestUpdateEnrichmentLeavesDescription(t *testing.T) {
	assert.NotContains(t, updateEnrichmentQuery, "description")
	assert.Contains(t, updateEnrichmentQuery, "suggested_solution=$6")
}

func TestBuildTicketWhereAnalyticsWindow(t *testing.T) {
	agent := "agent-1"
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w := buildTicketWhere(TicketFilter{OrganizationID: "org-1", AgentID: &agent, CreatedAfter: &since})
	assert.Equal(t, "organization_id=$1 AND agent_id=$2 AND created_at > $3", w.sql())
}

func TestPageOrderBy(t *testing.T) {
	assert.Equal(t, "created_at DESC, id DESC", Page{Desc: true}.orderBy(ticketSortColumns))
	assert.Equal(t, "title ASC, id ASC", Page{Sort: "title"}.orderBy(ticketSortColumns))
	assert.Equal(t, "created_at ASC, id ASC", Page{Sort: "title; DROP TABLE"}.orderBy(ticketSortColumns))
	assert.Equal(t, 20, Page{}.limit())
	assert.Equal(t, 0, Page{Offset: -5}.offset())
}

func TestBuildUserAndTeamWhere(t *testing.T) {
	role := domain.RoleAgent
	w := buildUserWhere(UserFilter{OrganizationID: "org-1", Role: &role, Search: "Ana"})
	assert.Equal(t, "organization_id=$1 AND role=$2 AND (LOWER(name) LIKE $3 OR LOWER(email) LIKE $3)", w.sql())
	assert.Equal(t, "%ana%", w.args[2])

	w = buildTeamWhere(TeamFilter{OrganizationID: "org-1", Search: "ops"})
	assert.Contains(t, w.sql(), "LOWER(slug) LIKE $2")

	w = buildCategoryWhere(CategoryFilter{OrganizationID: "org-1"})
	assert.Equal(t, "organization_id=$1", w.sql())
}
