package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"agent", "AGENT", "ROLE_AGENT", " role_agent "} {
		role, ok := ParseRole(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, RoleAgent, role)
	}
	_, ok := ParseRole("SUPERUSER")
	assert.False(t, ok)
}

func TestOptionalApply(t *testing.T) {
	team := "team-1"
	current := &team

	Optional[string]{}.Apply(&current)
	assert.Equal(t, "team-1", *current, "absent leaves value untouched")

	Some("team-2").Apply(&current)
	assert.Equal(t, "team-2", *current)

	Null[string]().Apply(&current)
	assert.Nil(t, current)
}

func TestTicketStatusResolved(t *testing.T) {
	assert.True(t, TicketStatusResolved.IsResolved())
	assert.True(t, TicketStatusClosed.IsResolved())
	assert.False(t, TicketStatusPending.IsResolved())

	p, ok := ParseTicketPriority("critical")
	assert.True(t, ok)
	assert.Equal(t, TicketPriorityCritical, p)
	_, ok = ParseTicketPriority("URGENT")
	assert.False(t, ok)
}

func TestOptionalUnmarshalJSON(t *testing.T) {
	var body struct {
		Title    Optional[string] `json:"title"`
		Priority Optional[string] `json:"priority"`
		AgentID  Optional[string] `json:"agentId"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"title":"New","priority":null}`), &body))

	assert.True(t, body.Title.Set)
	assert.Equal(t, "New", *body.Title.Value)
	assert.True(t, body.Priority.Set)
	assert.Nil(t, body.Priority.Value)
	assert.False(t, body.AgentID.Set)

	assert.Error(t, json.Unmarshal([]byte(`{"title":42}`), &body))
}
