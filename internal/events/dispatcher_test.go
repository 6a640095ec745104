package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
)

func TestDispatcherDeliversToAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())
	var calls []string

	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.TicketID)
		return errors.New("boom")
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		panic("bad handler")
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "third:"+e.TicketID)
		return nil
	})
	d.Subscribe(EventTicketDeleted, func(_ context.Context, e Event) error {
		calls = append(calls, "deleted")
		return nil
	})

	ticket := &domain.Ticket{ID: "t-1", OrganizationID: "org-1"}
	actor := &domain.User{ID: "u-1", Role: domain.RoleCustomer}
	err := d.Publish(context.Background(), NewEvent(EventTicketCreated, ticket, actor, nil))

	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"first:t-1", "third:t-1"}, calls)
}

func TestNewEvent(t *testing.T) {
	ticket := &domain.Ticket{ID: "t-1", OrganizationID: "org-1"}
	e := NewEvent(EventTicketUpdated, ticket, &domain.User{ID: "u-1", Role: domain.RoleAdmin}, nil)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "org-1", e.OrganizationID)
	assert.Equal(t, domain.RoleAdmin, e.Actor.Role)
	assert.False(t, e.Timestamp.IsZero())
}
