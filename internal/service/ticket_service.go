package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows. Every operation takes the acting
// user explicitly and scopes reads and writes to that user's organization.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	teams      repository.TeamRepository
	dispatcher events.Dispatcher
	codes      CodeGenerator
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo    repository.TicketRepository
	UserRepo      repository.UserRepository
	TeamRepo      repository.TeamRepository
	Dispatcher    events.Dispatcher
	CodeGenerator CodeGenerator
	Logger        *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    string
	Status      string
	CustomerID  *string
}

// TicketListInput describes list and count filters.
type TicketListInput struct {
	Status   string
	Priority string
	Search   string
	Page     PageRequest
}

// TicketUpdateInput is a partial update; unset fields keep their value.
type TicketUpdateInput struct {
	Title       domain.Optional[string]
	Description domain.Optional[string]
	Status      domain.Optional[string]
	Priority    domain.Optional[string]
	AgentID     domain.Optional[string]
	TeamID      domain.Optional[string]
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	codes := deps.CodeGenerator
	if codes == nil {
		codes = RandomTicketCode
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		teams:      deps.TeamRepo,
		dispatcher: deps.Dispatcher,
		codes:      codes,
		logger:     logger,
		now:        time.Now,
	}
}

// Create persists a new ticket and announces it for enrichment. The returned
// ticket is the row as inserted, before any enrichment.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if err := auth.EnsureTicketAccess(actor); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description are required", nil)
	}

	status := domain.TicketStatusOpen
	if strings.TrimSpace(input.Status) != "" {
		parsed, ok := domain.ParseTicketStatus(input.Status)
		if !ok {
			return nil, apperrors.NewValidationError("invalid status: "+input.Status, map[string]any{"field": "status"})
		}
		status = parsed
	}

	ticket := &domain.Ticket{
		Title:          title,
		Description:    description,
		Status:         status,
		OrganizationID: actor.OrganizationID,
	}
	if strings.TrimSpace(input.Priority) != "" {
		p, ok := domain.ParseTicketPriority(input.Priority)
		if !ok {
			return nil, apperrors.NewValidationError("invalid priority: "+input.Priority, map[string]any{"field": "priority"})
		}
		ticket.Priority = &p
	}
	if status.IsResolved() {
		now := s.now().UTC()
		ticket.ResolvedAt = &now
	}

	customerID, err := s.resolveCustomer(ctx, actor, input.CustomerID)
	if err != nil {
		return nil, err
	}
	ticket.CustomerID = customerID

	if err := s.insertWithUniqueCode(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewEvent(events.EventTicketCreated, ticket, actor, events.TicketCreatedPayload{
		Code:     ticket.Code,
		Priority: ticket.Priority,
		Title:    ticket.Title,
	}))
	return ticket, nil
}

func (s *TicketService) resolveCustomer(ctx context.Context, actor *domain.User, requested *string) (*string, error) {
	if requested == nil || strings.TrimSpace(*requested) == "" {
		if actor.Role == domain.RoleCustomer {
			id := actor.ID
			return &id, nil
		}
		return nil, nil
	}
	customer, err := s.users.GetByID(ctx, strings.TrimSpace(*requested))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"id": *requested})
		}
		return nil, err
	}
	if err := auth.EnsureSameTenant(actor, customer.OrganizationID); err != nil {
		return nil, err
	}
	return &customer.ID, nil
}

// insertWithUniqueCode draws codes until one is free. A code that is taken by the
// time the insert runs counts as a collision as well.
func (s *TicketService) insertWithUniqueCode(ctx context.Context, ticket *domain.Ticket) error {
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.codes()
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		exists, err := s.tickets.ExistsByCode(ctx, code)
		if err != nil {
			return err
		}
		if exists {
			s.logger.Warn("ticket code collision", zap.String("code", code), zap.Int("attempt", attempt))
			continue
		}

		ticket.Code = code
		err = s.tickets.Create(ctx, ticket)
		if err == nil {
			return nil
		}
		if apperrors.IsUniqueViolation(err, "tickets_code_key") {
			s.logger.Warn("ticket code taken on insert", zap.String("code", code), zap.Int("attempt", attempt))
			continue
		}
		return err
	}
	ticket.Code = ""
	return apperrors.NewInternalError(errors.New("could not allocate a unique ticket code"))
}

// List returns one page of the organization's tickets.
func (s *TicketService) List(ctx context.Context, actor *domain.User, input TicketListInput) (*PageResult[domain.Ticket], error) {
	filter, err := s.buildFilter(actor, input)
	if err != nil {
		return nil, err
	}
	filter.Page = input.Page.toRepository()

	items, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.tickets.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := input.Page.normalized()
	if items == nil {
		items = []domain.Ticket{}
	}
	return &PageResult[domain.Ticket]{Items: items, Page: page.Page, Size: page.Size, Total: total}, nil
}

// Count applies the List predicates without pagination.
func (s *TicketService) Count(ctx context.Context, actor *domain.User, input TicketListInput) (int64, error) {
	filter, err := s.buildFilter(actor, input)
	if err != nil {
		return 0, err
	}
	return s.tickets.Count(ctx, filter)
}

func (s *TicketService) buildFilter(actor *domain.User, input TicketListInput) (repository.TicketFilter, error) {
	if err := auth.EnsureTicketAccess(actor); err != nil {
		return repository.TicketFilter{}, err
	}
	filter := repository.TicketFilter{
		OrganizationID: actor.OrganizationID,
		Search:         repository.ClassifySearch(input.Search),
	}
	if strings.TrimSpace(input.Status) != "" {
		status, ok := domain.ParseTicketStatus(input.Status)
		if !ok {
			return filter, apperrors.NewValidationError("invalid status: "+input.Status, map[string]any{"field": "status"})
		}
		filter.Status = &status
	}
	if strings.TrimSpace(input.Priority) != "" {
		priority, ok := domain.ParseTicketPriority(input.Priority)
		if !ok {
			return filter, apperrors.NewValidationError("invalid priority: "+input.Priority, map[string]any{"field": "priority"})
		}
		filter.Priority = &priority
	}
	return filter, nil
}

// Get loads one ticket of the actor's organization.
func (s *TicketService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Ticket, error) {
	if err := auth.EnsureTicketAccess(actor); err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, err
	}
	if err := auth.EnsureSameTenant(actor, ticket.OrganizationID); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Update applies a partial update. Any status may move to any other status;
// resolved_at follows the status in and out of RESOLVED/CLOSED.
func (s *TicketService) Update(ctx context.Context, actor *domain.User, id string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	oldStatus := ticket.Status

	if input.Title.Set {
		if input.Title.Value == nil || strings.TrimSpace(*input.Title.Value) == "" {
			return nil, apperrors.NewValidationError("title cannot be empty", map[string]any{"field": "title"})
		}
		ticket.Title = strings.TrimSpace(*input.Title.Value)
	}
	if input.Description.Set {
		if input.Description.Value == nil || strings.TrimSpace(*input.Description.Value) == "" {
			return nil, apperrors.NewValidationError("description cannot be empty", map[string]any{"field": "description"})
		}
		ticket.Description = strings.TrimSpace(*input.Description.Value)
	}
	if input.Status.Set {
		if input.Status.Value == nil {
			return nil, apperrors.NewValidationError("status cannot be null", map[string]any{"field": "status"})
		}
		status, ok := domain.ParseTicketStatus(*input.Status.Value)
		if !ok {
			return nil, apperrors.NewValidationError("invalid status: "+*input.Status.Value, map[string]any{"field": "status"})
		}
		ticket.Status = status
	}
	if input.Priority.Set {
		if input.Priority.Value == nil {
			ticket.Priority = nil
		} else {
			priority, ok := domain.ParseTicketPriority(*input.Priority.Value)
			if !ok {
				return nil, apperrors.NewValidationError("invalid priority: "+*input.Priority.Value, map[string]any{"field": "priority"})
			}
			ticket.Priority = &priority
		}
	}
	if input.AgentID.Set && input.AgentID.Value != nil {
		if err := s.ensureAssignableAgent(ctx, actor, *input.AgentID.Value); err != nil {
			return nil, err
		}
	}
	input.AgentID.Apply(&ticket.AgentID)
	if input.TeamID.Set && input.TeamID.Value != nil {
		if err := s.ensureTeamInTenant(ctx, actor, *input.TeamID.Value); err != nil {
			return nil, err
		}
	}
	input.TeamID.Apply(&ticket.TeamID)

	switch {
	case ticket.Status.IsResolved() && ticket.ResolvedAt == nil:
		now := s.now().UTC()
		ticket.ResolvedAt = &now
	case !ticket.Status.IsResolved():
		ticket.ResolvedAt = nil
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, err
	}

	s.publishEvent(ctx, events.NewEvent(events.EventTicketUpdated, ticket, actor, events.TicketUpdatedPayload{
		OldStatus: oldStatus,
		NewStatus: ticket.Status,
	}))
	return ticket, nil
}

func (s *TicketService) ensureAssignableAgent(ctx context.Context, actor *domain.User, agentID string) error {
	agent, err := s.users.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("agent", map[string]any{"id": agentID})
		}
		return err
	}
	if err := auth.EnsureSameTenant(actor, agent.OrganizationID); err != nil {
		return err
	}
	if agent.Role == domain.RoleCustomer {
		return apperrors.NewValidationError("customers cannot be assigned to tickets", map[string]any{"field": "agentId"})
	}
	return nil
}

func (s *TicketService) ensureTeamInTenant(ctx context.Context, actor *domain.User, teamID string) error {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("team", map[string]any{"id": teamID})
		}
		return err
	}
	return auth.EnsureSameTenant(actor, team.OrganizationID)
}

// Delete removes a ticket. Only admins may delete.
func (s *TicketService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if err := auth.EnsureRole(actor, domain.RoleAdmin); err != nil {
		return err
	}
	ticket, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return err
	}
	s.publishEvent(ctx, events.NewEvent(events.EventTicketDeleted, ticket, actor, nil))
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish reported errors",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}
