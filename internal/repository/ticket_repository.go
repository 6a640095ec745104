package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TicketFilter captures list and count parameters. OrganizationID is mandatory.
type TicketFilter struct {
	OrganizationID string
	Status         *domain.TicketStatus
	Priority       *domain.TicketPriority
	AgentID        *string
	CreatedAfter   *time.Time
	Search         TicketSearch
	Page           Page
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	UpdateEnrichment(ctx context.Context, id string, e domain.Enrichment) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Count(ctx context.Context, filter TicketFilter) (int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, code, title, description, status, priority, category, sentiment, diagnosis,
        suggested_solution, customer_id, agent_id, team_id, organization_id, resolved_at, created_at, updated_at`

var ticketSortColumns = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"updated_at": "updated_at",
	"updatedAt":  "updated_at",
	"title":      "title",
	"status":     "status",
	"priority":   "priority",
	"code":       "code",
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (code, title, description, status, priority, category, sentiment, diagnosis,
            suggested_solution, customer_id, agent_id, team_id, organization_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Code,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.Sentiment,
		ticket.Diagnosis,
		ticket.SuggestedSolution,
		ticket.CustomerID,
		ticket.AgentID,
		ticket.TeamID,
		ticket.OrganizationID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4, category=$5, sentiment=$6,
            diagnosis=$7, suggested_solution=$8, customer_id=$9, agent_id=$10, team_id=$11, resolved_at=$12,
            updated_at=NOW()
        WHERE id=$13
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.Sentiment,
		ticket.Diagnosis,
		ticket.SuggestedSolution,
		ticket.CustomerID,
		ticket.AgentID,
		ticket.TeamID,
		ticket.ResolvedAt,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
	return err
}

// updateEnrichmentQuery touches only the AI-owned columns. Description, status,
// assignment and customer keep whatever value is stored.
const updateEnrichmentQuery = `
        UPDATE tickets SET title=$1, priority=$2, category=$3, sentiment=$4,
            diagnosis=$5, suggested_solution=$6, updated_at=NOW()
        WHERE id=$7`

// UpdateEnrichment persists the enrichment fields of one ticket.
func (r *ticketRepository) UpdateEnrichment(ctx context.Context, id string, e domain.Enrichment) error {
	cmd, err := r.pool.Exec(ctx, updateEnrichmentQuery,
		e.Title,
		e.Priority,
		e.Category,
		e.Sentiment,
		e.Diagnosis,
		e.SuggestedSolution,
		id,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE code=$1)`, code).Scan(&exists)
	return exists, err
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	where := buildTicketWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		ticketColumns, where.sql(), filter.Page.orderBy(ticketSortColumns), filter.Page.limit(), filter.Page.offset())

	rows, err := r.pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Count(ctx context.Context, filter TicketFilter) (int64, error) {
	where := buildTicketWhere(filter)
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE `+where.sql(), where.args...).Scan(&total)
	return total, err
}

// buildTicketWhere translates a filter into SQL. Categories are AND-ed; the search
// alternatives are OR-ed inside one parenthesized group.
func buildTicketWhere(filter TicketFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("organization_id=" + w.arg(filter.OrganizationID))

	if filter.Status != nil {
		w.add("status=" + w.arg(*filter.Status))
	}
	if filter.Priority != nil {
		w.add("priority=" + w.arg(*filter.Priority))
	}
	if filter.AgentID != nil {
		w.add("agent_id=" + w.arg(*filter.AgentID))
	}
	if filter.CreatedAfter != nil {
		w.add("created_at > " + w.arg(*filter.CreatedAfter))
	}

	search := filter.Search
	if search.Kind == SearchNone {
		return w
	}
	p := w.arg(likePattern(search.Term))
	text := fmt.Sprintf("LOWER(title) LIKE %s OR LOWER(description) LIKE %s", p, p)
	switch search.Kind {
	case SearchCodeFragment:
		w.add(fmt.Sprintf("(code ILIKE %s OR %s)", w.arg("%"+likeEscaper.Replace(search.Code)+"%"), text))
	case SearchExactCode:
		w.add(fmt.Sprintf("(code=%s OR %s)", w.arg(search.Code), text))
	default:
		w.add("(" + text + ")")
	}
	return w
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Code,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Category,
		&ticket.Sentiment,
		&ticket.Diagnosis,
		&ticket.SuggestedSolution,
		&ticket.CustomerID,
		&ticket.AgentID,
		&ticket.TeamID,
		&ticket.OrganizationID,
		&ticket.ResolvedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
