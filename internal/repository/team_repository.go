package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TeamFilter narrows team listings to one organization.
type TeamFilter struct {
	OrganizationID string
	Search         string
	Page           Page
}

// TeamRepository manages persistence for teams.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	Update(ctx context.Context, team *domain.Team) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	List(ctx context.Context, filter TeamFilter) ([]domain.Team, error)
	Count(ctx context.Context, filter TeamFilter) (int64, error)
}

type teamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository constructs repository.
func NewTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &teamRepository{pool: pool}
}

const teamColumns = `id, name, display_name, slug, description, organization_id, created_at, updated_at`

var teamSortColumns = map[string]string{
	"created_at":  "created_at",
	"createdAt":   "created_at",
	"name":        "name",
	"displayName": "display_name",
	"slug":        "slug",
}

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	const query = `
        INSERT INTO teams (name, display_name, slug, description, organization_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		team.Name,
		team.DisplayName,
		team.Slug,
		team.Description,
		team.OrganizationID,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
}

// Update leaves slug and organization_id untouched.
func (r *teamRepository) Update(ctx context.Context, team *domain.Team) error {
	const query = `
        UPDATE teams SET name=$1, display_name=$2, description=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		team.Name,
		team.DisplayName,
		team.Description,
		team.ID,
	).Scan(&team.UpdatedAt)
}

func (r *teamRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	return scanTeam(r.pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id=$1`, id))
}

func (r *teamRepository) List(ctx context.Context, filter TeamFilter) ([]domain.Team, error) {
	where := buildTeamWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM teams WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		teamColumns, where.sql(), filter.Page.orderBy(teamSortColumns), filter.Page.limit(), filter.Page.offset())
	rows, err := r.pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *team)
	}
	return result, rows.Err()
}

func (r *teamRepository) Count(ctx context.Context, filter TeamFilter) (int64, error) {
	where := buildTeamWhere(filter)
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM teams WHERE `+where.sql(), where.args...).Scan(&total)
	return total, err
}

func buildTeamWhere(filter TeamFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("organization_id=" + w.arg(filter.OrganizationID))
	if filter.Search != "" {
		p := w.arg(likePattern(filter.Search))
		w.add(fmt.Sprintf("(LOWER(name) LIKE %s OR LOWER(display_name) LIKE %s OR LOWER(slug) LIKE %s)", p, p, p))
	}
	return w
}

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var team domain.Team
	if err := row.Scan(
		&team.ID,
		&team.Name,
		&team.DisplayName,
		&team.Slug,
		&team.Description,
		&team.OrganizationID,
		&team.CreatedAt,
		&team.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &team, nil
}
