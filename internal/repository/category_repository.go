package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CategoryFilter narrows category listings to one organization.
type CategoryFilter struct {
	OrganizationID string
	Search         string
	Page           Page
}

// CategoryRepository manages ticket categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context, filter CategoryFilter) ([]domain.Category, error)
	Count(ctx context.Context, filter CategoryFilter) (int64, error)
	ListNames(ctx context.Context, organizationID string) ([]string, error)
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository constructs repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

const categoryColumns = `id, name, description, organization_id, created_at`

var categorySortColumns = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"name":       "name",
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	const query = `
        INSERT INTO categories (name, description, organization_id)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		category.Name,
		category.Description,
		category.OrganizationID,
	).Scan(&category.ID, &category.CreatedAt)
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE categories SET name=$1, description=$2 WHERE id=$3`,
		category.Name, category.Description, category.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	err := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.OrganizationID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context, filter CategoryFilter) ([]domain.Category, error) {
	where := buildCategoryWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		categoryColumns, where.sql(), filter.Page.orderBy(categorySortColumns), filter.Page.limit(), filter.Page.offset())
	rows, err := r.pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.OrganizationID, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *categoryRepository) Count(ctx context.Context, filter CategoryFilter) (int64, error) {
	where := buildCategoryWhere(filter)
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories WHERE `+where.sql(), where.args...).Scan(&total)
	return total, err
}

// ListNames returns every category name of the organization, alphabetically.
func (r *categoryRepository) ListNames(ctx context.Context, organizationID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM categories WHERE organization_id=$1 ORDER BY name`, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func buildCategoryWhere(filter CategoryFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("organization_id=" + w.arg(filter.OrganizationID))
	if filter.Search != "" {
		p := w.arg(likePattern(filter.Search))
		w.add(fmt.Sprintf("(LOWER(name) LIKE %s OR LOWER(description) LIKE %s)", p, p))
	}
	return w
}
