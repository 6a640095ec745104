package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// OrganizationRepository persists tenants.
type OrganizationRepository interface {
	CreateWithAdmin(ctx context.Context, org *domain.Organization, admin *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
}

type organizationRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepository constructs repository.
func NewOrganizationRepository(pool *pgxpool.Pool) OrganizationRepository {
	return &organizationRepository{pool: pool}
}

// CreateWithAdmin inserts the organization and its first admin in one transaction.
// Either both rows exist afterwards or neither does.
func (r *organizationRepository) CreateWithAdmin(ctx context.Context, org *domain.Organization, admin *domain.User) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const orgQuery = `
        INSERT INTO organizations (name, slug, document_type, tax_id)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, orgQuery, org.Name, org.Slug, org.DocumentType, org.TaxID).
		Scan(&org.ID, &org.CreatedAt); err != nil {
		return err
	}

	admin.OrganizationID = org.ID
	if err := insertUser(ctx, tx, admin); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	const query = `
        SELECT id, name, slug, document_type, tax_id, created_at
        FROM organizations WHERE id=$1`
	var org domain.Organization
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.Slug,
		&org.DocumentType,
		&org.TaxID,
		&org.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &org, nil
}
