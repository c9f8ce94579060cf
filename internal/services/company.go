package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/bizgrid/bizgrid-api/internal/database"
	"github.com/bizgrid/bizgrid-api/internal/models"
	"github.com/google/uuid"
)

var ErrCompanyHasEntities = errors.New("company still has business entities")

type CompanyService struct {
	db *database.DB
}

func NewCompanyService(db *database.DB) *CompanyService {
	return &CompanyService{db: db}
}

// Create inserts the company and its workspace edge in one transaction. The
// derived slug is cached at creation time; it is append-only and never
// recomputed on rename, so loose references stay stable.
func (s *CompanyService) Create(ctx context.Context, workspaceID uuid.UUID, name string) (*models.Company, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	slug := DeriveCompanySlug(name)
	var slugArg *string
	if slug != "" {
		slugArg = &slug
	}

	var company models.Company
	err = tx.QueryRow(ctx, `
		INSERT INTO companies (name, slug)
		VALUES ($1, $2)
		RETURNING id, name, slug, created_at, updated_at
	`, name, slugArg).Scan(&company.ID, &company.Name, &company.Slug, &company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO workspace_companies (workspace_id, company_id)
		VALUES ($1, $2)
	`, workspaceID, company.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to link company to workspace: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &company, nil
}

func (s *CompanyService) List(ctx context.Context, workspaceID uuid.UUID) ([]models.Company, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT c.id, c.name, c.slug, c.created_at, c.updated_at
		FROM companies c
		JOIN workspace_companies wc ON wc.company_id = c.id
		WHERE wc.workspace_id = $1
		ORDER BY c.created_at
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (s *CompanyService) Update(ctx context.Context, companyID uuid.UUID, name string) (*models.Company, error) {
	var company models.Company
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE companies SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, name, slug, created_at, updated_at
	`, name, companyID).Scan(&company.ID, &company.Name, &company.Slug, &company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// Delete removes a company and its workspace edge. Blocked while the company
// still has live business entities; the edge goes before the company row
// because the workspace owns the association.
func (s *CompanyService) Delete(ctx context.Context, workspaceID, companyID uuid.UUID) error {
	var entities int
	err := s.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM business_entities
		WHERE company_id = $1 AND deleted_at IS NULL
	`, companyID).Scan(&entities)
	if err != nil {
		return fmt.Errorf("failed to count entities: %w", err)
	}
	if entities > 0 {
		return ErrCompanyHasEntities
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		DELETE FROM workspace_companies WHERE workspace_id = $1 AND company_id = $2
	`, workspaceID, companyID)
	if err != nil {
		return fmt.Errorf("failed to unlink company: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM companies WHERE id = $1`, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}

	return tx.Commit(ctx)
}
