package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bizgrid/bizgrid-api/internal/database"
	"github.com/bizgrid/bizgrid-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrCompanyNotFound   = errors.New("company not found")
)

var slugStrip = regexp.MustCompile(`[^a-z0-9\s]+`)

// DeriveCompanySlug computes the loose-lookup slug for a company name:
// lowercase, strip everything that is not alphanumeric or whitespace, take
// the first whitespace-delimited token. Companies have no user-chosen slug;
// this derived value is the only way to address them by name.
func DeriveCompanySlug(name string) string {
	cleaned := slugStrip.ReplaceAllString(strings.ToLower(name), "")
	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// ResolverService turns loose workspace and company references (canonical ids
// or slugs) into canonical records. It is read-only; malformed input simply
// fails to match.
type ResolverService struct {
	db *database.DB
}

func NewResolverService(db *database.DB) *ResolverService {
	return &ResolverService{db: db}
}

func (s *ResolverService) ResolveWorkspace(ctx context.Context, loose string) (*models.Workspace, error) {
	if id, err := uuid.Parse(loose); err == nil {
		ws, err := s.workspaceBy(ctx, `id = $1`, id)
		if err == nil {
			return ws, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to resolve workspace by id: %w", err)
		}
	}

	ws, err := s.workspaceBy(ctx, `slug = $1`, loose)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace by slug: %w", err)
	}
	return ws, nil
}

func (s *ResolverService) workspaceBy(ctx context.Context, where string, arg any) (*models.Workspace, error) {
	var ws models.Workspace
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, slug, name, owner_id, created_at, updated_at
		FROM workspaces WHERE `+where,
		arg).Scan(&ws.ID, &ws.Slug, &ws.Name, &ws.OwnerID, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// ResolveCompany resolves a loose company reference within a workspace. An
// id reference must be linked to the workspace through workspace_companies;
// otherwise the workspace's companies are scanned for a slug match, stored
// slug first, derived slug as fallback for rows predating the slug column.
func (s *ResolverService) ResolveCompany(ctx context.Context, loose string, ws *models.Workspace) (*models.Company, error) {
	if id, err := uuid.Parse(loose); err == nil {
		var company models.Company
		err := s.db.Pool.QueryRow(ctx, `
			SELECT c.id, c.name, c.slug, c.created_at, c.updated_at
			FROM companies c
			JOIN workspace_companies wc ON wc.company_id = c.id
			WHERE wc.workspace_id = $1 AND c.id = $2
		`, ws.ID, id).Scan(&company.ID, &company.Name, &company.Slug, &company.CreatedAt, &company.UpdatedAt)
		if err == nil {
			return &company, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to resolve company by id: %w", err)
		}
	}

	companies, err := s.workspaceCompanies(ctx, ws.ID)
	if err != nil {
		return nil, err
	}

	want := strings.ToLower(loose)
	for i := range companies {
		slug := ""
		if companies[i].Slug != nil {
			slug = *companies[i].Slug
		}
		if slug == "" {
			slug = DeriveCompanySlug(companies[i].Name)
		}
		if slug != "" && strings.EqualFold(slug, want) {
			return &companies[i], nil
		}
	}
	return nil, ErrCompanyNotFound
}

func (s *ResolverService) workspaceCompanies(ctx context.Context, workspaceID uuid.UUID) ([]models.Company, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT c.id, c.name, c.slug, c.created_at, c.updated_at
		FROM companies c
		JOIN workspace_companies wc ON wc.company_id = c.id
		WHERE wc.workspace_id = $1
		ORDER BY c.created_at
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace companies: %w", err)
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
