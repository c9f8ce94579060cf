package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/bizgrid/bizgrid-api/internal/database"
	"github.com/bizgrid/bizgrid-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrSlugTaken             = errors.New("workspace slug is already taken")
	ErrMemberNotFound        = errors.New("member not found")
	ErrWorkspaceHasCompanies = errors.New("workspace still has companies")
)

type WorkspaceService struct {
	db *database.DB
}

func NewWorkspaceService(db *database.DB) *WorkspaceService {
	return &WorkspaceService{db: db}
}

// Create provisions a workspace. The owner is recorded on the workspace row
// itself, not as a membership row; ownership is implicit everywhere.
func (s *WorkspaceService) Create(ctx context.Context, slug, name string, ownerID uuid.UUID) (*models.Workspace, error) {
	var ws models.Workspace
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO workspaces (slug, name, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, slug, name, owner_id, created_at, updated_at
	`, slug, name, ownerID).Scan(&ws.ID, &ws.Slug, &ws.Name, &ws.OwnerID, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &ws, nil
}

// GetUserWorkspaces returns workspaces the user owns or is a member of,
// with the effective role per workspace.
func (s *WorkspaceService) GetUserWorkspaces(ctx context.Context, userID uuid.UUID) ([]models.Workspace, []string, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT w.id, w.slug, w.name, w.owner_id, w.created_at, w.updated_at,
		       CASE WHEN w.owner_id = $1 THEN 'owner' ELSE wm.role END
		FROM workspaces w
		LEFT JOIN workspace_members wm ON w.id = wm.workspace_id AND wm.user_id = $1
		WHERE w.owner_id = $1 OR wm.user_id = $1
		ORDER BY w.created_at DESC
	`, userID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var workspaces []models.Workspace
	var roles []string
	for rows.Next() {
		var w models.Workspace
		var role string
		if err := rows.Scan(&w.ID, &w.Slug, &w.Name, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt, &role); err != nil {
			return nil, nil, err
		}
		workspaces = append(workspaces, w)
		roles = append(roles, role)
	}
	return workspaces, roles, rows.Err()
}

func (s *WorkspaceService) Update(ctx context.Context, workspaceID uuid.UUID, name string) (*models.Workspace, error) {
	var ws models.Workspace
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE workspaces SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, slug, name, owner_id, created_at, updated_at
	`, name, workspaceID).Scan(&ws.ID, &ws.Slug, &ws.Name, &ws.OwnerID, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// Delete removes a workspace. Blocked while companies are still linked;
// their edges and dependent records have to go first.
func (s *WorkspaceService) Delete(ctx context.Context, workspaceID uuid.UUID) error {
	var companies int
	err := s.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM workspace_companies WHERE workspace_id = $1
	`, workspaceID).Scan(&companies)
	if err != nil {
		return fmt.Errorf("failed to count companies: %w", err)
	}
	if companies > 0 {
		return ErrWorkspaceHasCompanies
	}

	_, err = s.db.Pool.Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, workspaceID)
	return err
}

func (s *WorkspaceService) GetMembers(ctx context.Context, workspaceID uuid.UUID) ([]models.WorkspaceMember, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT wm.id, wm.workspace_id, wm.user_id, wm.role, wm.permissions, wm.created_at,
		       u.id, u.email, u.name, u.email_verified, u.created_at, u.updated_at
		FROM workspace_members wm
		JOIN users u ON wm.user_id = u.id
		WHERE wm.workspace_id = $1
		ORDER BY wm.created_at
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.WorkspaceMember
	for rows.Next() {
		var member models.WorkspaceMember
		var user models.User
		if err := rows.Scan(
			&member.ID, &member.WorkspaceID, &member.UserID, &member.Role, &member.Permissions, &member.CreatedAt,
			&user.ID, &user.Email, &user.Name, &user.EmailVerified, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		member.User = &user
		members = append(members, member)
	}
	return members, rows.Err()
}

func (s *WorkspaceService) UpdateMemberRole(ctx context.Context, workspaceID, userID uuid.UUID, role string) error {
	if !models.ValidMemberRole(role) {
		return ErrInvalidRole
	}

	result, err := s.db.Pool.Exec(ctx, `
		UPDATE workspace_members SET role = $1
		WHERE workspace_id = $2 AND user_id = $3
	`, role, workspaceID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (s *WorkspaceService) RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id = $2
	`, workspaceID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// IsMember reports whether the user has a membership row or owns the
// workspace.
func (s *WorkspaceService) IsMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM workspace_members WHERE workspace_id = $1 AND user_id = $2
			UNION
			SELECT 1 FROM workspaces WHERE id = $1 AND owner_id = $2
		)
	`, workspaceID, userID).Scan(&exists)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}
	return exists, nil
}
