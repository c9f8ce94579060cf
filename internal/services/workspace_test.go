package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bizgrid/bizgrid-api/internal/database"
	"github.com/bizgrid/bizgrid-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWorkspaceService(t *testing.T) (*WorkspaceService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewWorkspaceService(db), mock
}

func TestWorkspaceService_Create(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	ownerID := uuid.New()
	workspaceID := uuid.New()
	now := time.Now()

	// Single insert, no membership row: the owner is implicit.
	mock.ExpectQuery(`INSERT INTO workspaces \(slug, name, owner_id\)`).
		WithArgs("acme", "Acme", ownerID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "slug", "name", "owner_id", "created_at", "updated_at"}).
			AddRow(workspaceID, "acme", "Acme", ownerID, now, now))

	ws, err := svc.Create(context.Background(), "acme", "Acme", ownerID)

	require.NoError(t, err)
	assert.Equal(t, workspaceID, ws.ID)
	assert.Equal(t, "acme", ws.Slug)
	assert.Equal(t, ownerID, ws.OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_Create_SlugTaken(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	ownerID := uuid.New()

	mock.ExpectQuery(`INSERT INTO workspaces`).
		WithArgs("acme", "Acme", ownerID).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := svc.Create(context.Background(), "acme", "Acme", ownerID)

	assert.True(t, errors.Is(err, ErrSlugTaken))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_GetUserWorkspaces(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	userID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "slug", "name", "owner_id", "created_at", "updated_at", "role"}).
		AddRow(uuid.New(), "mine", "Mine", userID, now, now, "owner").
		AddRow(uuid.New(), "other", "Other", uuid.New(), now, now, "viewer")

	mock.ExpectQuery(`SELECT .+ FROM workspaces w\s+LEFT JOIN workspace_members`).
		WithArgs(userID).
		WillReturnRows(rows)

	workspaces, roles, err := svc.GetUserWorkspaces(context.Background(), userID)

	require.NoError(t, err)
	assert.Len(t, workspaces, 2)
	assert.Equal(t, []string{"owner", "viewer"}, roles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_Delete_BlockedByCompanies(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	workspaceID := uuid.New()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM workspace_companies`).
		WithArgs(workspaceID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	err := svc.Delete(context.Background(), workspaceID)

	assert.True(t, errors.Is(err, ErrWorkspaceHasCompanies))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_Delete(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	workspaceID := uuid.New()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM workspace_companies`).
		WithArgs(workspaceID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`DELETE FROM workspaces WHERE id`).
		WithArgs(workspaceID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := svc.Delete(context.Background(), workspaceID)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_UpdateMemberRole_InvalidRole(t *testing.T) {
	svc, mock := setupWorkspaceService(t)

	err := svc.UpdateMemberRole(context.Background(), uuid.New(), uuid.New(), "superuser")

	assert.True(t, errors.Is(err, ErrInvalidRole))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// "owner" is not a grantable membership role; ownership lives on the
// workspace row.
func TestWorkspaceService_UpdateMemberRole_OwnerNotGrantable(t *testing.T) {
	svc, mock := setupWorkspaceService(t)

	err := svc.UpdateMemberRole(context.Background(), uuid.New(), uuid.New(), models.RoleOwner)

	assert.True(t, errors.Is(err, ErrInvalidRole))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_UpdateMemberRole(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	workspaceID := uuid.New()
	userID := uuid.New()

	mock.ExpectExec(`UPDATE workspace_members SET role`).
		WithArgs(models.RoleAdmin, workspaceID, userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.UpdateMemberRole(context.Background(), workspaceID, userID, models.RoleAdmin)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_RemoveMember_NotFound(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	workspaceID := uuid.New()
	userID := uuid.New()

	mock.ExpectExec(`DELETE FROM workspace_members`).
		WithArgs(workspaceID, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := svc.RemoveMember(context.Background(), workspaceID, userID)

	assert.True(t, errors.Is(err, ErrMemberNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
