package integration

import (
	"context"
	"testing"
	"time"

	"github.com/bizgrid/bizgrid-api/internal/config"
	"github.com/bizgrid/bizgrid-api/internal/models"
	"github.com/bizgrid/bizgrid-api/internal/services"
	"github.com/bizgrid/bizgrid-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInvitationService(tdb *testutil.TestDB, expiry time.Duration) (*services.InvitationService, *services.UserService, *services.AccessService) {
	users := services.NewUserService(tdb.DB)
	access := services.NewAccessService(tdb.DB)
	email := services.NewEmailService(config.SMTPConfig{})
	invitations := services.NewInvitationService(tdb.DB, users, access, email, "http://localhost:3000", expiry)
	return invitations, users, access
}

// Full company-scoped flow: invite, accept as a brand-new user, and end up
// with a membership confined to the invited company.
func TestInvitationService_Integration_CompanyScopedFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	invitations, users, access := newInvitationService(tdb, 7*24*time.Hour)
	ctx := context.Background()

	owner := fixtures.CreateUser(t)
	ws := fixtures.CreateWorkspace(t, owner)
	companyA := fixtures.CreateCompany(t, ws)
	companyB := fixtures.CreateCompany(t, ws)

	inv, emailSent, err := invitations.Invite(ctx, owner, ws, companyA, "newhire@example.com", models.RoleMember)
	require.NoError(t, err)
	assert.False(t, emailSent, "SMTP is unconfigured in tests")
	assert.Equal(t, models.InvitationTypeCompany, inv.Type)
	require.NotNil(t, inv.CompanyID)
	assert.Equal(t, companyA.ID, *inv.CompanyID)
	assert.Equal(t, models.InvitationStatusPending, inv.Status)

	result, err := invitations.Accept(ctx, inv.Token, "New Hire", "password123")
	require.NoError(t, err)
	assert.True(t, result.CreatedUser)
	assert.Equal(t, models.InvitationStatusAccepted, result.Invitation.Status)

	user, err := users.GetByEmail(ctx, "newhire@example.com")
	require.NoError(t, err)
	assert.True(t, user.EmailVerified, "accepting the invitation verifies the account")

	// The membership is confined to company A.
	got, err := access.Evaluate(ctx, user.ID, ws, companyA)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, got.Role)
	require.NotNil(t, got.Scope.RestrictedToCompany)
	assert.Equal(t, companyA.ID, *got.Scope.RestrictedToCompany)

	_, err = access.Evaluate(ctx, user.ID, ws, companyB)
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestInvitationService_Integration_WorkspaceScopedExistingUser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	invitations, _, access := newInvitationService(tdb, 7*24*time.Hour)
	ctx := context.Background()

	owner := fixtures.CreateUser(t)
	invitee := fixtures.CreateUser(t, testutil.WithEmail("existing@example.com"))
	ws := fixtures.CreateWorkspace(t, owner)

	inv, _, err := invitations.Invite(ctx, owner, ws, nil, "existing@example.com", models.RoleAdmin)
	require.NoError(t, err)

	result, err := invitations.Accept(ctx, inv.Token, "", "")
	require.NoError(t, err)
	assert.False(t, result.CreatedUser)
	assert.Equal(t, invitee.ID, result.User.ID)

	got, err := access.Evaluate(ctx, invitee.ID, ws, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.True(t, got.Scope.Unrestricted())
}

func TestInvitationService_Integration_DuplicatePending(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	invitations, _, _ := newInvitationService(tdb, 7*24*time.Hour)
	ctx := context.Background()

	owner := fixtures.CreateUser(t)
	ws := fixtures.CreateWorkspace(t, owner)
	company := fixtures.CreateCompany(t, ws)

	_, _, err := invitations.Invite(ctx, owner, ws, nil, "dup@example.com", models.RoleMember)
	require.NoError(t, err)

	_, _, err = invitations.Invite(ctx, owner, ws, nil, "dup@example.com", models.RoleMember)
	assert.ErrorIs(t, err, services.ErrInvitationPending)

	// Same email but a different scope is a distinct invitation.
	_, _, err = invitations.Invite(ctx, owner, ws, company, "dup@example.com", models.RoleMember)
	require.NoError(t, err)
}

func TestInvitationService_Integration_NonAdminCannotInvite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	invitations, _, _ := newInvitationService(tdb, 7*24*time.Hour)
	ctx := context.Background()

	owner := fixtures.CreateUser(t)
	member := fixtures.CreateUser(t)
	ws := fixtures.CreateWorkspace(t, owner)
	fixtures.AddMember(t, ws, member, models.RoleMember, nil)

	_, _, err := invitations.Invite(ctx, member, ws, nil, "someone@example.com", models.RoleMember)
	assert.ErrorIs(t, err, services.ErrForbidden)
}

// Expiry is detected lazily at accept time and the row transitions to
// expired so the token cannot be retried.
func TestInvitationService_Integration_AcceptExpired(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	invitations, _, _ := newInvitationService(tdb, -1*time.Hour)
	ctx := context.Background()

	owner := fixtures.CreateUser(t)
	ws := fixtures.CreateWorkspace(t, owner)

	inv, _, err := invitations.Invite(ctx, owner, ws, nil, "late@example.com", models.RoleMember)
	require.NoError(t, err)

	_, err = invitations.Accept(ctx, inv.Token, "Late", "password123")
	assert.ErrorIs(t, err, services.ErrInvitationExpired)

	reloaded, err := invitations.GetByToken(ctx, inv.Token)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusExpired, reloaded.Status)

	_, err = invitations.Accept(ctx, inv.Token, "Late", "password123")
	assert.ErrorIs(t, err, services.ErrInvitationNotFound)
}

func TestInvitationService_Integration_AcceptAlreadyMember(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	invitations, _, _ := newInvitationService(tdb, 7*24*time.Hour)
	ctx := context.Background()

	owner := fixtures.CreateUser(t)
	member := fixtures.CreateUser(t, testutil.WithEmail("member@example.com"))
	ws := fixtures.CreateWorkspace(t, owner)

	inv, _, err := invitations.Invite(ctx, owner, ws, nil, "member@example.com", models.RoleMember)
	require.NoError(t, err)

	fixtures.AddMember(t, ws, member, models.RoleMember, nil)

	_, err = invitations.Accept(ctx, inv.Token, "", "")
	assert.ErrorIs(t, err, services.ErrAlreadyMember)
}

// CompleteMembership drains the accepted_pending_membership parking state
// left behind when the membership insert failed after the account was
// created.
func TestInvitationService_Integration_CompleteMembership(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	invitations, _, access := newInvitationService(tdb, 7*24*time.Hour)
	ctx := context.Background()

	owner := fixtures.CreateUser(t)
	accepted := fixtures.CreateUser(t)
	ws := fixtures.CreateWorkspace(t, owner)
	company := fixtures.CreateCompany(t, ws)

	inv, _, err := invitations.Invite(ctx, owner, ws, company, accepted.Email, models.RoleMember)
	require.NoError(t, err)

	// Simulate a partial acceptance: the user exists and the invitation is
	// parked, but no membership row was written.
	_, err = tdb.DB.Pool.Exec(ctx, `
		UPDATE invitations SET status = 'accepted_pending_membership', accepted_by = $2, responded_at = NOW()
		WHERE id = $1
	`, inv.ID, accepted.ID)
	require.NoError(t, err)

	_, err = access.Evaluate(ctx, accepted.ID, ws, company)
	require.ErrorIs(t, err, services.ErrForbidden)

	err = invitations.CompleteMembership(ctx, inv.ID)
	require.NoError(t, err)

	got, err := access.Evaluate(ctx, accepted.ID, ws, company)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, got.Role)
	require.NotNil(t, got.Scope.RestrictedToCompany)
	assert.Equal(t, company.ID, *got.Scope.RestrictedToCompany)

	reloaded, err := invitations.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusAccepted, reloaded.Status)

	// Retrying after completion is rejected.
	err = invitations.CompleteMembership(ctx, inv.ID)
	assert.ErrorIs(t, err, services.ErrInvitationNotFound)
}
