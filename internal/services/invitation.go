package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/bizgrid/bizgrid-api/internal/database"
	"github.com/bizgrid/bizgrid-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationPending  = errors.New("a pending invitation already exists for this email")
	ErrInvitationExpired  = errors.New("invitation has expired")
	ErrAlreadyMember      = errors.New("user is already a workspace member")
	ErrInvalidRole        = errors.New("invalid role")
	// ErrMembershipIncomplete reports an acceptance whose account exists but
	// whose membership insert failed; the invitation is parked in
	// accepted_pending_membership and CompleteMembership retries it.
	ErrMembershipIncomplete = errors.New("invitation accepted but membership provisioning is incomplete")
)

const invitationTokenLen = 32

// EmailSender is the outbound mail collaborator. Dispatch failure is never
// fatal to invitation issuance.
type EmailSender interface {
	SendInvitation(to, scopeName, inviterName, acceptURL string) error
}

type InvitationService struct {
	db      *database.DB
	users   *UserService
	access  *AccessService
	email   EmailSender
	baseURL string
	expiry  time.Duration
}

func NewInvitationService(db *database.DB, users *UserService, access *AccessService, email EmailSender, baseURL string, expiry time.Duration) *InvitationService {
	return &InvitationService{
		db:      db,
		users:   users,
		access:  access,
		email:   email,
		baseURL: baseURL,
		expiry:  expiry,
	}
}

func generateInvitationToken() string {
	b := make([]byte, invitationTokenLen)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Invite issues an invitation scoped to the workspace, or to a single company
// within it when company is non-nil. The returned bool reports email
// dispatch: the invitation row is never rolled back on dispatch failure,
// because losing a persisted token would be worse than a delivery failure.
func (s *InvitationService) Invite(ctx context.Context, inviter *models.User, ws *models.Workspace, company *models.Company, email, role string) (*models.Invitation, bool, error) {
	if !models.ValidMemberRole(role) {
		return nil, false, ErrInvalidRole
	}

	access, err := s.access.Evaluate(ctx, inviter.ID, ws, company)
	if err != nil {
		return nil, false, err
	}
	if !access.CanManage() {
		return nil, false, ErrForbidden
	}

	inviteType := models.InvitationTypeWorkspace
	var companyID *uuid.UUID
	if company != nil {
		inviteType = models.InvitationTypeCompany
		companyID = &company.ID
	}

	// At most one pending invitation per (email, scope): two pending
	// invitations accepted concurrently could double-provision membership.
	var pending bool
	err = s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM invitations
			WHERE email = $1 AND workspace_id = $2
			  AND company_id IS NOT DISTINCT FROM $3
			  AND status = 'pending'
		)
	`, email, ws.ID, companyID).Scan(&pending)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check pending invitations: %w", err)
	}
	if pending {
		return nil, false, ErrInvitationPending
	}

	token := generateInvitationToken()
	expiresAt := time.Now().Add(s.expiry)

	var inv models.Invitation
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO invitations (token, email, invite_type, role, workspace_id, company_id, invited_by, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', $8)
		RETURNING id, token, email, invite_type, role, workspace_id, company_id, invited_by, status, expires_at, accepted_by, responded_at, created_at, updated_at
	`, token, email, inviteType, role, ws.ID, companyID, inviter.ID, expiresAt).Scan(
		&inv.ID, &inv.Token, &inv.Email, &inv.Type, &inv.Role, &inv.WorkspaceID,
		&inv.CompanyID, &inv.InvitedBy, &inv.Status, &inv.ExpiresAt,
		&inv.AcceptedBy, &inv.RespondedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create invitation: %w", err)
	}

	scopeName := ws.Name
	if company != nil {
		scopeName = company.Name
	}
	acceptURL := fmt.Sprintf("%s/invitations/%s", s.baseURL, token)
	emailErr := s.email.SendInvitation(email, scopeName, inviter.Name, acceptURL)

	return &inv, emailErr == nil, nil
}

func (s *InvitationService) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	return s.invitationBy(ctx, `token = $1`, token)
}

func (s *InvitationService) GetByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	return s.invitationBy(ctx, `id = $1`, id)
}

func (s *InvitationService) invitationBy(ctx context.Context, where string, arg any) (*models.Invitation, error) {
	var inv models.Invitation
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, token, email, invite_type, role, workspace_id, company_id, invited_by, status, expires_at, accepted_by, responded_at, created_at, updated_at
		FROM invitations WHERE `+where,
		arg).Scan(
		&inv.ID, &inv.Token, &inv.Email, &inv.Type, &inv.Role, &inv.WorkspaceID,
		&inv.CompanyID, &inv.InvitedBy, &inv.Status, &inv.ExpiresAt,
		&inv.AcceptedBy, &inv.RespondedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load invitation: %w", err)
	}
	return &inv, nil
}

func (s *InvitationService) ListPending(ctx context.Context, workspaceID uuid.UUID) ([]models.Invitation, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, token, email, invite_type, role, workspace_id, company_id, invited_by, status, expires_at, accepted_by, responded_at, created_at, updated_at
		FROM invitations
		WHERE workspace_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		if err := rows.Scan(
			&inv.ID, &inv.Token, &inv.Email, &inv.Type, &inv.Role, &inv.WorkspaceID,
			&inv.CompanyID, &inv.InvitedBy, &inv.Status, &inv.ExpiresAt,
			&inv.AcceptedBy, &inv.RespondedAt, &inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

type AcceptResult struct {
	User        *models.User
	Invitation  *models.Invitation
	CreatedUser bool
}

// Accept performs the acceptance transition: resolve or create the invited
// user, mark the invitation accepted, and insert the membership — the latter
// two atomically. Expiry is detected lazily here; there is no background
// sweep. A concurrent second acceptance observes status != pending inside the
// transaction and fails cleanly.
func (s *InvitationService) Accept(ctx context.Context, token, name, password string) (*AcceptResult, error) {
	inv, err := s.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.InvitationStatusPending {
		return nil, ErrInvitationNotFound
	}

	if time.Now().After(inv.ExpiresAt) {
		_, _ = s.db.Pool.Exec(ctx, `
			UPDATE invitations SET status = 'expired', responded_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND status = 'pending'
		`, inv.ID)
		return nil, ErrInvitationExpired
	}

	user, createdUser, err := s.resolveInvitedUser(ctx, inv, name, password)
	if err != nil {
		return nil, err
	}

	if err := s.provisionMembership(ctx, inv, user.ID); err != nil {
		if errors.Is(err, ErrInvitationNotFound) {
			return nil, err
		}
		// The account exists but membership could not be provisioned. Park
		// the invitation in the explicit intermediate state so the
		// inconsistency is visible and retriable instead of stranding the
		// user with a forever-pending token.
		_, fallbackErr := s.db.Pool.Exec(ctx, `
			UPDATE invitations SET status = 'accepted_pending_membership', accepted_by = $2, responded_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND status = 'pending'
		`, inv.ID, user.ID)
		if fallbackErr != nil {
			return nil, fmt.Errorf("failed to accept invitation: %w", err)
		}
		return nil, ErrMembershipIncomplete
	}

	now := time.Now()
	inv.Status = models.InvitationStatusAccepted
	inv.AcceptedBy = &user.ID
	inv.RespondedAt = &now

	return &AcceptResult{User: user, Invitation: inv, CreatedUser: createdUser}, nil
}

func (s *InvitationService) resolveInvitedUser(ctx context.Context, inv *models.Invitation, name, password string) (*models.User, bool, error) {
	user, err := s.users.GetByEmail(ctx, inv.Email)
	if err == nil {
		var member bool
		err := s.db.Pool.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM workspace_members WHERE workspace_id = $1 AND user_id = $2
				UNION
				SELECT 1 FROM workspaces WHERE id = $1 AND owner_id = $2
			)
		`, inv.WorkspaceID, user.ID).Scan(&member)
		if err != nil {
			return nil, false, fmt.Errorf("failed to check membership: %w", err)
		}
		if member {
			return nil, false, ErrAlreadyMember
		}
		return user, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	// Accepting a scoped invitation is the verification event for the new
	// account.
	user, err = s.users.Create(ctx, inv.Email, name, password, true)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *InvitationService) provisionMembership(ctx context.Context, inv *models.Invitation, userID uuid.UUID) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result, err := tx.Exec(ctx, `
		UPDATE invitations SET status = 'accepted', accepted_by = $2, responded_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, inv.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to update invitation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrInvitationNotFound
	}

	var permissions []byte
	if inv.Type == models.InvitationTypeCompany && inv.CompanyID != nil {
		permissions = RestrictionJSON(*inv.CompanyID)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role, permissions)
		VALUES ($1, $2, $3, $4)
	`, inv.WorkspaceID, userID, inv.Role, permissions)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	return tx.Commit(ctx)
}

// CompleteMembership retries provisioning for invitations parked in
// accepted_pending_membership and finishes the transition to accepted.
func (s *InvitationService) CompleteMembership(ctx context.Context, invitationID uuid.UUID) error {
	inv, err := s.GetByID(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.Status != models.InvitationStatusPendingMembership {
		return ErrInvitationNotFound
	}
	if inv.AcceptedBy == nil {
		return fmt.Errorf("invitation %s has no accepted_by user", inv.ID)
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var permissions []byte
	if inv.Type == models.InvitationTypeCompany && inv.CompanyID != nil {
		permissions = RestrictionJSON(*inv.CompanyID)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role, permissions)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (workspace_id, user_id) DO NOTHING
	`, inv.WorkspaceID, *inv.AcceptedBy, inv.Role, permissions)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE invitations SET status = 'accepted', updated_at = NOW()
		WHERE id = $1 AND status = 'accepted_pending_membership'
	`, inv.ID)
	if err != nil {
		return fmt.Errorf("failed to update invitation: %w", err)
	}

	return tx.Commit(ctx)
}
