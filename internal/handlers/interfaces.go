package handlers

import (
	"context"
	"time"

	"github.com/bizgrid/bizgrid-api/internal/models"
	"github.com/bizgrid/bizgrid-api/internal/services"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Create(ctx context.Context, email, name, password string, verified bool) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// WorkspaceServiceInterface defines the methods used by handlers from WorkspaceService
type WorkspaceServiceInterface interface {
	Create(ctx context.Context, slug, name string, ownerID uuid.UUID) (*models.Workspace, error)
	GetUserWorkspaces(ctx context.Context, userID uuid.UUID) ([]models.Workspace, []string, error)
	Update(ctx context.Context, workspaceID uuid.UUID, name string) (*models.Workspace, error)
	Delete(ctx context.Context, workspaceID uuid.UUID) error
	GetMembers(ctx context.Context, workspaceID uuid.UUID) ([]models.WorkspaceMember, error)
	UpdateMemberRole(ctx context.Context, workspaceID, userID uuid.UUID, role string) error
	RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error
}

// CompanyServiceInterface defines the methods used by handlers from CompanyService
type CompanyServiceInterface interface {
	Create(ctx context.Context, workspaceID uuid.UUID, name string) (*models.Company, error)
	List(ctx context.Context, workspaceID uuid.UUID) ([]models.Company, error)
	Update(ctx context.Context, companyID uuid.UUID, name string) (*models.Company, error)
	Delete(ctx context.Context, workspaceID, companyID uuid.UUID) error
}

// InvitationServiceInterface defines the methods used by handlers from InvitationService
type InvitationServiceInterface interface {
	Invite(ctx context.Context, inviter *models.User, ws *models.Workspace, company *models.Company, email, role string) (*models.Invitation, bool, error)
	GetByToken(ctx context.Context, token string) (*models.Invitation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error)
	ListPending(ctx context.Context, workspaceID uuid.UUID) ([]models.Invitation, error)
	Accept(ctx context.Context, token, name, password string) (*services.AcceptResult, error)
	CompleteMembership(ctx context.Context, invitationID uuid.UUID) error
}

// EntityServiceInterface defines the methods used by handlers from EntityService
type EntityServiceInterface interface {
	Create(ctx context.Context, workspaceID, companyID uuid.UUID, in services.EntityInput) (*models.BusinessEntity, error)
	GetByID(ctx context.Context, workspaceID, entityID uuid.UUID) (*models.BusinessEntity, error)
	List(ctx context.Context, workspaceID, companyID uuid.UUID, entityType string) ([]models.BusinessEntity, error)
	Update(ctx context.Context, workspaceID, entityID uuid.UUID, in services.EntityInput) (*models.BusinessEntity, error)
	Delete(ctx context.Context, workspaceID, entityID uuid.UUID) error
}

// ResolverServiceInterface defines the methods used by handlers from ResolverService
type ResolverServiceInterface interface {
	ResolveWorkspace(ctx context.Context, loose string) (*models.Workspace, error)
	ResolveCompany(ctx context.Context, loose string, ws *models.Workspace) (*models.Company, error)
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}
