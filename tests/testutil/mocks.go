package testutil

import (
	"context"
	"time"

	"github.com/bizgrid/bizgrid-api/internal/models"
	"github.com/bizgrid/bizgrid-api/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, email, name, password string, verified bool) (*models.User, error) {
	args := m.Called(ctx, email, name, password, verified)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockWorkspaceService mocks the WorkspaceService
type MockWorkspaceService struct {
	mock.Mock
}

func (m *MockWorkspaceService) Create(ctx context.Context, slug, name string, ownerID uuid.UUID) (*models.Workspace, error) {
	args := m.Called(ctx, slug, name, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Workspace), args.Error(1)
}

func (m *MockWorkspaceService) GetUserWorkspaces(ctx context.Context, userID uuid.UUID) ([]models.Workspace, []string, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Workspace), args.Get(1).([]string), args.Error(2)
}

func (m *MockWorkspaceService) Update(ctx context.Context, workspaceID uuid.UUID, name string) (*models.Workspace, error) {
	args := m.Called(ctx, workspaceID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Workspace), args.Error(1)
}

func (m *MockWorkspaceService) Delete(ctx context.Context, workspaceID uuid.UUID) error {
	args := m.Called(ctx, workspaceID)
	return args.Error(0)
}

func (m *MockWorkspaceService) GetMembers(ctx context.Context, workspaceID uuid.UUID) ([]models.WorkspaceMember, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).([]models.WorkspaceMember), args.Error(1)
}

func (m *MockWorkspaceService) UpdateMemberRole(ctx context.Context, workspaceID, userID uuid.UUID, role string) error {
	args := m.Called(ctx, workspaceID, userID, role)
	return args.Error(0)
}

func (m *MockWorkspaceService) RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	args := m.Called(ctx, workspaceID, userID)
	return args.Error(0)
}

// MockCompanyService mocks the CompanyService
type MockCompanyService struct {
	mock.Mock
}

func (m *MockCompanyService) Create(ctx context.Context, workspaceID uuid.UUID, name string) (*models.Company, error) {
	args := m.Called(ctx, workspaceID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCompanyService) List(ctx context.Context, workspaceID uuid.UUID) ([]models.Company, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).([]models.Company), args.Error(1)
}

func (m *MockCompanyService) Update(ctx context.Context, companyID uuid.UUID, name string) (*models.Company, error) {
	args := m.Called(ctx, companyID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCompanyService) Delete(ctx context.Context, workspaceID, companyID uuid.UUID) error {
	args := m.Called(ctx, workspaceID, companyID)
	return args.Error(0)
}

// MockInvitationService mocks the InvitationService
type MockInvitationService struct {
	mock.Mock
}

func (m *MockInvitationService) Invite(ctx context.Context, inviter *models.User, ws *models.Workspace, company *models.Company, email, role string) (*models.Invitation, bool, error) {
	args := m.Called(ctx, inviter, ws, company, email, role)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Invitation), args.Bool(1), args.Error(2)
}

func (m *MockInvitationService) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invitation), args.Error(1)
}

func (m *MockInvitationService) GetByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invitation), args.Error(1)
}

func (m *MockInvitationService) ListPending(ctx context.Context, workspaceID uuid.UUID) ([]models.Invitation, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).([]models.Invitation), args.Error(1)
}

func (m *MockInvitationService) Accept(ctx context.Context, token, name, password string) (*services.AcceptResult, error) {
	args := m.Called(ctx, token, name, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AcceptResult), args.Error(1)
}

func (m *MockInvitationService) CompleteMembership(ctx context.Context, invitationID uuid.UUID) error {
	args := m.Called(ctx, invitationID)
	return args.Error(0)
}

// MockEntityService mocks the EntityService
type MockEntityService struct {
	mock.Mock
}

func (m *MockEntityService) Create(ctx context.Context, workspaceID, companyID uuid.UUID, in services.EntityInput) (*models.BusinessEntity, error) {
	args := m.Called(ctx, workspaceID, companyID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BusinessEntity), args.Error(1)
}

func (m *MockEntityService) GetByID(ctx context.Context, workspaceID, entityID uuid.UUID) (*models.BusinessEntity, error) {
	args := m.Called(ctx, workspaceID, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BusinessEntity), args.Error(1)
}

func (m *MockEntityService) List(ctx context.Context, workspaceID, companyID uuid.UUID, entityType string) ([]models.BusinessEntity, error) {
	args := m.Called(ctx, workspaceID, companyID, entityType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BusinessEntity), args.Error(1)
}

func (m *MockEntityService) Update(ctx context.Context, workspaceID, entityID uuid.UUID, in services.EntityInput) (*models.BusinessEntity, error) {
	args := m.Called(ctx, workspaceID, entityID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BusinessEntity), args.Error(1)
}

func (m *MockEntityService) Delete(ctx context.Context, workspaceID, entityID uuid.UUID) error {
	args := m.Called(ctx, workspaceID, entityID)
	return args.Error(0)
}

// MockResolverService mocks the ResolverService
type MockResolverService struct {
	mock.Mock
}

func (m *MockResolverService) ResolveWorkspace(ctx context.Context, loose string) (*models.Workspace, error) {
	args := m.Called(ctx, loose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Workspace), args.Error(1)
}

func (m *MockResolverService) ResolveCompany(ctx context.Context, loose string, ws *models.Workspace) (*models.Company, error) {
	args := m.Called(ctx, loose, ws)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

// MockAccessService mocks the AccessService
type MockAccessService struct {
	mock.Mock
}

func (m *MockAccessService) Evaluate(ctx context.Context, userID uuid.UUID, ws *models.Workspace, company *models.Company) (*services.Access, error) {
	args := m.Called(ctx, userID, ws, company)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Access), args.Error(1)
}

// MockTokenService mocks the TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockTokenService) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockJWTService mocks the JWTService
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error) {
	args := m.Called(userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenPair), args.Error(1)
}

func (m *MockJWTService) ValidateRefreshToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockJWTService) RefreshExpiry() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

// MockEmailSender mocks invitation email dispatch
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendInvitation(to, scopeName, inviterName, acceptURL string) error {
	args := m.Called(to, scopeName, inviterName, acceptURL)
	return args.Error(0)
}
