package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bizgrid/bizgrid-api/internal/database"
	"github.com/bizgrid/bizgrid-api/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values. The password is always
// "password123" unless overridden with WithPassword.
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:         fmt.Sprintf("user%d@example.com", f.counter),
		Name:          fmt.Sprintf("Test User %d", f.counter),
		EmailVerified: true,
	}
	password := "password123"

	for _, opt := range opts {
		opt(user, &password)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	ctx := context.Background()
	err = f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, email_verified)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, user.Email, user.Name, string(hash), user.EmailVerified).Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	user.PasswordHash = string(hash)
	return user
}

// UserOption configures a test user
type UserOption func(*models.User, *string)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User, _ *string) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User, _ *string) {
		u.Name = name
	}
}

// WithPassword sets the user's password
func WithPassword(password string) UserOption {
	return func(_ *models.User, p *string) {
		*p = password
	}
}

// CreateWorkspace creates a test workspace owned by the given user
func (f *Fixtures) CreateWorkspace(t *testing.T, owner *models.User, opts ...WorkspaceOption) *models.Workspace {
	t.Helper()
	f.counter++

	ws := &models.Workspace{
		Slug:    fmt.Sprintf("workspace-%d", f.counter),
		Name:    fmt.Sprintf("Test Workspace %d", f.counter),
		OwnerID: owner.ID,
	}

	for _, opt := range opts {
		opt(ws)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO workspaces (slug, name, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, ws.Slug, ws.Name, ws.OwnerID).Scan(&ws.ID, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}

	return ws
}

// WorkspaceOption configures a test workspace
type WorkspaceOption func(*models.Workspace)

// WithWorkspaceSlug sets the workspace slug
func WithWorkspaceSlug(slug string) WorkspaceOption {
	return func(w *models.Workspace) {
		w.Slug = slug
	}
}

// WithWorkspaceName sets the workspace name
func WithWorkspaceName(name string) WorkspaceOption {
	return func(w *models.Workspace) {
		w.Name = name
	}
}

// CreateCompany creates a test company linked to the given workspace
func (f *Fixtures) CreateCompany(t *testing.T, workspace *models.Workspace, opts ...CompanyOption) *models.Company {
	t.Helper()
	f.counter++

	company := &models.Company{
		Name: fmt.Sprintf("Test Company %d", f.counter),
	}
	slug := fmt.Sprintf("test-company-%d", f.counter)
	company.Slug = &slug

	for _, opt := range opts {
		opt(company)
	}

	ctx := context.Background()
	tx, err := f.db.Pool.Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO companies (name, slug)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, company.Name, company.Slug).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create company: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO workspace_companies (workspace_id, company_id)
		VALUES ($1, $2)
	`, workspace.ID, company.ID)
	if err != nil {
		t.Fatalf("failed to link company to workspace: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("failed to commit transaction: %v", err)
	}

	return company
}

// CompanyOption configures a test company
type CompanyOption func(*models.Company)

// WithCompanyName sets the company name
func WithCompanyName(name string) CompanyOption {
	return func(c *models.Company) {
		c.Name = name
	}
}

// WithCompanySlug sets the cached company slug; nil simulates a row created
// before the slug column existed.
func WithCompanySlug(slug *string) CompanyOption {
	return func(c *models.Company) {
		c.Slug = slug
	}
}

// AddMember adds a member to a workspace with the given role
func (f *Fixtures) AddMember(t *testing.T, workspace *models.Workspace, user *models.User, role string, permissions []byte) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role, permissions)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (workspace_id, user_id) DO NOTHING
	`, workspace.ID, user.ID, role, permissions)
	if err != nil {
		t.Fatalf("failed to add workspace member: %v", err)
	}
}

// CreateCustomer inserts a legacy customer row for consolidation tests
func (f *Fixtures) CreateCustomer(t *testing.T, workspace *models.Workspace, company *models.Company, name string, taxNumber *string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	var id uuid.UUID
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO customers (workspace_id, company_id, name, tax_number, credit_limit, payment_terms_days)
		VALUES ($1, $2, $3, $4, 1000, 30)
		RETURNING id
	`, workspace.ID, company.ID, name, taxNumber).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}
	return id
}

// CreateSupplier inserts a legacy supplier row for consolidation tests
func (f *Fixtures) CreateSupplier(t *testing.T, workspace *models.Workspace, company *models.Company, name string, taxNumber *string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	var id uuid.UUID
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO suppliers (workspace_id, company_id, name, tax_number, payment_terms_days)
		VALUES ($1, $2, $3, $4, 45)
		RETURNING id
	`, workspace.ID, company.ID, name, taxNumber).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create supplier: %v", err)
	}
	return id
}

// CreateRefreshToken creates a test refresh token
func (f *Fixtures) CreateRefreshToken(t *testing.T, userID uuid.UUID, tokenHash string, expiresAt time.Time) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	if err != nil {
		t.Fatalf("failed to create refresh token: %v", err)
	}
}
