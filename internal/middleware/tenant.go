package middleware

import (
	"context"

	"github.com/bizgrid/bizgrid-api/internal/models"
	"github.com/bizgrid/bizgrid-api/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	WorkspaceKey = "workspace"
	CompanyKey   = "company"
	AccessKey    = "access"
)

// WorkspaceResolver resolves loose workspace/company references to records.
type WorkspaceResolver interface {
	ResolveWorkspace(ctx context.Context, loose string) (*models.Workspace, error)
	ResolveCompany(ctx context.Context, loose string, ws *models.Workspace) (*models.Company, error)
}

// AccessEvaluator computes the caller's effective access for a resolved scope.
type AccessEvaluator interface {
	Evaluate(ctx context.Context, userID uuid.UUID, ws *models.Workspace, company *models.Company) (*services.Access, error)
}

// Tenant resolves the :workspace path parameter (and :company when present),
// evaluates the caller's access, and stashes all three on the context.
// Resolution failures are 404s; access failures are 403s — a member outside
// their company restriction learns the company exists but not its contents.
func Tenant(resolver WorkspaceResolver, access AccessEvaluator) drift.HandlerFunc {
	return func(c *drift.Context) {
		ctx := context.Background()

		ws, err := resolver.ResolveWorkspace(ctx, c.Param("workspace"))
		if err != nil {
			c.NotFound("workspace not found")
			return
		}

		var company *models.Company
		if ref := c.Param("company"); ref != "" {
			company, err = resolver.ResolveCompany(ctx, ref, ws)
			if err != nil {
				c.NotFound("company not found")
				return
			}
		}

		userID := GetUserID(c)
		acc, err := access.Evaluate(ctx, userID, ws, company)
		if err != nil {
			c.Forbidden("access denied")
			return
		}

		c.Set(WorkspaceKey, ws)
		if company != nil {
			c.Set(CompanyKey, company)
		}
		c.Set(AccessKey, acc)

		c.Next()
	}
}

func GetWorkspace(c *drift.Context) *models.Workspace {
	if v, ok := c.Get(WorkspaceKey); ok {
		if ws, ok := v.(*models.Workspace); ok {
			return ws
		}
	}
	return nil
}

func GetCompany(c *drift.Context) *models.Company {
	if v, ok := c.Get(CompanyKey); ok {
		if company, ok := v.(*models.Company); ok {
			return company
		}
	}
	return nil
}

func GetAccess(c *drift.Context) *services.Access {
	if v, ok := c.Get(AccessKey); ok {
		if acc, ok := v.(*services.Access); ok {
			return acc
		}
	}
	return nil
}
