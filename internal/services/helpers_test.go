package services

import (
	"time"

	"github.com/bizgrid/bizgrid-api/internal/models"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
)

func ptr[T any](v T) *T { return &v }

// anyArgs builds n wildcard argument matchers; pgxmock requires the argument
// count on an expectation to match the actual call.
func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func testWorkspace() *models.Workspace {
	now := time.Now()
	return &models.Workspace{
		ID:        uuid.New(),
		Slug:      "acme",
		Name:      "Acme",
		OwnerID:   uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testCompany(name string) *models.Company {
	now := time.Now()
	slug := DeriveCompanySlug(name)
	return &models.Company{
		ID:        uuid.New(),
		Name:      name,
		Slug:      &slug,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
