package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bizgrid/bizgrid-api/internal/database"
	"github.com/bizgrid/bizgrid-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrForbidden covers "not a member" and "member but outside their company
// restriction" alike, so responses never leak which of the two applied.
var ErrForbidden = errors.New("access denied")

// AccessScope is the decoded form of a membership's permissions blob. A nil
// RestrictedToCompany means the member operates workspace-wide.
type AccessScope struct {
	RestrictedToCompany *uuid.UUID
}

func (s AccessScope) Unrestricted() bool {
	return s.RestrictedToCompany == nil
}

// Access is the effective authorization for a resolved workspace/company pair.
type Access struct {
	Role  string
	Scope AccessScope
}

// CanManage reports whether the access allows admin-only operations such as
// inviting members, changing roles, or removing members.
func (a *Access) CanManage() bool {
	return a.Role == models.RoleOwner || a.Role == models.RoleAdmin
}

// CanWrite reports whether the access allows mutating domain records.
// Viewers are read-only.
func (a *Access) CanWrite() bool {
	return a.Role != models.RoleViewer
}

type restrictionPayload struct {
	RestrictedToCompany *uuid.UUID `json:"restricted_to_company"`
}

// RestrictionJSON encodes a company confinement for storage on a membership
// row.
func RestrictionJSON(companyID uuid.UUID) []byte {
	b, _ := json.Marshal(restrictionPayload{RestrictedToCompany: &companyID})
	return b
}

// DecodeScope tolerates the two shapes the permissions blob has been stored
// in over time: a JSONB object, or a JSON string holding an encoded object.
// Anything undecodable means no restriction; that fallback is deliberate.
func DecodeScope(raw []byte) AccessScope {
	if len(raw) == 0 {
		return AccessScope{}
	}

	var payload restrictionPayload
	if err := json.Unmarshal(raw, &payload); err == nil {
		return AccessScope{RestrictedToCompany: payload.RestrictedToCompany}
	}

	var nested string
	if err := json.Unmarshal(raw, &nested); err == nil {
		if err := json.Unmarshal([]byte(nested), &payload); err == nil {
			return AccessScope{RestrictedToCompany: payload.RestrictedToCompany}
		}
	}

	return AccessScope{}
}

// AccessService computes the effective authorization of a user for a resolved
// workspace, and optionally a company within it.
type AccessService struct {
	db *database.DB
}

func NewAccessService(db *database.DB) *AccessService {
	return &AccessService{db: db}
}

// Evaluate runs the access algorithm: owner short-circuit, membership lookup,
// company confinement, then workspace-wide role. Denials return ErrForbidden,
// never a not-found, so membership cannot be probed through error shapes.
func (s *AccessService) Evaluate(ctx context.Context, userID uuid.UUID, ws *models.Workspace, company *models.Company) (*Access, error) {
	if userID == ws.OwnerID {
		return &Access{Role: models.RoleOwner}, nil
	}

	var role string
	var permissions []byte
	err := s.db.Pool.QueryRow(ctx, `
		SELECT role, permissions FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2
	`, ws.ID, userID).Scan(&role, &permissions)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}

	scope := DecodeScope(permissions)
	if scope.RestrictedToCompany != nil && company != nil && *scope.RestrictedToCompany != company.ID {
		return nil, ErrForbidden
	}

	return &Access{Role: role, Scope: scope}, nil
}
