package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	// RoleOwner is implicit via workspaces.owner_id and never stored in
	// workspace_members.
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// ValidMemberRole reports whether role can be stored on a membership row.
func ValidMemberRole(role string) bool {
	switch role {
	case RoleAdmin, RoleMember, RoleViewer:
		return true
	}
	return false
}

type WorkspaceMember struct {
	ID          uuid.UUID       `json:"id"`
	WorkspaceID uuid.UUID       `json:"workspace_id"`
	UserID      uuid.UUID       `json:"user_id"`
	Role        string          `json:"role"`
	Permissions json.RawMessage `json:"permissions,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	User        *User           `json:"user,omitempty"`
}
