package dto

import "github.com/google/uuid"

type CreateWorkspaceRequest struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type UpdateWorkspaceRequest struct {
	Name string `json:"name"`
}

type WorkspaceResponse struct {
	ID      uuid.UUID `json:"id"`
	Slug    string    `json:"slug"`
	Name    string    `json:"name"`
	OwnerID uuid.UUID `json:"owner_id"`
	Role    string    `json:"role,omitempty"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role"`
}

type MemberResponse struct {
	ID                  uuid.UUID    `json:"id"`
	UserID              uuid.UUID    `json:"user_id"`
	Role                string       `json:"role"`
	RestrictedToCompany *uuid.UUID   `json:"restricted_to_company,omitempty"`
	User                UserResponse `json:"user"`
}
