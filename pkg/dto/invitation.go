package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateInvitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AcceptInvitationRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type InvitationResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Type        string     `json:"type"`
	Role        string     `json:"role"`
	WorkspaceID uuid.UUID  `json:"workspace_id"`
	CompanyID   *uuid.UUID `json:"company_id,omitempty"`
	Status      string     `json:"status"`
	ExpiresAt   time.Time  `json:"expires_at"`
	EmailSent   *bool      `json:"email_sent,omitempty"`
}

// InvitationPreviewResponse is the unauthenticated view behind an invitation
// token: enough for an accept page, nothing more.
type InvitationPreviewResponse struct {
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	WorkspaceName string    `json:"workspace_name"`
	CompanyName   *string   `json:"company_name,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
}

type AcceptInvitationResponse struct {
	User        UserResponse  `json:"user"`
	Token       TokenResponse `json:"token"`
	WorkspaceID uuid.UUID     `json:"workspace_id"`
}
