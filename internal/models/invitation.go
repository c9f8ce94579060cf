package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusExpired  = "expired"
	// InvitationStatusPendingMembership marks an acceptance whose user account
	// was provisioned but whose membership insert failed. The invitation stays
	// in this state until CompleteMembership finishes the transition.
	InvitationStatusPendingMembership = "accepted_pending_membership"
)

const (
	InvitationTypeWorkspace = "workspace"
	InvitationTypeCompany   = "company"
)

type Invitation struct {
	ID          uuid.UUID  `json:"id"`
	Token       string     `json:"-"`
	Email       string     `json:"email"`
	Type        string     `json:"type"`
	Role        string     `json:"role"`
	WorkspaceID uuid.UUID  `json:"workspace_id"`
	CompanyID   *uuid.UUID `json:"company_id,omitempty"`
	InvitedBy   uuid.UUID  `json:"invited_by"`
	Status      string     `json:"status"`
	ExpiresAt   time.Time  `json:"expires_at"`
	AcceptedBy  *uuid.UUID `json:"accepted_by,omitempty"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
