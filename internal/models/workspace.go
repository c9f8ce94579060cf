package models

import (
	"time"

	"github.com/google/uuid"
)

// Workspace is the top-level tenant boundary. The owner is not a row in
// workspace_members; ownership is implicit and always grants full access.
type Workspace struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
