package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is a business unit within a workspace, linked through
// workspace_companies. The slug column caches the derived lookup slug at
// creation time; rows created before the cache existed carry NULL and are
// matched by recomputing the slug from the name.
type Company struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      *string   `json:"slug,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
