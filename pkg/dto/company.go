package dto

import "github.com/google/uuid"

type CreateCompanyRequest struct {
	Name string `json:"name"`
}

type UpdateCompanyRequest struct {
	Name string `json:"name"`
}

type CompanyResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug *string   `json:"slug,omitempty"`
}
