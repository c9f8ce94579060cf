package handlers

import (
	"context"
	"errors"

	"github.com/bizgrid/bizgrid-api/internal/middleware"
	"github.com/bizgrid/bizgrid-api/internal/services"
	"github.com/bizgrid/bizgrid-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type CompanyHandler struct {
	companyService CompanyServiceInterface
}

func NewCompanyHandler(companyService CompanyServiceInterface) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

func (h *CompanyHandler) Create(c *drift.Context) {
	workspace := middleware.GetWorkspace(c)
	access := middleware.GetAccess(c)
	if workspace == nil || access == nil {
		c.InternalServerError("workspace not resolved")
		return
	}
	if !access.CanManage() {
		c.Forbidden("admin access required")
		return
	}

	var req dto.CreateCompanyRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	company, err := h.companyService.Create(context.Background(), workspace.ID, req.Name)
	if err != nil {
		c.InternalServerError("failed to create company")
		return
	}

	_ = c.JSON(201, dto.CompanyResponse{
		ID:   company.ID,
		Name: company.Name,
		Slug: company.Slug,
	})
}

func (h *CompanyHandler) List(c *drift.Context) {
	workspace := middleware.GetWorkspace(c)
	access := middleware.GetAccess(c)
	if workspace == nil || access == nil {
		c.InternalServerError("workspace not resolved")
		return
	}

	companies, err := h.companyService.List(context.Background(), workspace.ID)
	if err != nil {
		c.InternalServerError("failed to list companies")
		return
	}

	// A company-restricted member only sees their own company.
	response := make([]dto.CompanyResponse, 0, len(companies))
	for _, company := range companies {
		if restricted := access.Scope.RestrictedToCompany; restricted != nil && *restricted != company.ID {
			continue
		}
		response = append(response, dto.CompanyResponse{
			ID:   company.ID,
			Name: company.Name,
			Slug: company.Slug,
		})
	}

	_ = c.JSON(200, response)
}

func (h *CompanyHandler) Get(c *drift.Context) {
	company := middleware.GetCompany(c)
	if company == nil {
		c.InternalServerError("company not resolved")
		return
	}

	_ = c.JSON(200, dto.CompanyResponse{
		ID:   company.ID,
		Name: company.Name,
		Slug: company.Slug,
	})
}

func (h *CompanyHandler) Update(c *drift.Context) {
	company := middleware.GetCompany(c)
	access := middleware.GetAccess(c)
	if company == nil || access == nil {
		c.InternalServerError("company not resolved")
		return
	}
	if !access.CanManage() {
		c.Forbidden("admin access required")
		return
	}

	var req dto.UpdateCompanyRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	updated, err := h.companyService.Update(context.Background(), company.ID, req.Name)
	if err != nil {
		c.InternalServerError("failed to update company")
		return
	}

	_ = c.JSON(200, dto.CompanyResponse{
		ID:   updated.ID,
		Name: updated.Name,
		Slug: updated.Slug,
	})
}

func (h *CompanyHandler) Delete(c *drift.Context) {
	workspace := middleware.GetWorkspace(c)
	company := middleware.GetCompany(c)
	access := middleware.GetAccess(c)
	if workspace == nil || company == nil || access == nil {
		c.InternalServerError("company not resolved")
		return
	}
	if !access.CanManage() {
		c.Forbidden("admin access required")
		return
	}

	if err := h.companyService.Delete(context.Background(), workspace.ID, company.ID); err != nil {
		if errors.Is(err, services.ErrCompanyHasEntities) {
			_ = c.JSON(409, map[string]string{"error": "company still has business entities"})
			return
		}
		c.InternalServerError("failed to delete company")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "company deleted"})
}
