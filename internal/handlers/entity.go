package handlers

import (
	"context"
	"errors"

	"github.com/bizgrid/bizgrid-api/internal/middleware"
	"github.com/bizgrid/bizgrid-api/internal/models"
	"github.com/bizgrid/bizgrid-api/internal/services"
	"github.com/bizgrid/bizgrid-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type EntityHandler struct {
	entityService EntityServiceInterface
}

func NewEntityHandler(entityService EntityServiceInterface) *EntityHandler {
	return &EntityHandler{entityService: entityService}
}

func (h *EntityHandler) Create(c *drift.Context) {
	workspace := middleware.GetWorkspace(c)
	company := middleware.GetCompany(c)
	access := middleware.GetAccess(c)
	if workspace == nil || company == nil || access == nil {
		c.InternalServerError("company not resolved")
		return
	}
	if !access.CanWrite() {
		c.Forbidden("write access required")
		return
	}

	var req dto.EntityRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	entity, err := h.entityService.Create(context.Background(), workspace.ID, company.ID, entityInput(req))
	if err != nil {
		h.writeEntityError(c, err, "failed to create entity")
		return
	}

	_ = c.JSON(201, entityResponse(entity))
}

func (h *EntityHandler) List(c *drift.Context) {
	workspace := middleware.GetWorkspace(c)
	company := middleware.GetCompany(c)
	if workspace == nil || company == nil {
		c.InternalServerError("company not resolved")
		return
	}

	entities, err := h.entityService.List(context.Background(), workspace.ID, company.ID, c.QueryParam("type"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidEntityType) {
			c.BadRequest("invalid entity type filter")
			return
		}
		c.InternalServerError("failed to list entities")
		return
	}

	response := make([]dto.EntityResponse, len(entities))
	for i := range entities {
		response[i] = entityResponse(&entities[i])
	}

	_ = c.JSON(200, response)
}

func (h *EntityHandler) Get(c *drift.Context) {
	workspace := middleware.GetWorkspace(c)
	if workspace == nil {
		c.InternalServerError("workspace not resolved")
		return
	}

	entityID, err := uuid.Parse(c.Param("entityId"))
	if err != nil {
		c.BadRequest("invalid entity id")
		return
	}

	entity, err := h.entityService.GetByID(context.Background(), workspace.ID, entityID)
	if err != nil {
		if errors.Is(err, services.ErrEntityNotFound) {
			c.NotFound("entity not found")
			return
		}
		c.InternalServerError("failed to load entity")
		return
	}

	_ = c.JSON(200, entityResponse(entity))
}

func (h *EntityHandler) Update(c *drift.Context) {
	workspace := middleware.GetWorkspace(c)
	access := middleware.GetAccess(c)
	if workspace == nil || access == nil {
		c.InternalServerError("workspace not resolved")
		return
	}
	if !access.CanWrite() {
		c.Forbidden("write access required")
		return
	}

	entityID, err := uuid.Parse(c.Param("entityId"))
	if err != nil {
		c.BadRequest("invalid entity id")
		return
	}

	var req dto.EntityRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	entity, err := h.entityService.Update(context.Background(), workspace.ID, entityID, entityInput(req))
	if err != nil {
		h.writeEntityError(c, err, "failed to update entity")
		return
	}

	_ = c.JSON(200, entityResponse(entity))
}

func (h *EntityHandler) Delete(c *drift.Context) {
	workspace := middleware.GetWorkspace(c)
	access := middleware.GetAccess(c)
	if workspace == nil || access == nil {
		c.InternalServerError("workspace not resolved")
		return
	}
	if !access.CanWrite() {
		c.Forbidden("write access required")
		return
	}

	entityID, err := uuid.Parse(c.Param("entityId"))
	if err != nil {
		c.BadRequest("invalid entity id")
		return
	}

	if err := h.entityService.Delete(context.Background(), workspace.ID, entityID); err != nil {
		if errors.Is(err, services.ErrEntityNotFound) {
			c.NotFound("entity not found")
			return
		}
		c.InternalServerError("failed to delete entity")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "entity deleted"})
}

func (h *EntityHandler) writeEntityError(c *drift.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrInvalidEntityType):
		c.BadRequest("invalid entity type")
	case errors.Is(err, services.ErrEntityNotFound):
		c.NotFound("entity not found")
	case errors.Is(err, services.ErrDuplicateTaxNumber):
		_ = c.JSON(409, map[string]string{"error": "tax number already registered in this workspace"})
	case errors.Is(err, services.ErrDuplicateCustomer):
		_ = c.JSON(409, map[string]string{"error": "customer code already in use for this company"})
	case errors.Is(err, services.ErrDuplicateSupplier):
		_ = c.JSON(409, map[string]string{"error": "supplier code already in use for this company"})
	default:
		c.InternalServerError(fallback)
	}
}

func entityInput(req dto.EntityRequest) services.EntityInput {
	return services.EntityInput{
		EntityType:       req.EntityType,
		Name:             req.Name,
		TaxNumber:        req.TaxNumber,
		CustomerCode:     req.CustomerCode,
		SupplierCode:     req.SupplierCode,
		Email:            req.Email,
		Phone:            req.Phone,
		Address:          req.Address,
		City:             req.City,
		Country:          req.Country,
		CreditLimit:      req.CreditLimit,
		OpeningBalance:   req.OpeningBalance,
		PaymentTermsDays: req.PaymentTermsDays,
		LeadTimeDays:     req.LeadTimeDays,
		QualityRating:    req.QualityRating,
		Notes:            req.Notes,
	}
}

func entityResponse(e *models.BusinessEntity) dto.EntityResponse {
	return dto.EntityResponse{
		ID:               e.ID,
		CompanyID:        e.CompanyID,
		EntityType:       e.EntityType,
		Name:             e.Name,
		TaxNumber:        e.TaxNumber,
		CustomerCode:     e.CustomerCode,
		SupplierCode:     e.SupplierCode,
		Email:            e.Email,
		Phone:            e.Phone,
		Address:          e.Address,
		City:             e.City,
		Country:          e.Country,
		CreditLimit:      e.CreditLimit,
		OpeningBalance:   e.OpeningBalance,
		PaymentTermsDays: e.PaymentTermsDays,
		LeadTimeDays:     e.LeadTimeDays,
		QualityRating:    e.QualityRating,
		Notes:            e.Notes,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}
