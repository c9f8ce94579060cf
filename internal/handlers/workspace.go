package handlers

import (
	"context"
	"errors"
	"regexp"

	"github.com/bizgrid/bizgrid-api/internal/middleware"
	"github.com/bizgrid/bizgrid-api/internal/models"
	"github.com/bizgrid/bizgrid-api/internal/services"
	"github.com/bizgrid/bizgrid-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

var workspaceSlugPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{1,61}[a-z0-9])?$`)

type WorkspaceHandler struct {
	workspaceService WorkspaceServiceInterface
}

func NewWorkspaceHandler(workspaceService WorkspaceServiceInterface) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

func (h *WorkspaceHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateWorkspaceRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}
	if !workspaceSlugPattern.MatchString(req.Slug) {
		c.BadRequest("slug must be lowercase alphanumeric with hyphens")
		return
	}

	workspace, err := h.workspaceService.Create(context.Background(), req.Slug, req.Name, userID)
	if err != nil {
		if errors.Is(err, services.ErrSlugTaken) {
			_ = c.JSON(409, map[string]string{"error": "slug is already taken"})
			return
		}
		c.InternalServerError("failed to create workspace")
		return
	}

	_ = c.JSON(201, dto.WorkspaceResponse{
		ID:      workspace.ID,
		Slug:    workspace.Slug,
		Name:    workspace.Name,
		OwnerID: workspace.OwnerID,
		Role:    models.RoleOwner,
	})
}

func (h *WorkspaceHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	workspaces, roles, err := h.workspaceService.GetUserWorkspaces(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to get workspaces")
		return
	}

	response := make([]dto.WorkspaceResponse, len(workspaces))
	for i, w := range workspaces {
		response[i] = dto.WorkspaceResponse{
			ID:      w.ID,
			Slug:    w.Slug,
			Name:    w.Name,
			OwnerID: w.OwnerID,
			Role:    roles[i],
		}
	}

	_ = c.JSON(200, response)
}

func (h *WorkspaceHandler) Get(c *drift.Context) {
	workspace := middleware.GetWorkspace(c)
	access := middleware.GetAccess(c)
	if workspace == nil || access == nil {
		c.InternalServerError("workspace not resolved")
		return
	}

	_ = c.JSON(200, dto.WorkspaceResponse{
		ID:      workspace.ID,
		Slug:    workspace.Slug,
		Name:    workspace.Name,
		OwnerID: workspace.OwnerID,
		Role:    access.Role,
	})
}

func (h *WorkspaceHandler) Update(c *drift.Context) {
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

	var req dto.UpdateWorkspaceRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	updated, err := h.workspaceService.Update(context.Background(), workspace.ID, req.Name)
	if err != nil {
		c.InternalServerError("failed to update workspace")
		return
	}

	_ = c.JSON(200, dto.WorkspaceResponse{
		ID:      updated.ID,
		Slug:    updated.Slug,
		Name:    updated.Name,
		OwnerID: updated.OwnerID,
		Role:    access.Role,
	})
}

func (h *WorkspaceHandler) Delete(c *drift.Context) {
	workspace := middleware.GetWorkspace(c)
	access := middleware.GetAccess(c)
	if workspace == nil || access == nil {
		c.InternalServerError("workspace not resolved")
		return
	}
	if access.Role != models.RoleOwner {
		c.Forbidden("only the owner can delete a workspace")
		return
	}

	if err := h.workspaceService.Delete(context.Background(), workspace.ID); err != nil {
		if errors.Is(err, services.ErrWorkspaceHasCompanies) {
			_ = c.JSON(409, map[string]string{"error": "workspace still has companies"})
			return
		}
		c.InternalServerError("failed to delete workspace")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "workspace deleted"})
}

func (h *WorkspaceHandler) ListMembers(c *drift.Context) {
	workspace := middleware.GetWorkspace(c)
	if workspace == nil {
		c.InternalServerError("workspace not resolved")
		return
	}

	members, err := h.workspaceService.GetMembers(context.Background(), workspace.ID)
	if err != nil {
		c.InternalServerError("failed to get members")
		return
	}

	response := make([]dto.MemberResponse, len(members))
	for i, m := range members {
		response[i] = dto.MemberResponse{
			ID:                  m.ID,
			UserID:              m.UserID,
			Role:                m.Role,
			RestrictedToCompany: services.DecodeScope(m.Permissions).RestrictedToCompany,
		}
		if m.User != nil {
			response[i].User = dto.UserResponse{
				ID:            m.User.ID,
				Email:         m.User.Email,
				Name:          m.User.Name,
				EmailVerified: m.User.EmailVerified,
			}
		}
	}

	_ = c.JSON(200, response)
}

func (h *WorkspaceHandler) UpdateMemberRole(c *drift.Context) {
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

	memberID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	var req dto.UpdateMemberRoleRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	err = h.workspaceService.UpdateMemberRole(context.Background(), workspace.ID, memberID, req.Role)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRole) {
			c.BadRequest("invalid role")
			return
		}
		if errors.Is(err, services.ErrMemberNotFound) {
			c.NotFound("member not found")
			return
		}
		c.InternalServerError("failed to update member role")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "role updated"})
}

func (h *WorkspaceHandler) RemoveMember(c *drift.Context) {
	workspace := middleware.GetWorkspace(c)
	access := middleware.GetAccess(c)
	if workspace == nil || access == nil {
		c.InternalServerError("workspace not resolved")
		return
	}

	memberID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	// Members can remove themselves; anything else needs admin access.
	if memberID != middleware.GetUserID(c) && !access.CanManage() {
		c.Forbidden("admin access required")
		return
	}

	err = h.workspaceService.RemoveMember(context.Background(), workspace.ID, memberID)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			c.NotFound("member not found")
			return
		}
		c.InternalServerError("failed to remove member")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "member removed"})
}
