package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bizgrid/bizgrid-api/internal/middleware"
	"github.com/bizgrid/bizgrid-api/internal/models"
	"github.com/bizgrid/bizgrid-api/internal/services"
	"github.com/bizgrid/bizgrid-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type InvitationHandler struct {
	invitationService InvitationServiceInterface
	userService       UserServiceInterface
	resolverService   ResolverServiceInterface
	tokenService      TokenServiceInterface
	jwtService        JWTServiceInterface
}

func NewInvitationHandler(
	invitationService InvitationServiceInterface,
	userService UserServiceInterface,
	resolverService ResolverServiceInterface,
	tokenService TokenServiceInterface,
	jwtService JWTServiceInterface,
) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
		userService:       userService,
		resolverService:   resolverService,
		tokenService:      tokenService,
		jwtService:        jwtService,
	}
}

// Create issues an invitation scoped to the resolved workspace, or to the
// resolved company when the route carries a :company segment.
func (h *InvitationHandler) Create(c *drift.Context) {
	workspace := middleware.GetWorkspace(c)
	if workspace == nil {
		c.InternalServerError("workspace not resolved")
		return
	}
	company := middleware.GetCompany(c)

	var req dto.CreateInvitationRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		c.BadRequest("a valid email is required")
		return
	}

	ctx := context.Background()

	inviter, err := h.userService.GetByID(ctx, middleware.GetUserID(c))
	if err != nil {
		c.Unauthorized("not authenticated")
		return
	}

	invitation, emailSent, err := h.invitationService.Invite(ctx, inviter, workspace, company, req.Email, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRole):
			c.BadRequest("invalid role")
		case errors.Is(err, services.ErrForbidden):
			c.Forbidden("admin access required")
		case errors.Is(err, services.ErrInvitationPending):
			_ = c.JSON(409, map[string]string{"error": "a pending invitation already exists for this email"})
		default:
			c.InternalServerError("failed to create invitation")
		}
		return
	}

	_ = c.JSON(201, dto.InvitationResponse{
		ID:          invitation.ID,
		Email:       invitation.Email,
		Type:        invitation.Type,
		Role:        invitation.Role,
		WorkspaceID: invitation.WorkspaceID,
		CompanyID:   invitation.CompanyID,
		Status:      invitation.Status,
		ExpiresAt:   invitation.ExpiresAt,
		EmailSent:   &emailSent,
	})
}

func (h *InvitationHandler) List(c *drift.Context) {
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

	invitations, err := h.invitationService.ListPending(context.Background(), workspace.ID)
	if err != nil {
		c.InternalServerError("failed to list invitations")
		return
	}

	response := make([]dto.InvitationResponse, len(invitations))
	for i, inv := range invitations {
		response[i] = dto.InvitationResponse{
			ID:          inv.ID,
			Email:       inv.Email,
			Type:        inv.Type,
			Role:        inv.Role,
			WorkspaceID: inv.WorkspaceID,
			CompanyID:   inv.CompanyID,
			Status:      inv.Status,
			ExpiresAt:   inv.ExpiresAt,
		}
	}

	_ = c.JSON(200, response)
}

// Preview is the unauthenticated view behind an invitation token. It exposes
// only what an accept page needs.
func (h *InvitationHandler) Preview(c *drift.Context) {
	ctx := context.Background()

	invitation, err := h.invitationService.GetByToken(ctx, c.Param("token"))
	if err != nil {
		c.NotFound("invitation not found")
		return
	}
	if invitation.Status != models.InvitationStatusPending {
		c.NotFound("invitation not found")
		return
	}
	if time.Now().After(invitation.ExpiresAt) {
		_ = c.JSON(410, map[string]string{"error": "invitation has expired"})
		return
	}

	workspace, err := h.resolverService.ResolveWorkspace(ctx, invitation.WorkspaceID.String())
	if err != nil {
		c.NotFound("invitation not found")
		return
	}

	response := dto.InvitationPreviewResponse{
		Email:         invitation.Email,
		Role:          invitation.Role,
		WorkspaceName: workspace.Name,
		ExpiresAt:     invitation.ExpiresAt,
	}
	if invitation.CompanyID != nil {
		if company, err := h.resolverService.ResolveCompany(ctx, invitation.CompanyID.String(), workspace); err == nil {
			response.CompanyName = &company.Name
		}
	}

	_ = c.JSON(200, response)
}

// Complete retries membership provisioning for an acceptance parked in
// accepted_pending_membership.
func (h *InvitationHandler) Complete(c *drift.Context) {
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

	invitationID, err := uuid.Parse(c.Param("invitationId"))
	if err != nil {
		c.BadRequest("invalid invitation id")
		return
	}

	ctx := context.Background()

	invitation, err := h.invitationService.GetByID(ctx, invitationID)
	if err != nil || invitation.WorkspaceID != workspace.ID {
		c.NotFound("invitation not found")
		return
	}

	if err := h.invitationService.CompleteMembership(ctx, invitationID); err != nil {
		if errors.Is(err, services.ErrInvitationNotFound) {
			c.NotFound("invitation not found")
			return
		}
		c.InternalServerError("failed to complete membership")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "membership provisioned"})
}

// Accept finishes the invitation flow and logs the accepting user straight
// in: the response carries a full session, the same shape login returns.
func (h *InvitationHandler) Accept(c *drift.Context) {
	var req dto.AcceptInvitationRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := context.Background()

	result, err := h.invitationService.Accept(ctx, c.Param("token"), req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvitationNotFound):
			c.NotFound("invitation not found")
		case errors.Is(err, services.ErrInvitationExpired):
			_ = c.JSON(410, map[string]string{"error": "invitation has expired"})
		case errors.Is(err, services.ErrAlreadyMember):
			_ = c.JSON(409, map[string]string{"error": "you are already a member of this workspace"})
		case errors.Is(err, services.ErrMembershipIncomplete):
			_ = c.JSON(500, map[string]string{"error": "acceptance recorded but membership is still being provisioned; contact an administrator"})
		case errors.Is(err, services.ErrEmailTaken):
			_ = c.JSON(409, map[string]string{"error": "an account with this email already exists"})
		default:
			c.InternalServerError("failed to accept invitation")
		}
		return
	}

	tokenPair, err := h.jwtService.GenerateTokenPair(result.User.ID, result.User.Email)
	if err != nil {
		c.InternalServerError("failed to generate tokens")
		return
	}

	tokenHash := services.HashToken(tokenPair.RefreshToken)
	expiresAt := time.Now().Add(h.jwtService.RefreshExpiry())
	if err := h.tokenService.StoreRefreshToken(ctx, result.User.ID, tokenHash, expiresAt); err != nil {
		c.InternalServerError("failed to store refresh token")
		return
	}

	_ = c.JSON(200, dto.AcceptInvitationResponse{
		User: dto.UserResponse{
			ID:            result.User.ID,
			Email:         result.User.Email,
			Name:          result.User.Name,
			EmailVerified: result.User.EmailVerified,
		},
		Token: dto.TokenResponse{
			AccessToken:  tokenPair.AccessToken,
			RefreshToken: tokenPair.RefreshToken,
			ExpiresIn:    tokenPair.ExpiresIn,
		},
		WorkspaceID: result.Invitation.WorkspaceID,
	})
}
