package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/tenanthub/internal/contexts"
	"github.com/looplj/tenanthub/internal/server/biz"
	"github.com/looplj/tenanthub/internal/tenancy"
)

type OrganizationHandlersParams struct {
	fx.In

	OrganizationService *biz.OrganizationService
	MembershipService   *biz.MembershipService
	RoleService         *biz.RoleService
	Resolver            *tenancy.OrganizationResolver
}

func NewOrganizationHandlers(params OrganizationHandlersParams) *OrganizationHandlers {
	return &OrganizationHandlers{
		OrganizationService: params.OrganizationService,
		MembershipService:   params.MembershipService,
		RoleService:         params.RoleService,
		Resolver:            params.Resolver,
	}
}

type OrganizationHandlers struct {
	OrganizationService *biz.OrganizationService
	MembershipService   *biz.MembershipService
	RoleService         *biz.RoleService
	Resolver            *tenancy.OrganizationResolver
}

type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

// Create creates an organization with the caller as its owner.
func (h *OrganizationHandlers) Create(c *gin.Context) {
	ctx := c.Request.Context()

	user, ok := contexts.GetUser(ctx)
	if !ok {
		JSONError(c, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}

	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	org, err := h.OrganizationService.CreateOrganization(ctx, biz.CreateOrganizationInput{
		Name:        req.Name,
		Slug:        req.Slug,
		OwnerUserID: user.ID,
	})
	if err != nil {
		if errors.Is(err, biz.ErrSlugTaken) {
			JSONError(c, http.StatusConflict, err)
			return
		}

		JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))

		return
	}

	c.JSON(http.StatusCreated, org)
}

// List returns the organizations the caller is a member of.
func (h *OrganizationHandlers) List(c *gin.Context) {
	ctx := c.Request.Context()

	user, ok := contexts.GetUser(ctx)
	if !ok {
		JSONError(c, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}

	memberships, err := h.OrganizationService.ListOrganizationsForUser(ctx, user.ID)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))
		return
	}

	c.JSON(http.StatusOK, memberships)
}

// Current returns the organization selected by the organization header.
func (h *OrganizationHandlers) Current(c *gin.Context) {
	ctx := c.Request.Context()

	org, ok := h.Resolver.Current(ctx)
	if !ok {
		JSONError(c, http.StatusNotFound, biz.ErrNoCurrentOrganization)
		return
	}

	c.JSON(http.StatusOK, org)
}

type UpdateOrganizationRequest struct {
	Name *string `json:"name"`
}

// Update renames the current organization. Owner or admin role required.
func (h *OrganizationHandlers) Update(c *gin.Context) {
	ctx := c.Request.Context()

	organizationID, ok := contexts.GetTenantID(ctx)
	if !ok {
		JSONError(c, http.StatusBadRequest, biz.ErrNoCurrentOrganization)
		return
	}

	if !h.requireRole(c, "owner", "admin") {
		return
	}

	var req UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	org, err := h.OrganizationService.UpdateOrganization(ctx, organizationID, biz.UpdateOrganizationInput{
		Name: req.Name,
	})
	if err != nil {
		JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))
		return
	}

	// The resolver caches by id; the rename must not serve stale entities.
	h.Resolver.Invalidate(organizationID)

	c.JSON(http.StatusOK, org)
}

// requireRole asserts the caller holds one of the roles in the current
// organization. Responds and returns false otherwise.
func (h *OrganizationHandlers) requireRole(c *gin.Context, codes ...string) bool {
	ctx := c.Request.Context()

	user, ok := contexts.GetUser(ctx)
	if !ok {
		JSONError(c, http.StatusUnauthorized, errors.New("authentication required"))
		return false
	}

	organizationID, ok := contexts.GetTenantID(ctx)
	if !ok {
		JSONError(c, http.StatusBadRequest, biz.ErrNoCurrentOrganization)
		return false
	}

	membership, err := h.MembershipService.GetMembershipForUser(ctx, organizationID, user.ID)
	if err != nil {
		JSONError(c, http.StatusForbidden, errors.New("not a member of the organization"))
		return false
	}

	role, err := h.RoleService.GetRoleByID(ctx, membership.RoleID)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))
		return false
	}

	for _, code := range codes {
		if role.Code == code {
			return true
		}
	}

	JSONError(c, http.StatusForbidden, errors.New("insufficient role"))

	return false
}
