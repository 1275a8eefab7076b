package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/tenanthub/internal/server/biz"
)

type MembershipHandlersParams struct {
	fx.In

	MembershipService *biz.MembershipService
	UserService       *biz.UserService
	RoleService       *biz.RoleService
	Organizations     *OrganizationHandlers
}

type MembershipHandlers struct {
	MembershipService *biz.MembershipService
	UserService       *biz.UserService
	RoleService       *biz.RoleService
	Organizations     *OrganizationHandlers
}

func NewMembershipHandlers(params MembershipHandlersParams) *MembershipHandlers {
	return &MembershipHandlers{
		MembershipService: params.MembershipService,
		UserService:       params.UserService,
		RoleService:       params.RoleService,
		Organizations:     params.Organizations,
	}
}

// List returns the memberships of the current organization with user and
// role details joined in.
func (h *MembershipHandlers) List(c *gin.Context) {
	ctx := c.Request.Context()

	infos, err := h.MembershipService.ListMembershipInfos(ctx)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))
		return
	}

	c.JSON(http.StatusOK, infos)
}

type CreateMembershipRequest struct {
	Email    string `json:"email" binding:"required,email"`
	RoleCode string `json:"role_code" binding:"required"`
}

// Create invites a user into the current organization by email.
func (h *MembershipHandlers) Create(c *gin.Context) {
	ctx := c.Request.Context()

	if !h.Organizations.requireRole(c, "owner", "admin") {
		return
	}

	var req CreateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	user, err := h.UserService.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, biz.ErrNotFound) {
			JSONError(c, http.StatusNotFound, errors.New("user not found"))
			return
		}

		JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))

		return
	}

	role, err := h.RoleService.GetRoleByCode(ctx, req.RoleCode)
	if err != nil {
		if errors.Is(err, biz.ErrNotFound) {
			JSONError(c, http.StatusNotFound, errors.New("role not found"))
			return
		}

		JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))

		return
	}

	membership, err := h.MembershipService.CreateMembership(ctx, biz.CreateMembershipInput{
		UserID: user.ID,
		RoleID: role.ID,
	})
	if err != nil {
		switch {
		case errors.Is(err, biz.ErrAlreadyMember):
			JSONError(c, http.StatusConflict, err)
		case errors.Is(err, biz.ErrNoCurrentOrganization):
			JSONError(c, http.StatusBadRequest, err)
		default:
			JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))
		}

		return
	}

	c.JSON(http.StatusCreated, membership)
}

type UpdateMembershipRequest struct {
	RoleCode string `json:"role_code" binding:"required"`
}

// Update changes a member's role in the current organization.
func (h *MembershipHandlers) Update(c *gin.Context) {
	ctx := c.Request.Context()

	if !h.Organizations.requireRole(c, "owner", "admin") {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid membership id"))
		return
	}

	var req UpdateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	role, err := h.RoleService.GetRoleByCode(ctx, req.RoleCode)
	if err != nil {
		if errors.Is(err, biz.ErrNotFound) {
			JSONError(c, http.StatusNotFound, errors.New("role not found"))
			return
		}

		JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))

		return
	}

	membership, err := h.MembershipService.UpdateMembershipRole(ctx, id, role.ID)
	if err != nil {
		if errors.Is(err, biz.ErrNotFound) {
			JSONError(c, http.StatusNotFound, errors.New("membership not found"))
			return
		}

		JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))

		return
	}

	c.JSON(http.StatusOK, membership)
}

// Delete removes a member from the current organization.
func (h *MembershipHandlers) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	if !h.Organizations.requireRole(c, "owner", "admin") {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid membership id"))
		return
	}

	if err := h.MembershipService.DeleteMembership(ctx, id); err != nil {
		if errors.Is(err, biz.ErrNotFound) {
			JSONError(c, http.StatusNotFound, errors.New("membership not found"))
			return
		}

		JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))

		return
	}

	c.Status(http.StatusNoContent)
}
