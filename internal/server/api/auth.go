package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/tenanthub/internal/contexts"
	"github.com/looplj/tenanthub/internal/objects"
	"github.com/looplj/tenanthub/internal/server/biz"
)

type AuthHandlersParams struct {
	fx.In

	AuthService         *biz.AuthService
	UserService         *biz.UserService
	OrganizationService *biz.OrganizationService
}

func NewAuthHandlers(params AuthHandlersParams) *AuthHandlers {
	return &AuthHandlers{
		AuthService:         params.AuthService,
		UserService:         params.UserService,
		OrganizationService: params.OrganizationService,
	}
}

type AuthHandlers struct {
	AuthService         *biz.AuthService
	UserService         *biz.UserService
	OrganizationService *biz.OrganizationService
}

type SignUpRequest struct {
	Email     string `json:"email"     binding:"required,email"`
	Password  string `json:"password"  binding:"required,min=8"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type SignInRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SignInResponse struct {
	User  *objects.UserInfo `json:"user"`
	Token string            `json:"token"`
}

// SignUp registers a new user account.
func (h *AuthHandlers) SignUp(c *gin.Context) {
	var (
		ctx = c.Request.Context()
		req SignUpRequest
	)

	err := c.ShouldBindJSON(&req)
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	user, err := h.UserService.CreateUser(ctx, biz.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, biz.ErrEmailTaken) {
			JSONError(c, http.StatusConflict, err)
			return
		}

		JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))

		return
	}

	token, err := h.AuthService.GenerateJWTToken(ctx, user)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))
		return
	}

	c.JSON(http.StatusCreated, SignInResponse{
		User:  h.userInfo(ctx, user),
		Token: token,
	})
}

// SignIn handles user authentication.
func (h *AuthHandlers) SignIn(c *gin.Context) {
	var (
		ctx = c.Request.Context()
		req SignInRequest
	)

	err := c.ShouldBindJSON(&req)
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	user, err := h.AuthService.AuthenticateUser(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, biz.ErrInvalidPassword) {
			JSONError(c, http.StatusUnauthorized, errors.New("invalid email or password"))
			return
		}

		JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))

		return
	}

	token, err := h.AuthService.GenerateJWTToken(ctx, user)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))
		return
	}

	c.JSON(http.StatusOK, SignInResponse{
		User:  h.userInfo(ctx, user),
		Token: token,
	})
}

// Me returns the authenticated user with its organizations.
func (h *AuthHandlers) Me(c *gin.Context) {
	ctx := c.Request.Context()

	user, ok := contexts.GetUser(ctx)
	if !ok {
		JSONError(c, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}

	c.JSON(http.StatusOK, h.userInfo(ctx, user))
}

func (h *AuthHandlers) userInfo(ctx context.Context, user *objects.User) *objects.UserInfo {
	info := &objects.UserInfo{
		ID:            user.ID,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		IsOwner:       user.IsOwner,
		Scopes:        user.Scopes,
		Organizations: []objects.MembershipInfo{},
	}

	memberships, err := h.OrganizationService.ListOrganizationsForUser(ctx, user.ID)
	if err != nil {
		return info
	}

	for _, membership := range memberships {
		info.Organizations = append(info.Organizations, *membership)
	}

	return info
}
