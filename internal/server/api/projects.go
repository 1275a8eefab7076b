package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/tenanthub/internal/server/biz"
)

type ProjectHandlersParams struct {
	fx.In

	ProjectService *biz.ProjectService
}

func NewProjectHandlers(params ProjectHandlersParams) *ProjectHandlers {
	return &ProjectHandlers{
		ProjectService: params.ProjectService,
	}
}

// ProjectHandlers exposes project CRUD under the current organization.
// Every operation runs through the tenant scope, so a project from
// another organization is indistinguishable from a missing one.
type ProjectHandlers struct {
	ProjectService *biz.ProjectService
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *ProjectHandlers) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	project, err := h.ProjectService.CreateProject(ctx, biz.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, biz.ErrNoCurrentOrganization) {
			JSONError(c, http.StatusBadRequest, biz.ErrNoCurrentOrganization)
			return
		}

		JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))

		return
	}

	c.JSON(http.StatusCreated, project)
}

func (h *ProjectHandlers) List(c *gin.Context) {
	ctx := c.Request.Context()

	projects, err := h.ProjectService.ListProjects(ctx)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))
		return
	}

	c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandlers) Get(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid project id"))
		return
	}

	project, err := h.ProjectService.GetProject(ctx, id)
	if err != nil {
		if errors.Is(err, biz.ErrNotFound) {
			JSONError(c, http.StatusNotFound, errors.New("project not found"))
			return
		}

		JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))

		return
	}

	c.JSON(http.StatusOK, project)
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *ProjectHandlers) Update(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid project id"))
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	project, err := h.ProjectService.UpdateProject(ctx, id, biz.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, biz.ErrNotFound) {
			JSONError(c, http.StatusNotFound, errors.New("project not found"))
			return
		}

		JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))

		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandlers) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid project id"))
		return
	}

	if err := h.ProjectService.DeleteProject(ctx, id); err != nil {
		if errors.Is(err, biz.ErrNotFound) {
			JSONError(c, http.StatusNotFound, errors.New("project not found"))
			return
		}

		JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))

		return
	}

	c.Status(http.StatusNoContent)
}
