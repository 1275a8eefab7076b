package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/tenanthub/internal/authz"
	"github.com/looplj/tenanthub/internal/build"
	"github.com/looplj/tenanthub/internal/contexts"
	"github.com/looplj/tenanthub/internal/scopes"
	"github.com/looplj/tenanthub/internal/server/biz"
	"github.com/looplj/tenanthub/internal/tenancy"
)

type SystemHandlersParams struct {
	fx.In

	ScopingService *biz.ScopingService
}

func NewSystemHandlers(params SystemHandlersParams) *SystemHandlers {
	return &SystemHandlers{
		ScopingService: params.ScopingService,
	}
}

type SystemHandlers struct {
	ScopingService *biz.ScopingService
}

func (h *SystemHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *SystemHandlers) Version(c *gin.Context) {
	c.JSON(http.StatusOK, build.GetBuildInfo())
}

// scopingAdmin authorizes the cross-tenant diagnostic endpoints. System
// owners qualify, as does any user granted the scoping diagnostics scope.
func scopingAdmin(ctx context.Context) bool {
	if user, ok := contexts.GetUser(ctx); ok && user.IsOwner {
		return true
	}

	return authz.HasScope(ctx, scopes.ScopeReadScoping)
}

// ScopingSummary reports the scoping classification of every registered
// entity.
func (h *SystemHandlers) ScopingSummary(c *gin.Context) {
	ctx := c.Request.Context()

	summary, err := tenancy.RunWithAdminBypass(ctx, scopingAdmin, "scoping-summary",
		func(ctx context.Context) (tenancy.Summary, error) {
			return h.ScopingService.Summary(), nil
		})
	if err != nil {
		h.scopingError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ScopingStats reports per-organization record counts.
func (h *SystemHandlers) ScopingStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := tenancy.RunWithAdminBypass(ctx, scopingAdmin, "scoping-stats",
		func(ctx context.Context) ([]biz.TenantStats, error) {
			return h.ScopingService.CollectTenantStats(ctx)
		})
	if err != nil {
		h.scopingError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ScopingTotals reports system-wide record counts across all organizations.
func (h *SystemHandlers) ScopingTotals(c *gin.Context) {
	ctx := c.Request.Context()

	totals, err := tenancy.RunWithAdminBypass(ctx, scopingAdmin, "scoping-totals",
		func(ctx context.Context) (biz.Totals, error) {
			return h.ScopingService.CollectTotals(ctx)
		})
	if err != nil {
		h.scopingError(c, err)
		return
	}

	c.JSON(http.StatusOK, totals)
}

func (h *SystemHandlers) scopingError(c *gin.Context, err error) {
	var denied *tenancy.AdminAuthorizationError
	if errors.As(err, &denied) {
		JSONError(c, http.StatusForbidden, errors.New("admin access required"))
		return
	}

	var disabled *tenancy.ScopingDisabledError
	if errors.As(err, &disabled) {
		JSONError(c, http.StatusServiceUnavailable, errors.New("scoping bypasses are disabled"))
		return
	}

	JSONError(c, http.StatusInternalServerError, errors.New("internal server error"))
}
