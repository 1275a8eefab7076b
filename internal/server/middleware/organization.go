package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/looplj/tenanthub/internal/contexts"
	"github.com/looplj/tenanthub/internal/log"
	"github.com/looplj/tenanthub/internal/server/biz"
)

// OrganizationHeader selects the tenant of the request.
const OrganizationHeader = "TH-Organization-Id"

// WithOrganization resolves the organization header to the ambient tenant.
// The header is optional: requests without it stay tenant-less and read empty
// sets from tenant-scoped entities. A header naming an organization the user
// is not a member of is rejected.
func WithOrganization(memberships *biz.MembershipService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(OrganizationHeader)
		if header == "" {
			c.Next()
			return
		}

		organizationID, err := strconv.ParseInt(header, 10, 64)
		if err != nil {
			AbortWithError(c, http.StatusBadRequest, errors.New("invalid organization ID"))
			return
		}

		user, ok := contexts.GetUser(c.Request.Context())
		if !ok {
			AbortWithError(c, http.StatusUnauthorized, errors.New("authentication required"))
			return
		}

		_, err = memberships.GetMembershipForUser(c.Request.Context(), organizationID, user.ID)
		if err != nil {
			if errors.Is(err, biz.ErrNotOrganizationMember) {
				AbortWithError(c, http.StatusForbidden, errors.New("not a member of the organization"))
			} else {
				AbortWithError(c, http.StatusInternalServerError, errors.New("failed to check membership"))
			}

			return
		}

		ctx := contexts.WithTenantID(c.Request.Context(), organizationID)
		c.Request = c.Request.WithContext(ctx)

		log.Debug(ctx, "tenant selected",
			log.Int64("organization_id", organizationID),
			log.Int64("user_id", user.ID),
		)

		c.Next()
	}
}
