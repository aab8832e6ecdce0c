package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/invoicer/internal/observability/context"
	"github.com/smallbiznis/invoicer/internal/orgcontext"
)

const HeaderOrg = "X-Org-ID"

// OrgContext resolves the tenant from the X-Org-ID header and stores it on
// the request context. Requests without a valid header are rejected.
func OrgContext() gin.HandlerFunc {
	return orgContext(true)
}

// optionalOrgContext is OrgContext for routes that also serve anonymous
// callers.
func optionalOrgContext() gin.HandlerFunc {
	return orgContext(false)
}

func orgContext(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderOrg))
		if raw == "" {
			if required {
				AbortWithError(c, ErrMissingOrganization)
				return
			}
			c.Next()
			return
		}

		orgID, err := snowflake.ParseString(raw)
		if err != nil || orgID == 0 {
			AbortWithError(c, newValidationError("organization_id", "invalid_organization", "invalid X-Org-ID header"))
			return
		}

		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)
		ctx = obscontext.WithOrgID(ctx, orgID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
