package middlewares

import (
	"strings"

	"github.com/geocoder89/recipehub/internal/auth"
	"github.com/geocoder89/recipehub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFromContext(c)

		if !ok {
			handlers.RespondUnauthorized(c)
			return
		}

		decision := m.authz.RequireAdmin(p)
		m.recordDecision("admin", decision)

		if decision != auth.Allow {
			handlers.RespondForbidden(c, "Admin access required")
			return
		}

		c.Next()
	}
}

// RequireOwnership lets the owner of the resource named by the path param, or
// an admin, through. A missing resource is a 404 even for non-owners.
func (m *AuthMiddleware) RequireOwnership(res auth.Resource, param string) gin.HandlerFunc {
	label := strings.ToUpper(res.Name[:1]) + res.Name[1:]

	return func(c *gin.Context) {
		p, ok := PrincipalFromContext(c)

		if !ok {
			handlers.RespondUnauthorized(c)
			return
		}

		id, ok := handlers.ParseID(c, param)
		if !ok {
			return
		}

		decision, err := m.authz.AuthorizeResource(c.Request.Context(), p, res, id)

		if err != nil {
			handlers.RespondInternal(c, "Could not verify ownership", err)
			return
		}

		m.recordDecision(res.Name, decision)

		switch decision {
		case auth.Allow:
			c.Next()
		case auth.NotFound:
			handlers.RespondNotFound(c, label+" not found")
		default:
			handlers.RespondForbidden(c, "You do not have permission to modify this "+res.Name)
		}
	}
}

func (m *AuthMiddleware) recordDecision(resource string, d auth.Decision) {
	if m.metrics != nil {
		m.metrics.IncAuthzDecision(resource, d.String())
	}
}
