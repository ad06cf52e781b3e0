package middlewares

import (
	"log/slog"

	"github.com/geocoder89/recipehub/internal/actorctx"
	"github.com/geocoder89/recipehub/internal/auth"
	"github.com/geocoder89/recipehub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// AuthMetrics is the slice of the prometheus registry the auth middlewares
// report into. Keep it small so tests can pass nil.
type AuthMetrics interface {
	IncAuthRejection(strategy, reason string)
	IncAuthzDecision(resource, decision string)
}

type AuthMiddleware struct {
	authn    auth.Authenticator
	authz    *auth.Authorizer
	strategy string
	metrics  AuthMetrics
}

func NewAuthMiddleware(authn auth.Authenticator, authz *auth.Authorizer, strategy string, metrics AuthMetrics) *AuthMiddleware {
	return &AuthMiddleware{
		authn:    authn,
		authz:    authz,
		strategy: strategy,
		metrics:  metrics,
	}
}

// RequireAuth rejects requests without a valid artifact with a generic 401.
// The precise reason only reaches logs and metrics.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := m.authn.Authenticate(c.Request)

		if err != nil {
			if !auth.IsRejection(err) {
				handlers.RespondInternal(c, "Could not authenticate request", err)
				return
			}

			m.reject(c, err)
			handlers.RespondUnauthorized(c)
			return
		}

		attach(c, p)
		c.Next()
	}
}

// OptionalAuth never rejects. Missing or invalid artifacts leave the request
// anonymous.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := m.authn.Authenticate(c.Request)

		switch {
		case err == nil:
			attach(c, p)
		case auth.IsRejection(err):
			if auth.RejectReason(err) != "missing" {
				m.reject(c, err)
			}
			attach(c, auth.Anonymous)
		default:
			slog.Default().WarnContext(c.Request.Context(), "optional_auth_failed",
				"strategy", m.strategy,
				"err", err,
			)
			attach(c, auth.Anonymous)
		}

		c.Next()
	}
}

func (m *AuthMiddleware) reject(c *gin.Context, err error) {
	reason := auth.RejectReason(err)

	c.Set(CtxAuthReason, reason)

	slog.Default().InfoContext(c.Request.Context(), "auth_rejected",
		"strategy", m.strategy,
		"reason", reason,
		"route", c.FullPath(),
		"request_id", c.GetString(CtxRequestID),
	)

	if m.metrics != nil {
		m.metrics.IncAuthRejection(m.strategy, reason)
	}
}

func attach(c *gin.Context, p auth.Principal) {
	c.Set(CtxPrincipal, p)
	c.Request = c.Request.WithContext(actorctx.WithPrincipal(c.Request.Context(), p))
}

// PrincipalFromContext returns the authenticated principal; anonymous and
// absent principals report false.
func PrincipalFromContext(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(CtxPrincipal)
	if !ok {
		return auth.Anonymous, false
	}

	p, ok := v.(auth.Principal)
	if !ok || p.IsAnonymous() {
		return auth.Anonymous, false
	}

	return p, true
}
