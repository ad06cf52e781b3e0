package middlewares

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)

		if id == "" {
			id = uuid.NewString()
		}

		ctx.Writer.Header().Set(requestIDHeader, id)
		ctx.Set(CtxRequestID, id)

		ctx.Next()
	}
}

func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		route := ctx.FullPath()
		if route == "" {
			route = ctx.Request.URL.Path // fallback (e.g. 404)
		}

		method := ctx.Request.Method

		ctx.Next()

		lat := time.Since(start)
		status := ctx.Writer.Status()

		logAttrs := []any{
			"method", method,
			"route", route,
			"status", status,
			"latency_ms", lat.Milliseconds(),
			"request_id", ctx.GetString(CtxRequestID),
		}

		if reason := ctx.GetString(CtxAuthReason); reason != "" {
			logAttrs = append(logAttrs, "auth_reason", reason)
		}

		// the request context carries the principal, which the trace
		// handler stamps as user_id
		log.InfoContext(ctx.Request.Context(), "http_request", logAttrs...)
	}
}

// ExposeErrors marks whether internal error detail may be returned to
// clients. It is false in prod.
func ExposeErrors(expose bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(CtxExposeErrors, expose)
		ctx.Next()
	}
}
