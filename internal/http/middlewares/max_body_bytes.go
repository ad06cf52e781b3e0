package middlewares

import (
	"net/http"

	"github.com/geocoder89/recipehub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func MaxBodyBytes(max int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.ContentLength > max {
			handlers.RespondError(ctx, http.StatusRequestEntityTooLarge, "Request body too large", "", nil)
			return
		}

		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)

		ctx.Next()
	}
}
