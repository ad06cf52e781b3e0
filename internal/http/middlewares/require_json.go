package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/recipehub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// RequireJSON rejects bodies that are not JSON. Bodyless writes such as
// POST /favorites/:id are let through.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if c.Request.ContentLength == 0 {
				break
			}
			ct := c.GetHeader("Content-Type")
			// allow "application/json; charset=utf-8"
			if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
				handlers.RespondError(c, http.StatusUnsupportedMediaType, "Content-Type must be application/json", "", nil)
				return
			}
		}
		c.Next()
	}
}
