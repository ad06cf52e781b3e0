package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/geocoder89/recipehub/internal/apperr"
	"github.com/gin-gonic/gin"
)

const (
	CtxRequestID    = "request_id"
	CtxExposeErrors = "expose_errors"
)

// Envelope is the shape of every api response body.
type Envelope struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func exposeErrors(ctx *gin.Context) bool {
	return ctx.GetBool(CtxExposeErrors)
}

func RespondOK(ctx *gin.Context, status int, message string, data interface{}) {
	ctx.JSON(status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondError aborts the chain, so middlewares and handlers share it.
func RespondError(ctx *gin.Context, status int, message, errText string, details interface{}) {
	ctx.AbortWithStatusJSON(status, Envelope{
		Success:   false,
		Message:   message,
		Error:     errText,
		RequestID: requestIDFrom(ctx),
		Details:   details,
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, message, "", details)
}

// RespondUnauthorized never says which check failed.
func RespondUnauthorized(ctx *gin.Context) {
	RespondError(ctx, http.StatusUnauthorized, "Authentication required", "", nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, message, "", nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message, "", nil)
}

func RespondConflict(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusConflict, message, "", nil)
}

// RespondInternal logs the cause and only returns it to the client outside
// prod.
func RespondInternal(ctx *gin.Context, message string, err error) {
	slog.Default().ErrorContext(ctx.Request.Context(), "request_failed",
		"message", message,
		"err", err,
		"route", ctx.FullPath(),
		"request_id", requestIDFrom(ctx),
	)

	errText := ""
	if err != nil && exposeErrors(ctx) {
		errText = err.Error()
	}

	RespondError(ctx, http.StatusInternalServerError, message, errText, nil)
}

// RespondAppError renders a classified error with its status.
func RespondAppError(ctx *gin.Context, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		RespondInternal(ctx, "Internal server error", err)
		return
	}

	if ae.Kind == apperr.KindInternal {
		RespondInternal(ctx, ae.Message, ae.Err)
		return
	}

	RespondError(ctx, ae.Kind.Status(), ae.Message, "", nil)
}

// ParseID reads a positive integer path parameter, answering 400 otherwise.
func ParseID(ctx *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(param), 10, 64)

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "Invalid "+param, nil)
		return 0, false
	}

	return id, true
}
