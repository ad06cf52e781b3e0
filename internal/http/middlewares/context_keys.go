package middlewares

import "github.com/geocoder89/recipehub/internal/http/handlers"

const (
	CtxRequestID    = handlers.CtxRequestID
	CtxExposeErrors = handlers.CtxExposeErrors
	CtxPrincipal    = "auth.principal"
	CtxAuthReason   = "auth.reason"
)
