package actorctx

import (
	"context"

	"github.com/geocoder89/recipehub/internal/auth"
)

type ctxKey struct{}

// WithPrincipal attaches the authenticated principal to ctx so code below
// the HTTP layer (stores, loggers) can see who is acting.
func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFrom returns the principal on ctx; anonymous principals report
// false.
func PrincipalFrom(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(auth.Principal)

	return p, ok && !p.IsAnonymous()
}
