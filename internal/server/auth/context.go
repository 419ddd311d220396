package auth

import (
	"context"

	"github.com/dmitrijs2005/rabetweb/internal/server/models"
)

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying the verified principal.
func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal, if any.
func PrincipalFromContext(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*models.Principal)
	return p, ok && p != nil
}
