package models

import (
	"context"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Role   types.UserRole
	Token  string
}

func (p *Principal) IsAnonymous() bool {
	return p == nil || p.UserID == ""
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns nil for anonymous requests.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
