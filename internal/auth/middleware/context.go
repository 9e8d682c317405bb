package auth

import (
	"context"

	"github.com/mind-engage/understanding-check/internal/rbac"
)

// Principal is the authenticated experimenter behind a request.
type Principal struct {
	Sub  string
	Role string
}

type principalKey struct{}

// WithPrincipal stores p and exposes its role to rbac.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	ctx = context.WithValue(ctx, principalKey{}, p)
	return rbac.WithRole(ctx, p.Role)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

func SubjectFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.Sub
}
