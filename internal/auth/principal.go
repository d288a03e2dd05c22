package auth

import "context"

// Principal is the authenticated identity attached to a request, exposed as a
// flat attribute map so the logging layer can read whichever fields are
// configured (user id field, user display field) without knowing the identity
// schema.
type Principal struct {
	Claims map[string]any
}

// Field returns the named attribute, or nil when the principal or the
// attribute is absent. A missing attribute is a normal case, not an error.
func (p *Principal) Field(name string) any {
	if p == nil {
		return nil
	}
	return p.Claims[name]
}

type contextKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFromContext returns the request's principal, or nil for anonymous
// requests.
func PrincipalFromContext(ctx context.Context) *Principal {
	if ctx == nil {
		return nil
	}
	p, _ := ctx.Value(contextKey{}).(*Principal)
	return p
}
