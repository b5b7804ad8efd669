package auth

import "context"

// Principal is the identity reconstructed from a verified access token. It is
// built purely from claims; no database access happens on the request path.
type Principal struct {
	ID          uint
	Username    string
	Email       string
	Permissions map[string]struct{}
}

func NewPrincipal(claims *AccessClaims) *Principal {
	permissions := make(map[string]struct{}, len(claims.Permissions))
	for _, p := range claims.Permissions {
		permissions[p] = struct{}{}
	}

	return &Principal{
		ID:          claims.ID,
		Username:    claims.Username,
		Email:       claims.Email,
		Permissions: permissions,
	}
}

func (p *Principal) HasPermission(abbreviation string) bool {
	if p == nil {
		return false
	}
	_, ok := p.Permissions[abbreviation]
	return ok
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the request's principal, or nil when the
// request is unauthenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	if v := ctx.Value(principalKey{}); v != nil {
		if p, ok := v.(*Principal); ok {
			return p
		}
	}
	return nil
}
