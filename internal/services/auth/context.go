package auth

import "context"

type identityKey struct{}

// Identity is the authenticated caller; UserID scopes every draft it touches.
type Identity struct {
	UserID int64
	Role   string
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}

// OwnerID returns the draft owner of the request, if authenticated.
func OwnerID(ctx context.Context) (int64, bool) {
	identity, ok := IdentityFromContext(ctx)
	if !ok || identity.UserID <= 0 {
		return 0, false
	}
	return identity.UserID, true
}
