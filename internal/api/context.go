package api

import "context"

// Identity is the authenticated admin attached to a request after token
// verification.
type Identity struct {
	AccountID string
	Email     string
	Role      string
}

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

func IdentityFromContext(ctx context.Context) *Identity {
	v := ctx.Value(ctxKeyIdentity)
	if v == nil {
		return nil
	}
	id, _ := v.(*Identity)
	return id
}
