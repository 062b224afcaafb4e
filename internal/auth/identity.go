package auth

import (
	"context"

	"github.com/duccv/medrecords-api/internal/constant"
	"github.com/duccv/medrecords-api/internal/model"
)

// Identity is the authenticated principal of one request. It is attached to
// the request context once and never modified afterwards.
type Identity struct {
	UserID string
	Email  string
	Role   model.Role
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, constant.IdentityKey, id)
}

// IdentityFromContext returns the identity attached by the authentication
// filter, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(constant.IdentityKey).(Identity)
	return id, ok
}

// WithFailure records why a presented token was rejected.
func WithFailure(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, constant.AuthFailureKey, err)
}

func FailureFromContext(ctx context.Context) error {
	err, _ := ctx.Value(constant.AuthFailureKey).(error)
	return err
}
