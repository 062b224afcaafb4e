package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duccv/medrecords-api/internal/apperror"
	"github.com/duccv/medrecords-api/internal/model"
)

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	want := Identity{UserID: "u1", Email: "a@b.co", Role: model.RoleUser}
	ctx := WithIdentity(context.Background(), want)

	got, ok := IdentityFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestFailureContext(t *testing.T) {
	assert.NoError(t, FailureFromContext(context.Background()))

	ctx := WithFailure(context.Background(), apperror.ErrExpiredToken)
	assert.ErrorIs(t, FailureFromContext(ctx), apperror.ErrExpiredToken)
}
