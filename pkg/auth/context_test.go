package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextWithClaims(t *testing.T) {
	ctx := ContextWithClaims(context.Background(), &Claims{EntityID: "u1", Role: "admin"})

	assert.Equal(t, "u1", UserIDFromContext(ctx))
	assert.Equal(t, "admin", RoleFromContext(ctx))
}

func TestContextAccessors_Empty(t *testing.T) {
	assert.Empty(t, UserIDFromContext(context.Background()))
	assert.Empty(t, RoleFromContext(context.Background()))
}

func TestContextWithUserID_HasNoRole(t *testing.T) {
	ctx := ContextWithUserID(context.Background(), "u2")

	assert.Equal(t, "u2", UserIDFromContext(ctx))
	assert.Empty(t, RoleFromContext(ctx))
}
