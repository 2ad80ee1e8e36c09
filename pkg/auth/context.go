package auth

import "context"

type ctxKey int

const (
	userIDKey ctxKey = iota
	roleKey
)

// ContextWithUserID stores the authenticated user id
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id, "" when unauthenticated
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// ContextWithClaims stores the user id and role of validated claims
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	ctx = ContextWithUserID(ctx, claims.UserID())
	return context.WithValue(ctx, roleKey, claims.Role)
}

// RoleFromContext returns the role of the authenticated caller
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}
