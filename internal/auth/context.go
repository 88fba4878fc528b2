package auth

import (
	"context"

	"f1league-app/internal/model"
)

type roleKey struct{}

// WithRole stores the caller's role in ctx.
func WithRole(ctx context.Context, role model.Role) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// RoleFromContext returns the caller's role, viewer when none was set.
func RoleFromContext(ctx context.Context) model.Role {
	if role, ok := ctx.Value(roleKey{}).(model.Role); ok && role != "" {
		return role
	}
	return model.RoleViewer
}

func IsAdmin(ctx context.Context) bool {
	return RoleFromContext(ctx) == model.RoleAdmin
}
