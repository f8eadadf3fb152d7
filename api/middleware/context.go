package middleware

import (
	"context"

	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID      contextKey = "user_id"
	ctxRole        contextKey = "actor_role"
	ctxPermissions contextKey = "permissions"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

func PermissionsFromContext(ctx context.Context) []enums.Permission {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxPermissions).([]enums.Permission); ok {
		return v
	}
	return nil
}

// HasPermission reports whether the authenticated actor carries the permission.
func HasPermission(ctx context.Context, perm enums.Permission) bool {
	for _, candidate := range PermissionsFromContext(ctx) {
		if candidate == perm {
			return true
		}
	}
	return false
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// WithPermissions injects the permission set into the context.
func WithPermissions(ctx context.Context, perms []enums.Permission) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPermissions, perms)
}
