package auth

import "context"

type roleContextKey struct{}

// WithRoleContext returns a copy of ctx carrying rc.
func WithRoleContext(ctx context.Context, rc *RoleContext) context.Context {
	return context.WithValue(ctx, roleContextKey{}, rc)
}

// RoleContextFrom returns the RoleContext stored in ctx, if any.
func RoleContextFrom(ctx context.Context) (*RoleContext, bool) {
	rc, ok := ctx.Value(roleContextKey{}).(*RoleContext)
	return rc, ok && rc != nil
}
