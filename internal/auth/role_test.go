package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carejournal/carejournal/internal/auth"
	"github.com/carejournal/carejournal/internal/user"
)

func TestRoleContext_Predicates(t *testing.T) {
	tests := []struct {
		role      user.Role
		wantAdmin bool
		wantUser  bool
	}{
		{user.RoleAdmin, true, true},
		{user.RoleUser, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			rc := auth.NewRoleContext(auth.Identity{ID: 7, Role: tt.role})

			isAdmin, err := rc.IsAdmin()
			require.NoError(t, err)
			assert.Equal(t, tt.wantAdmin, isAdmin)

			isUser, err := rc.IsUser()
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, isUser)
		})
	}
}

func TestRoleContext_UnknownRoleFails(t *testing.T) {
	rc := auth.NewRoleContext(auth.Identity{ID: 7, Role: user.Role("superuser")})

	_, err := rc.IsAdmin()
	assert.ErrorIs(t, err, auth.ErrUnknownRole)

	_, err = rc.IsUser()
	assert.ErrorIs(t, err, auth.ErrUnknownRole)

	_, err = rc.IsSelfOrAdmin(7)
	assert.ErrorIs(t, err, auth.ErrUnknownRole)
}

func TestRoleContext_IsSelf(t *testing.T) {
	rc := auth.NewRoleContext(auth.Identity{ID: 7, Role: user.RoleUser})

	assert.True(t, rc.IsSelf(7))
	for _, id := range []int64{0, -7, 6, 8} {
		assert.False(t, rc.IsSelf(id), "id %d", id)
	}
}

func TestRoleContext_IsSelfOrAdmin(t *testing.T) {
	member := auth.NewRoleContext(auth.Identity{ID: 7, Role: user.RoleUser})
	admin := auth.NewRoleContext(auth.Identity{ID: 1, Role: user.RoleAdmin})

	ok, err := member.IsSelfOrAdmin(7)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = member.IsSelfOrAdmin(8)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = admin.IsSelfOrAdmin(8)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRoleRank(t *testing.T) {
	admin, err := auth.RoleRank(user.RoleAdmin)
	require.NoError(t, err)
	member, err := auth.RoleRank(user.RoleUser)
	require.NoError(t, err)

	assert.Equal(t, 1, admin)
	assert.Equal(t, 10, member)
	assert.Less(t, admin, member)

	_, err = auth.RoleRank("")
	assert.ErrorIs(t, err, auth.ErrUnknownRole)
}

func TestRoleContextFrom(t *testing.T) {
	_, ok := auth.RoleContextFrom(context.Background())
	assert.False(t, ok)

	rc := auth.NewRoleContext(auth.Identity{ID: 3, Role: user.RoleUser})
	got, ok := auth.RoleContextFrom(auth.WithRoleContext(context.Background(), rc))
	require.True(t, ok)
	assert.Same(t, rc, got)

	_, ok = auth.RoleContextFrom(auth.WithRoleContext(context.Background(), nil))
	assert.False(t, ok)
}
