package auth

import (
	"errors"
	"fmt"

	"github.com/carejournal/carejournal/internal/user"
)

// ErrUnknownRole is returned when an identity carries a role label that has
// no rank. Unknown roles are never given a default rank.
var ErrUnknownRole = errors.New("unknown role")

// roleRanks maps role labels to privilege ranks. A lower rank is more
// privileged.
var roleRanks = map[user.Role]int{
	user.RoleAdmin: 1,
	user.RoleUser:  10,
}

// RoleRank returns the rank of role.
func RoleRank(role user.Role) (int, error) {
	rank, ok := roleRanks[role]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, string(role))
	}
	return rank, nil
}

// Identity is the authenticated caller of one request.
type Identity struct {
	ID           int64
	Role         user.Role
	DepartmentID *int64
}

// IdentityFromUser projects a stored user onto an Identity.
func IdentityFromUser(u *user.User) Identity {
	return Identity{
		ID:           u.ID,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
	}
}

// RoleContext answers authorization questions about one Identity. It is
// built once per request and never mutated.
type RoleContext struct {
	identity Identity
}

// NewRoleContext binds a RoleContext to identity.
func NewRoleContext(identity Identity) *RoleContext {
	return &RoleContext{identity: identity}
}

// Identity returns the bound identity.
func (rc *RoleContext) Identity() Identity {
	return rc.identity
}

// UserID returns the bound identity's ID.
func (rc *RoleContext) UserID() int64 {
	return rc.identity.ID
}

// IsAdmin reports whether the identity's rank is exactly the admin rank.
func (rc *RoleContext) IsAdmin() (bool, error) {
	return rc.rankIs(user.RoleAdmin, func(have, want int) bool { return have == want })
}

// IsUser reports whether the identity is at least as privileged as a base
// user. Every known role satisfies this.
func (rc *RoleContext) IsUser() (bool, error) {
	return rc.rankIs(user.RoleUser, func(have, want int) bool { return have <= want })
}

// IsSelf reports whether id is the bound identity's ID.
func (rc *RoleContext) IsSelf(id int64) bool {
	return id == rc.identity.ID
}

// IsSelfOrAdmin reports whether the identity is an admin or owns id.
func (rc *RoleContext) IsSelfOrAdmin(id int64) (bool, error) {
	admin, err := rc.IsAdmin()
	if err != nil {
		return false, err
	}
	return admin || rc.IsSelf(id), nil
}

func (rc *RoleContext) rankIs(target user.Role, cmp func(have, want int) bool) (bool, error) {
	have, err := RoleRank(rc.identity.Role)
	if err != nil {
		return false, err
	}
	want, err := RoleRank(target)
	if err != nil {
		return false, err
	}
	return cmp(have, want), nil
}
