// Package auth holds the request identity passed explicitly into every
// service call and the single role/capability check used across domains.
package auth

import "fmt"

// Role is the closed set of account roles.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// ParseRole converts a stored/claimed role string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleClient:
		return RoleClient, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("invalid role %q", s)
}

func (r Role) IsValid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string {
	return string(r)
}

// Capability names an action gated by role.
type Capability int

const (
	CapListUsers Capability = iota
	CapManageAnyUser
	CapChangeRoles
	CapDeleteUsers
)

// Can is the only place that decides what a role may do.
func (r Role) Can(c Capability) bool {
	switch c {
	case CapListUsers, CapManageAnyUser, CapChangeRoles, CapDeleteUsers:
		return r == RoleAdmin
	}
	return false
}

// Viewer is the authenticated requester.
type Viewer struct {
	UserID  int64
	Role    Role
	TokenID string
}

// IsZero reports whether v carries no identity.
func (v Viewer) IsZero() bool {
	return v.UserID == 0
}

// CanManageUser reports whether v may view or edit the account targetID.
func (v Viewer) CanManageUser(targetID int64) bool {
	return v.UserID == targetID || v.Role.Can(CapManageAnyUser)
}
