package auth

import "time"

// Role is the sole basis for authorization decisions.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleContributor Role = "contributor"
	RoleUser        Role = "user"
)

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleContributor, RoleUser}
}

// ParseRole validates a stored or submitted role value.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleContributor, RoleUser:
		return Role(s), true
	}
	return "", false
}

// Principal is the authenticated identity attached to a request. A nil
// *Principal means the request is anonymous.
type Principal struct {
	ID       int64
	Username string
	Role     Role
}

// User is the slim credential view needed to authenticate. Full account
// management lives in the users package.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
