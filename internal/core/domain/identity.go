package domain

import "errors"

// Role is the closed set of roles the catalog service issues.
type Role string

const (
	RolePatron    Role = "PATRON"
	RoleLibrarian Role = "LIBRARIAN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatron, RoleLibrarian:
		return true
	}
	return false
}

// ParseRole converts a wire-format role string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

// Identity is the client's belief about who is logged in. It is created on a
// successful login or session restore and destroyed on logout or expiry.
type Identity struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

var (
	ErrUnknownRole        = errors.New("unknown role")
	ErrTokenInvalid       = errors.New("token is malformed or unreadable")
	ErrSessionExpired     = errors.New("session has expired")
	ErrUnauthorized       = errors.New("request was not authorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
)
