package domain

import "errors"

// UserStatus marks whether an account may authenticate.
type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// User is the full account record as the service exposes it to librarians.
// Patrons only ever see their own Identity; this type backs the admin
// management surface.
type User struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	Surname  string     `json:"surname"`
	Role     Role       `json:"role"`
	Status   UserStatus `json:"status"`
}
