package ports

import "context"

// LoginInput carries a credential exchange request.
type LoginInput struct {
	Username string
	Password string
}

// RegisterInput carries a new account request. Registration creates the
// account only; it never establishes a session.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Name     string
	Surname  string
}

// AuthResult is the service's answer to a successful credential exchange.
type AuthResult struct {
	Token    string
	Username string
	Role     string
}

// AuthAPI is the credential-exchange collaborator consumed by the session
// service.
type AuthAPI interface {
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
}
