package ports

import (
	"context"

	"github.com/openshelf/libctl/internal/core/domain"
)

// UserPage is one page of a paginated user listing.
type UserPage struct {
	Content       []domain.User
	TotalElements int64
	TotalPages    int
	First         bool
	Last          bool
}

// UserInput carries the librarian-editable fields of an account.
type UserInput struct {
	Username string
	Email    string
	Password string
	Name     string
	Surname  string
	Role     domain.Role
	Status   domain.UserStatus
}

// UserAPI is the account management surface, librarian-only end to end.
type UserAPI interface {
	ListUsers(ctx context.Context, page PageRequest) (*UserPage, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, input UserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, input UserInput) (*domain.User, error)
	DeactivateUser(ctx context.Context, id string) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}
