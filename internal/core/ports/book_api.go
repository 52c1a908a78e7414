package ports

import (
	"context"

	"github.com/openshelf/libctl/internal/core/domain"
)

// PageRequest selects a slice of a paginated listing. Pages are zero-based,
// matching the service's pagination contract.
type PageRequest struct {
	Page int
	Size int
}

// BookPage is one page of a paginated book listing.
type BookPage struct {
	Content       []domain.Book
	TotalElements int64
	TotalPages    int
	First         bool
	Last          bool
}

// SearchBooksInput holds the optional search filters; empty fields are
// omitted from the query.
type SearchBooksInput struct {
	Title  string
	Author string
	ISBN   string
	Genre  string
	PageRequest
}

// BookInput carries the librarian-editable fields of a book.
type BookInput struct {
	Name          string
	ISBN          string
	Author        string
	Publisher     string
	NumberOfPages int
	Quantity      int
	Genre         string
}

// BookAPI is the catalog read/write surface. Mutating operations require the
// librarian role; the client gates them locally and the server enforces them.
type BookAPI interface {
	ListBooks(ctx context.Context, page PageRequest) (*BookPage, error)
	SearchBooks(ctx context.Context, input SearchBooksInput) (*BookPage, error)
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error)
	CreateBook(ctx context.Context, input BookInput) (*domain.Book, error)
	UpdateBook(ctx context.Context, id string, input BookInput) (*domain.Book, error)
	UpdateAvailableQuantity(ctx context.Context, id string, availableQuantity int) (*domain.Book, error)
	DeleteBook(ctx context.Context, id string) error
	BookGenres(ctx context.Context) ([]string, error)
}
