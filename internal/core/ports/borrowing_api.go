package ports

import (
	"context"

	"github.com/openshelf/libctl/internal/core/domain"
)

// BorrowingAPI is the loan surface of the catalog service. Borrow and Return
// return the server-authoritative record (server-assigned id and dates);
// the client never fabricates either.
type BorrowingAPI interface {
	Borrow(ctx context.Context, bookID string) (*domain.Borrowing, error)
	Return(ctx context.Context, borrowingID string) (*domain.Borrowing, error)

	MyHistory(ctx context.Context) ([]domain.Borrowing, error)
	MyActive(ctx context.Context) ([]domain.Borrowing, error)

	// Librarian-only operations.
	ListAll(ctx context.Context) ([]domain.Borrowing, error)
	ListByUser(ctx context.Context, userID string, activeOnly bool) ([]domain.Borrowing, error)
	CreateForUser(ctx context.Context, bookID, userID string) (*domain.Borrowing, error)
	Delete(ctx context.Context, borrowingID string) error
	OverdueReport(ctx context.Context) (string, error)
}
