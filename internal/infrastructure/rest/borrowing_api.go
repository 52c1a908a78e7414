package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/openshelf/libctl/internal/core/domain"
	"github.com/openshelf/libctl/internal/core/ports"
)

var _ ports.BorrowingAPI = (*Client)(nil)

// Borrow checks out a copy of the book for the authenticated user. A 409
// answer means another caller took the last copy first; that maps to
// domain.ErrBookUnavailable so the caller can roll back its optimistic
// update and offer a retry.
func (c *Client) Borrow(ctx context.Context, bookID string) (*domain.Borrowing, error) {
	q := url.Values{}
	q.Set("bookId", bookID)

	var record domain.Borrowing
	if err := c.post(ctx, "/borrowings", q, nil, &record); err != nil {
		return nil, mapStatus(err, http.StatusConflict, domain.ErrBookUnavailable)
	}
	return &record, nil
}

// Return closes an open loan.
func (c *Client) Return(ctx context.Context, borrowingID string) (*domain.Borrowing, error) {
	var record domain.Borrowing
	if err := c.put(ctx, "/borrowings/"+borrowingID+"/return", nil, &record); err != nil {
		return nil, mapStatus(err, http.StatusNotFound, domain.ErrBorrowingNotFound)
	}
	return &record, nil
}

func (c *Client) MyHistory(ctx context.Context) ([]domain.Borrowing, error) {
	var records []domain.Borrowing
	if err := c.get(ctx, "/borrowings/my-history", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) MyActive(ctx context.Context) ([]domain.Borrowing, error) {
	var records []domain.Borrowing
	if err := c.get(ctx, "/borrowings/my-active", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) ListAll(ctx context.Context) ([]domain.Borrowing, error) {
	var records []domain.Borrowing
	if err := c.get(ctx, "/borrowings", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) ListByUser(ctx context.Context, userID string, activeOnly bool) ([]domain.Borrowing, error) {
	path := "/borrowings/user/" + userID
	if activeOnly {
		path += "/active"
	}

	var records []domain.Borrowing
	if err := c.get(ctx, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CreateForUser is the librarian's checkout-on-behalf operation; the service
// takes it form-encoded.
func (c *Client) CreateForUser(ctx context.Context, bookID, userID string) (*domain.Borrowing, error) {
	form := url.Values{}
	form.Set("bookId", bookID)
	form.Set("userId", userID)

	var record domain.Borrowing
	if err := c.postForm(ctx, "/borrowings/librarian", form, &record); err != nil {
		return nil, mapStatus(err, http.StatusConflict, domain.ErrBookUnavailable)
	}
	return &record, nil
}

func (c *Client) Delete(ctx context.Context, borrowingID string) error {
	return mapStatus(c.delete(ctx, "/borrowings/"+borrowingID), http.StatusNotFound, domain.ErrBorrowingNotFound)
}

// OverdueReport fetches the plain-text overdue loans report.
func (c *Client) OverdueReport(ctx context.Context) (string, error) {
	return c.getText(ctx, "/borrowings/overdue-report")
}
