package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/openshelf/libctl/internal/core/domain"
	"github.com/openshelf/libctl/internal/core/ports"
)

// CirculationService drives the borrow/return lifecycle: it rejects illegal
// transitions locally, applies the optimistic availability update, calls the
// service, and reconciles or rolls back when the answer arrives. The backend
// keeps the final word; its rejection of a race (last copy taken first) is a
// recoverable error, not a client bug.
type CirculationService struct {
	borrowings ports.BorrowingAPI
	books      ports.BookAPI
	session    ports.SessionService
	recon      *AvailabilityReconciler
	log        zerolog.Logger
}

func NewCirculationService(
	borrowings ports.BorrowingAPI,
	books ports.BookAPI,
	session ports.SessionService,
	recon *AvailabilityReconciler,
	log zerolog.Logger,
) *CirculationService {
	return &CirculationService{
		borrowings: borrowings,
		books:      books,
		session:    session,
		recon:      recon,
		log:        log,
	}
}

// Borrow checks out one copy of the book for the current session's user.
func (s *CirculationService) Borrow(ctx context.Context, bookID string) (*domain.Borrowing, error) {
	if !CanAccess(s.session.Snapshot(), RequireAuthenticated()) {
		return nil, domain.ErrNotAuthenticated
	}
	if err := s.ensureBook(ctx, bookID); err != nil {
		return nil, err
	}

	_, ticket, err := s.recon.BeginBorrow(bookID)
	if err != nil {
		// Guard failed: no copies lendable, no network call made.
		return nil, err
	}

	record, err := s.borrowings.Borrow(ctx, bookID)
	if err != nil {
		s.recon.Rollback(bookID, ticket)
		s.log.Debug().Err(err).Str("book_id", bookID).Msg("borrow rejected by server")
		return nil, err
	}

	s.confirm(ctx, bookID, ticket)
	s.log.Info().Str("book_id", bookID).Str("borrowing_id", record.ID).Msg("book borrowed")
	return record, nil
}

// Return closes an open loan. Closed loans are rejected locally.
func (s *CirculationService) Return(ctx context.Context, borrowing domain.Borrowing) (*domain.Borrowing, error) {
	if !CanAccess(s.session.Snapshot(), RequireAuthenticated()) {
		return nil, domain.ErrNotAuthenticated
	}
	if !borrowing.CanReturn() {
		return nil, domain.ErrAlreadyReturned
	}
	if err := s.ensureBook(ctx, borrowing.BookID); err != nil {
		return nil, err
	}

	_, ticket, err := s.recon.BeginReturn(borrowing.BookID)
	if err != nil {
		return nil, err
	}

	record, err := s.borrowings.Return(ctx, borrowing.ID)
	if err != nil {
		s.recon.Rollback(borrowing.BookID, ticket)
		s.log.Debug().Err(err).Str("borrowing_id", borrowing.ID).Msg("return rejected by server")
		return nil, err
	}

	s.confirm(ctx, borrowing.BookID, ticket)
	s.log.Info().Str("borrowing_id", record.ID).Msg("book returned")
	return record, nil
}

// Availability returns the client's current view of a book, fetching and
// confirming it first when it has not been seen yet.
func (s *CirculationService) Availability(ctx context.Context, bookID string) (domain.Book, error) {
	if err := s.ensureBook(ctx, bookID); err != nil {
		return domain.Book{}, err
	}
	book, _ := s.recon.View(bookID)
	return book, nil
}

// ensureBook seeds the reconciler with the server's record the first time a
// book is touched.
func (s *CirculationService) ensureBook(ctx context.Context, bookID string) error {
	if _, ok := s.recon.View(bookID); ok {
		return nil
	}
	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		return err
	}
	s.recon.Confirm(*book)
	return nil
}

// confirm replaces the optimistic record with the server's. When the refresh
// itself fails the optimistic value is promoted instead; it matches what the
// server just confirmed doing.
func (s *CirculationService) confirm(ctx context.Context, bookID string, ticket Ticket) {
	if refreshed, err := s.books.GetBook(ctx, bookID); err == nil {
		s.recon.Commit(bookID, ticket, *refreshed)
		return
	} else {
		s.log.Warn().Err(err).Str("book_id", bookID).Msg("could not refresh book after confirmation")
	}
	if view, ok := s.recon.View(bookID); ok {
		s.recon.Commit(bookID, ticket, view)
	}
}
