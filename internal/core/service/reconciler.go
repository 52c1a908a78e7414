package service

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/openshelf/libctl/internal/core/domain"
)

// Ticket identifies one optimistic update. Commit and Rollback ignore
// tickets that a newer update has superseded, so a stale server response can
// never clobber fresher state.
type Ticket uint64

// bookEntry is the per-book state machine:
//
//	Confirmed(v) -> Pending(optimistic, confirmed) -> Confirmed(server)
//	                                               -> Confirmed(previous)
//
// pending == nil means Confirmed.
type bookEntry struct {
	confirmed domain.Book
	pending   *domain.Book
	ticket    Ticket
}

// AvailabilityReconciler keeps the client's view of each book's lendable
// copy count consistent while borrow/return calls are in flight. The remote
// service stays the source of truth; this view is optimistic and reconciled
// on every confirmation.
type AvailabilityReconciler struct {
	log zerolog.Logger

	mu         sync.Mutex
	books      map[string]*bookEntry
	nextTicket Ticket
}

func NewAvailabilityReconciler(log zerolog.Logger) *AvailabilityReconciler {
	return &AvailabilityReconciler{
		log:   log,
		books: make(map[string]*bookEntry),
	}
}

// Confirm installs a server-authoritative record, replacing any optimistic
// value wholesale. Server wins.
func (r *AvailabilityReconciler) Confirm(book domain.Book) {
	assertConsistent(book)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.books[book.ID] = &bookEntry{confirmed: book}
}

// View returns the book as the UI should currently render it: the optimistic
// value while an update is pending, otherwise the last confirmed record.
func (r *AvailabilityReconciler) View(id string) (domain.Book, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.books[id]
	if !ok {
		return domain.Book{}, false
	}
	if entry.pending != nil {
		return *entry.pending, true
	}
	return entry.confirmed, true
}

// BeginBorrow applies the optimistic decrement for a borrow. It fails with
// domain.ErrBookUnavailable when no copy is lendable, so the caller rejects
// the borrow without a network round trip.
func (r *AvailabilityReconciler) BeginBorrow(id string) (domain.Book, Ticket, error) {
	return r.begin(id, func(b domain.Book) (domain.Book, error) {
		if !b.CanBorrow() {
			return b, domain.ErrBookUnavailable
		}
		b.AvailableQuantity--
		return b, nil
	})
}

// BeginReturn applies the optimistic increment for a return, capped at the
// total quantity.
func (r *AvailabilityReconciler) BeginReturn(id string) (domain.Book, Ticket, error) {
	return r.begin(id, func(b domain.Book) (domain.Book, error) {
		if b.AvailableQuantity < b.Quantity {
			b.AvailableQuantity++
		}
		return b, nil
	})
}

func (r *AvailabilityReconciler) begin(id string, apply func(domain.Book) (domain.Book, error)) (domain.Book, Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.books[id]
	if !ok {
		return domain.Book{}, 0, fmt.Errorf("%w: %s", domain.ErrBookNotFound, id)
	}

	base := entry.confirmed
	if entry.pending != nil {
		base = *entry.pending
	}

	next, err := apply(base)
	if err != nil {
		return domain.Book{}, 0, err
	}
	assertConsistent(next)

	r.nextTicket++
	entry.pending = &next
	entry.ticket = r.nextTicket
	return next, r.nextTicket, nil
}

// Commit resolves a pending update with the server's authoritative record.
// A stale ticket is ignored; the server record is still a confirmation and
// replaces the confirmed value.
func (r *AvailabilityReconciler) Commit(id string, ticket Ticket, server domain.Book) {
	assertConsistent(server)

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.books[id]
	if !ok {
		r.books[id] = &bookEntry{confirmed: server}
		return
	}
	if entry.ticket != ticket {
		r.log.Debug().Str("book_id", id).Msg("ignoring stale commit")
		return
	}
	entry.confirmed = server
	entry.pending = nil
}

// Rollback discards a pending optimistic update and restores the last
// confirmed record. No partial state is retained. Stale tickets are ignored.
func (r *AvailabilityReconciler) Rollback(id string, ticket Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.books[id]
	if !ok || entry.ticket != ticket {
		return
	}
	entry.pending = nil
}

// assertConsistent panics when the availability invariant is broken. That is
// a logic defect in this package or bad data fed to it, not a recoverable
// runtime condition.
func assertConsistent(b domain.Book) {
	if !b.AvailabilityConsistent() {
		panic(fmt.Sprintf("availability invariant violated for book %s: available=%d quantity=%d",
			b.ID, b.AvailableQuantity, b.Quantity))
	}
}
