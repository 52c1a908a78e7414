package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/openshelf/libctl/internal/core/domain"
)

func testBook(available int) domain.Book {
	return domain.Book{ID: "bk-1", Name: "The Go Programming Language", Quantity: 3, AvailableQuantity: available}
}

func availableIn(t *testing.T, r *AvailabilityReconciler, id string) int {
	t.Helper()
	book, ok := r.View(id)
	if !ok {
		t.Fatalf("book %s not tracked", id)
	}
	return book.AvailableQuantity
}

func TestReconciler_ViewUnknownBook(t *testing.T) {
	r := NewAvailabilityReconciler(zerolog.Nop())
	if _, ok := r.View("missing"); ok {
		t.Fatalf("expected no view for an untracked book")
	}
}

func TestReconciler_BeginBorrowDecrements(t *testing.T) {
	r := NewAvailabilityReconciler(zerolog.Nop())
	r.Confirm(testBook(2))

	optimistic, _, err := r.BeginBorrow("bk-1")
	if err != nil {
		t.Fatalf("BeginBorrow returned error: %v", err)
	}
	if optimistic.AvailableQuantity != 1 {
		t.Fatalf("optimistic available = %d, want 1", optimistic.AvailableQuantity)
	}
	if got := availableIn(t, r, "bk-1"); got != 1 {
		t.Fatalf("View shows %d, want optimistic 1", got)
	}
}

func TestReconciler_BeginBorrowRejectsExhausted(t *testing.T) {
	r := NewAvailabilityReconciler(zerolog.Nop())
	r.Confirm(testBook(0))

	if _, _, err := r.BeginBorrow("bk-1"); !errors.Is(err, domain.ErrBookUnavailable) {
		t.Fatalf("expected ErrBookUnavailable, got %v", err)
	}
	if got := availableIn(t, r, "bk-1"); got != 0 {
		t.Fatalf("rejected borrow must not change availability, got %d", got)
	}
}

func TestReconciler_BeginBorrowUntrackedBook(t *testing.T) {
	r := NewAvailabilityReconciler(zerolog.Nop())
	if _, _, err := r.BeginBorrow("missing"); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}

func TestReconciler_BeginReturnCappedAtQuantity(t *testing.T) {
	r := NewAvailabilityReconciler(zerolog.Nop())
	r.Confirm(testBook(3))

	optimistic, _, err := r.BeginReturn("bk-1")
	if err != nil {
		t.Fatalf("BeginReturn returned error: %v", err)
	}
	if optimistic.AvailableQuantity != 3 {
		t.Fatalf("available must stay capped at quantity, got %d", optimistic.AvailableQuantity)
	}
}

func TestReconciler_CommitInstallsServerRecord(t *testing.T) {
	r := NewAvailabilityReconciler(zerolog.Nop())
	r.Confirm(testBook(2))

	_, ticket, err := r.BeginBorrow("bk-1")
	if err != nil {
		t.Fatalf("BeginBorrow returned error: %v", err)
	}

	// The server reconciled a concurrent borrow the client never saw.
	server := testBook(0)
	r.Commit("bk-1", ticket, server)

	if got := availableIn(t, r, "bk-1"); got != 0 {
		t.Fatalf("server record must win, got available=%d", got)
	}
}

func TestReconciler_CommitStaleTicketIgnored(t *testing.T) {
	r := NewAvailabilityReconciler(zerolog.Nop())
	r.Confirm(testBook(3))

	_, stale, err := r.BeginBorrow("bk-1")
	if err != nil {
		t.Fatalf("BeginBorrow returned error: %v", err)
	}
	if _, _, err := r.BeginBorrow("bk-1"); err != nil {
		t.Fatalf("second BeginBorrow returned error: %v", err)
	}

	r.Commit("bk-1", stale, testBook(2))

	// The newer pending decrement is still what the caller should see.
	if got := availableIn(t, r, "bk-1"); got != 1 {
		t.Fatalf("stale commit must not clobber newer pending state, got %d", got)
	}
}

func TestReconciler_RollbackRestoresConfirmed(t *testing.T) {
	r := NewAvailabilityReconciler(zerolog.Nop())
	r.Confirm(testBook(2))

	_, ticket, err := r.BeginBorrow("bk-1")
	if err != nil {
		t.Fatalf("BeginBorrow returned error: %v", err)
	}
	r.Rollback("bk-1", ticket)

	if got := availableIn(t, r, "bk-1"); got != 2 {
		t.Fatalf("rollback must restore confirmed value, got %d", got)
	}
}

func TestReconciler_RollbackStaleTicketIgnored(t *testing.T) {
	r := NewAvailabilityReconciler(zerolog.Nop())
	r.Confirm(testBook(2))

	_, stale, err := r.BeginBorrow("bk-1")
	if err != nil {
		t.Fatalf("BeginBorrow returned error: %v", err)
	}
	if _, _, err := r.BeginBorrow("bk-1"); err != nil {
		t.Fatalf("second BeginBorrow returned error: %v", err)
	}

	r.Rollback("bk-1", stale)

	if got := availableIn(t, r, "bk-1"); got != 0 {
		t.Fatalf("stale rollback must not discard newer pending state, got %d", got)
	}
}

func TestReconciler_BorrowReturnRoundTrip(t *testing.T) {
	r := NewAvailabilityReconciler(zerolog.Nop())
	r.Confirm(testBook(1))

	_, borrowTicket, err := r.BeginBorrow("bk-1")
	if err != nil {
		t.Fatalf("BeginBorrow returned error: %v", err)
	}
	r.Commit("bk-1", borrowTicket, testBook(0))

	// The last copy is out; a second borrow is rejected locally.
	if _, _, err := r.BeginBorrow("bk-1"); !errors.Is(err, domain.ErrBookUnavailable) {
		t.Fatalf("expected ErrBookUnavailable, got %v", err)
	}

	_, returnTicket, err := r.BeginReturn("bk-1")
	if err != nil {
		t.Fatalf("BeginReturn returned error: %v", err)
	}
	r.Commit("bk-1", returnTicket, testBook(1))

	if got := availableIn(t, r, "bk-1"); got != 1 {
		t.Fatalf("after return, available = %d, want 1", got)
	}
}

func TestReconciler_ConfirmPanicsOnInconsistentRecord(t *testing.T) {
	r := NewAvailabilityReconciler(zerolog.Nop())

	defer func() {
		msg, ok := recover().(string)
		if !ok {
			t.Fatalf("expected panic on inconsistent record")
		}
		if !strings.Contains(msg, "availability invariant") {
			t.Fatalf("unexpected panic message: %s", msg)
		}
	}()
	r.Confirm(domain.Book{ID: "bk-1", Quantity: 2, AvailableQuantity: 5})
}
