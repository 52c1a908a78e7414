package domain

import (
	"errors"
	"time"
)

// BorrowingStatus is the derived display state of a loan. It is never stored;
// it is computed from the record's dates at render time.
type BorrowingStatus string

const (
	StatusActive   BorrowingStatus = "ACTIVE"
	StatusOverdue  BorrowingStatus = "OVERDUE"
	StatusReturned BorrowingStatus = "RETURNED"
)

// LoanPeriodDays is the fixed loan period the service applies when it assigns
// a due date. The client never recomputes DueDate from it for authoritative
// decisions; the server-assigned value wins.
const LoanPeriodDays = 14

var (
	ErrBorrowingNotFound = errors.New("borrowing not found")
	ErrAlreadyReturned   = errors.New("borrowing is already returned")
)

// Borrowing is a single checkout of one book copy by one user. The record is
// open until ReturnDate is set, which happens exactly once and never reverts.
type Borrowing struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	BookID     string     `json:"bookId"`
	BorrowDate time.Time  `json:"borrowDate"`
	DueDate    time.Time  `json:"dueDate"`
	ReturnDate *time.Time `json:"returnDate"`
	Book       *Book      `json:"book,omitempty"`
	User       *User      `json:"user,omitempty"`
}

// StatusAt derives the display status of the loan at the given instant.
// A set ReturnDate is terminal and takes precedence regardless of dates.
func (b Borrowing) StatusAt(now time.Time) BorrowingStatus {
	switch {
	case b.ReturnDate != nil:
		return StatusReturned
	case now.After(b.DueDate):
		return StatusOverdue
	default:
		return StatusActive
	}
}

// CanReturn reports whether the loan is still open. Closed loans are rejected
// locally without a network call.
func (b Borrowing) CanReturn() bool {
	return b.ReturnDate == nil
}
