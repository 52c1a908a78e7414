package domain

import "errors"

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrBookUnavailable = errors.New("no copies of the book are available")
)

// Book is the catalog record for a title, including its availability counters.
// JSON field names follow the catalog service's wire contract.
type Book struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	ISBN              string `json:"isbn"`
	Author            string `json:"author"`
	Publisher         string `json:"publisher"`
	NumberOfPages     int    `json:"numberOfPages"`
	Quantity          int    `json:"quantity"`
	AvailableQuantity int    `json:"availableQuantity"`
	Genre             string `json:"genre"`
}

// CanBorrow reports whether at least one copy is lendable right now. A false
// answer rejects the borrow locally, before any network round trip; the
// server remains the authority on races.
func (b Book) CanBorrow() bool {
	return b.AvailableQuantity > 0
}

// AvailabilityConsistent reports whether 0 <= AvailableQuantity <= Quantity.
// The reconciler asserts this after every transition; a violation is a logic
// defect, never a runtime condition.
func (b Book) AvailabilityConsistent() bool {
	return b.AvailableQuantity >= 0 && b.AvailableQuantity <= b.Quantity
}
