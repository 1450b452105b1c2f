package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Loan states.
const (
	LoanStateActive   = "active"
	LoanStateReturned = "returned"
)

type Loan struct {
	bun.BaseModel `bun:"table:loans,alias:ln"`

	ID          int        `bun:",pk,nullzero" json:"id"`
	ReaderID    int        `bun:",notnull" json:"reader_id"`
	BookID      int        `bun:",notnull" json:"book_id"`
	LibrarianID *int       `json:"librarian_id"`
	IssuedAt    time.Time  `json:"issued_at"`
	DueDate     time.Time  `json:"due_date"`
	ReturnedAt  *time.Time `json:"returned_at"`
}

// State is LoanStateActive until the book comes back, and again after a
// return is undone.
func (l *Loan) State() string {
	if l.ReturnedAt == nil {
		return LoanStateActive
	}
	return LoanStateReturned
}

func (l *Loan) IsActive() bool {
	return l.ReturnedAt == nil
}

// IsOverdue reports whether an active loan is past its due date at t.
func (l *Loan) IsOverdue(t time.Time) bool {
	return l.IsActive() && t.After(l.DueDate)
}
