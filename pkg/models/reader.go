package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Reader struct {
	bun.BaseModel `bun:"table:readers,alias:r"`

	ID              int       `bun:",pk,nullzero" json:"id"`
	RegisteredAt    time.Time `json:"registered_at"`
	FirstName       string    `bun:",notnull" json:"first_name"`
	LastName        string    `bun:",notnull" json:"last_name"`
	Email           string    `bun:",notnull" json:"email"`
	FirstNameFolded string    `bun:",notnull" json:"-"`
	LastNameFolded  string    `bun:",notnull" json:"-"`
	Phone           *string   `json:"phone"`
	CoverURL        *string   `bun:"cover_url" json:"cover_url"`
}

func (r *Reader) FullName() string {
	return r.FirstName + " " + r.LastName
}

type ReaderTicket struct {
	bun.BaseModel `bun:"table:reader_tickets,alias:rt"`

	ID       int       `bun:",pk,nullzero" json:"id"`
	IssuedAt time.Time `json:"issued_at"`
	ReaderID int       `bun:",notnull" json:"reader_id"`
	Code     string    `bun:",notnull" json:"code"`
	IsActive bool      `bun:",notnull" json:"is_active"`
}
