package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Librarian struct {
	bun.BaseModel `bun:"table:librarians,alias:l"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	HiredAt   time.Time `json:"hired_at"`
	FirstName string    `bun:",notnull" json:"first_name"`
	LastName  string    `bun:",notnull" json:"last_name"`
}

func (l *Librarian) FullName() string {
	return l.FirstName + " " + l.LastName
}
