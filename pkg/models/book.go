package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID             int       `bun:",pk,nullzero" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	AuthorID       int       `bun:",notnull" json:"author_id"`
	Name           string    `bun:",notnull" json:"name"`
	NameFolded     string    `bun:",notnull" json:"-"`
	Description    string    `bun:",notnull" json:"description"`
	AvailableCount int       `bun:",notnull" json:"available_count"`
	CoverURL       *string   `bun:"cover_url" json:"cover_url"`
}

// IsAvailable reports whether at least one copy can be checked out.
func (b *Book) IsAvailable() bool {
	return b.AvailableCount > 0
}
