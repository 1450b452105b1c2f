package models

import (
	"context"

	"github.com/uptrace/bun"
	"golang.org/x/text/cases"
)

// Fold returns the form of s that name searches and uniqueness checks
// compare. SQLite's LIKE and LOWER only fold ASCII, so the folded copy is
// computed here and stored next to the original.
func Fold(s string) string {
	// A Caser keeps state between calls and can't be shared.
	return cases.Fold().String(s)
}

var (
	_ bun.BeforeAppendModelHook = (*Author)(nil)
	_ bun.BeforeAppendModelHook = (*Book)(nil)
	_ bun.BeforeAppendModelHook = (*Reader)(nil)
)

func (a *Author) BeforeAppendModel(_ context.Context, _ bun.Query) error {
	a.NameFolded = Fold(a.Name)
	return nil
}

func (b *Book) BeforeAppendModel(_ context.Context, _ bun.Query) error {
	b.NameFolded = Fold(b.Name)
	return nil
}

func (r *Reader) BeforeAppendModel(_ context.Context, _ bun.Query) error {
	r.FirstNameFolded = Fold(r.FirstName)
	r.LastNameFolded = Fold(r.LastName)
	return nil
}
