package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/uptrace/bun"
)

// The ledger functions move copies of a book on and off the shelf. They run
// inside the caller's transaction and never open one of their own. Every
// decrement is guarded in SQL, so available_count can't go below zero even
// for a caller that skipped LockBook.

// LockBook loads a book and holds its row lock until tx ends.
func LockBook(ctx context.Context, tx bun.IDB, bookID int) (*models.Book, error) {
	book := &models.Book{}
	err := tx.
		NewSelect().
		Model(book).
		Where("b.id = ?", bookID).
		Apply(database.ForUpdate(tx)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}
	return book, nil
}

// Checkout takes a copy off the shelf for a new loan.
func Checkout(ctx context.Context, tx bun.IDB, book *models.Book) error {
	return takeCopy(ctx, tx, book, errcodes.BookUnavailable)
}

// Recheckout takes a copy off the shelf again when a return is undone. It
// fails if the returned copy has since gone out on another loan.
func Recheckout(ctx context.Context, tx bun.IDB, book *models.Book) error {
	return takeCopy(ctx, tx, book, errcodes.InsufficientInventory)
}

// Checkin puts a copy back on the shelf.
func Checkin(ctx context.Context, tx bun.IDB, book *models.Book) error {
	now := time.Now().UTC()
	res, err := tx.
		NewUpdate().
		Model((*models.Book)(nil)).
		Set("available_count = available_count + 1").
		Set("updated_at = ?", now).
		Where("id = ?", book.ID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Book")
	}
	book.AvailableCount++
	book.UpdatedAt = now
	return nil
}

func takeCopy(ctx context.Context, tx bun.IDB, book *models.Book, empty func() error) error {
	now := time.Now().UTC()
	res, err := tx.
		NewUpdate().
		Model((*models.Book)(nil)).
		Set("available_count = available_count - 1").
		Set("updated_at = ?", now).
		Where("id = ?", book.ID).
		Where("available_count >= 1").
		Exec(ctx)
	if err != nil {
		if database.IsCheckViolation(err) {
			return empty()
		}
		return errors.WithStack(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if n == 0 {
		return empty()
	}
	book.AvailableCount--
	book.UpdatedAt = now
	return nil
}
