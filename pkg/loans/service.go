package loans

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/books"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/uptrace/bun"
)

type CreateLoanOptions struct {
	BookID      int
	ReaderID    int
	LibrarianID *int
	DueDate     time.Time
}

// UpdateLoanOptions replaces a loan's mutable fields. A nil ReturnedAt marks
// the loan active. A zero DueDate keeps the current one.
type UpdateLoanOptions struct {
	DueDate    time.Time
	ReturnedAt *time.Time
}

// Service is the only way loans are created or changed. Every method runs in
// exactly one transaction, so the loan rows and the book's available count
// always move together.
type Service struct {
	db *bun.DB
	now func() time.Time
}

func NewService(db *bun.DB) *Service {
	return &Service{
		db:  db,
		now: now,
	}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// CreateLoan checks a copy of a book out to a reader.
func (svc *Service) CreateLoan(ctx context.Context, opts CreateLoanOptions) (*models.Loan, error) {
	loan := &models.Loan{
		ReaderID:    opts.ReaderID,
		BookID:      opts.BookID,
		LibrarianID: opts.LibrarianID,
		IssuedAt:    svc.now(),
		DueDate:     opts.DueDate.UTC(),
	}

	err := database.RunInTx(ctx, svc.db, func(ctx context.Context, tx bun.Tx) error {
		book, err := books.LockBook(ctx, tx, opts.BookID)
		if err != nil {
			return err
		}

		if err := mustExist(ctx, tx, (*models.Reader)(nil), "r.id", opts.ReaderID, "Reader"); err != nil {
			return err
		}
		if opts.LibrarianID != nil {
			if err := mustExist(ctx, tx, (*models.Librarian)(nil), "l.id", *opts.LibrarianID, "Librarian"); err != nil {
				return err
			}
		}

		// A duplicate is reported even when no copies are left.
		held, err := hasActiveLoan(ctx, tx, opts.BookID, opts.ReaderID, 0)
		if err != nil {
			return err
		}
		if held {
			return errcodes.DuplicateActiveLoan()
		}

		if err := books.Checkout(ctx, tx, book); err != nil {
			return err
		}

		_, err = tx.
			NewInsert().
			Model(loan).
			Returning("*").
			Exec(ctx)
		return errors.WithStack(err)
	})
	if database.IsUniqueViolation(err) {
		return nil, errcodes.DuplicateActiveLoan()
	}
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// UpdateLoan sets a loan's due date and return timestamp, moving a copy back
// onto or off the shelf when the loan is returned or the return is undone.
func (svc *Service) UpdateLoan(ctx context.Context, id int, opts UpdateLoanOptions) (*models.Loan, error) {
	return svc.transition(ctx, id, func(*models.Loan) UpdateLoanOptions {
		return opts
	})
}

// ReturnLoan marks a loan returned now. A loan that is already returned is
// left as it is.
func (svc *Service) ReturnLoan(ctx context.Context, id int) (*models.Loan, error) {
	returnedAt := svc.now()
	return svc.transition(ctx, id, func(loan *models.Loan) UpdateLoanOptions {
		if loan.ReturnedAt != nil {
			return UpdateLoanOptions{DueDate: loan.DueDate, ReturnedAt: loan.ReturnedAt}
		}
		return UpdateLoanOptions{DueDate: loan.DueDate, ReturnedAt: &returnedAt}
	})
}

// UndoReturn makes a returned loan active again.
func (svc *Service) UndoReturn(ctx context.Context, id int) (*models.Loan, error) {
	return svc.transition(ctx, id, func(loan *models.Loan) UpdateLoanOptions {
		return UpdateLoanOptions{DueDate: loan.DueDate}
	})
}

// transition locks the loan and then its book, always in that order, and
// applies the options next derives from the locked loan.
func (svc *Service) transition(ctx context.Context, id int, next func(loan *models.Loan) UpdateLoanOptions) (*models.Loan, error) {
	var loan *models.Loan

	err := database.RunInTx(ctx, svc.db, func(ctx context.Context, tx bun.Tx) error {
		var err error
		loan, err = lockLoan(ctx, tx, id)
		if err != nil {
			return err
		}

		opts := next(loan)
		var returnedAt *time.Time
		if opts.ReturnedAt != nil {
			if !opts.ReturnedAt.After(loan.IssuedAt) {
				return errcodes.InvalidReturnDate()
			}
			t := opts.ReturnedAt.UTC()
			returnedAt = &t
		}

		book, err := books.LockBook(ctx, tx, loan.BookID)
		if err != nil {
			return err
		}

		switch {
		case loan.ReturnedAt == nil && returnedAt != nil:
			if err := books.Checkin(ctx, tx, book); err != nil {
				return err
			}
		case loan.ReturnedAt != nil && returnedAt == nil:
			held, err := hasActiveLoan(ctx, tx, loan.BookID, loan.ReaderID, loan.ID)
			if err != nil {
				return err
			}
			if held {
				return errcodes.DuplicateActiveLoan()
			}
			if err := books.Recheckout(ctx, tx, book); err != nil {
				return err
			}
		}

		if !opts.DueDate.IsZero() {
			loan.DueDate = opts.DueDate.UTC()
		}
		loan.ReturnedAt = returnedAt

		_, err = tx.
			NewUpdate().
			Model(loan).
			Column("due_date", "returned_at").
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
	if database.IsUniqueViolation(err) {
		return nil, errcodes.DuplicateActiveLoan()
	}
	if err != nil {
		return nil, err
	}
	return loan, nil
}

func lockLoan(ctx context.Context, tx bun.IDB, id int) (*models.Loan, error) {
	loan := &models.Loan{}
	err := tx.
		NewSelect().
		Model(loan).
		Where("ln.id = ?", id).
		Apply(database.ForUpdate(tx)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Loan")
		}
		return nil, errors.WithStack(err)
	}
	return loan, nil
}

// hasActiveLoan reports whether the reader holds an active loan of the book
// other than the loan with id except.
func hasActiveLoan(ctx context.Context, tx bun.IDB, bookID, readerID, except int) (bool, error) {
	q := tx.
		NewSelect().
		Model((*models.Loan)(nil)).
		Where("ln.book_id = ?", bookID).
		Where("ln.reader_id = ?", readerID).
		Where("ln.returned_at IS NULL")
	if except != 0 {
		q = q.Where("ln.id != ?", except)
	}
	exists, err := q.Exists(ctx)
	return exists, errors.WithStack(err)
}

func mustExist(ctx context.Context, tx bun.IDB, model interface{}, column string, id int, resource string) error {
	exists, err := tx.
		NewSelect().
		Model(model).
		Where(column+" = ?", id).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.NotFound(resource)
	}
	return nil
}
