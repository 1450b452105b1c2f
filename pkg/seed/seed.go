// Package seed loads a JSON fixture of authors, books, readers, librarians and
// loans into the database through the same services the API uses.
package seed

import (
	"context"
	_ "embed"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/circulation/pkg/authors"
	"github.com/shishobooks/circulation/pkg/binder"
	"github.com/shishobooks/circulation/pkg/books"
	"github.com/shishobooks/circulation/pkg/librarians"
	"github.com/shishobooks/circulation/pkg/loans"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/shishobooks/circulation/pkg/readers"
	"github.com/uptrace/bun"
)

//go:embed sample.json
var Sample []byte

type Fixture struct {
	Authors    []Author    `json:"authors"`
	Readers    []Reader    `json:"readers"`
	Librarians []Librarian `json:"librarians"`
	Loans      []Loan      `json:"loans"`
}

type Author struct {
	Name  string `json:"name"`
	Books []Book `json:"books"`
}

type Book struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Copies      int    `json:"copies"`
}

type Reader struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Ticket    bool   `json:"ticket"`
}

type Librarian struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	HiredAt   string `json:"hired_at"`
}

// Loan refers to its book by name and its reader by email.
type Loan struct {
	Book      string `json:"book"`
	Reader    string `json:"reader"`
	Librarian string `json:"librarian"`
	DueInDays int    `json:"due_in_days"`
	Returned  bool   `json:"returned"`
}

// Result counts what was created.
type Result struct {
	Authors    int `json:"authors"`
	Books      int `json:"books"`
	Readers    int `json:"readers"`
	Tickets    int `json:"tickets"`
	Librarians int `json:"librarians"`
	Loans      int `json:"loans"`
}

func Decode(r io.Reader) (*Fixture, error) {
	f := &Fixture{}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(f); err != nil {
		return nil, errors.Wrap(err, "invalid fixture")
	}
	return f, nil
}

// Load creates everything in f. It stops at the first error; records created
// before it are kept.
func Load(ctx context.Context, db *bun.DB, f *Fixture) (*Result, error) {
	res := &Result{}
	authorService := authors.NewService(db)
	bookService := books.NewService(db)
	readerService := readers.NewService(db)
	librarianService := librarians.NewService(db)
	loanService := loans.NewService(db)

	bookIDs := map[string]int{}
	for _, a := range f.Authors {
		author := &models.Author{Name: a.Name}
		if err := authorService.CreateAuthor(ctx, author); err != nil {
			return res, errors.Wrapf(err, "author %q", a.Name)
		}
		res.Authors++

		for _, b := range a.Books {
			book := &models.Book{
				AuthorID:       author.ID,
				Name:           b.Name,
				Description:    b.Description,
				AvailableCount: b.Copies,
			}
			if err := bookService.CreateBook(ctx, book); err != nil {
				return res, errors.Wrapf(err, "book %q", b.Name)
			}
			bookIDs[b.Name] = book.ID
			res.Books++
		}
	}

	readerIDs := map[string]int{}
	for _, r := range f.Readers {
		reader := &models.Reader{FirstName: r.FirstName, LastName: r.LastName, Email: r.Email}
		if r.Phone != "" {
			phone := r.Phone
			reader.Phone = &phone
		}
		if err := readerService.CreateReader(ctx, reader); err != nil {
			return res, errors.Wrapf(err, "reader %q", r.Email)
		}
		readerIDs[r.Email] = reader.ID
		res.Readers++

		if r.Ticket {
			if _, err := readerService.IssueTicket(ctx, reader.ID); err != nil {
				return res, errors.Wrapf(err, "ticket for %q", r.Email)
			}
			res.Tickets++
		}
	}

	librarianIDs := map[string]int{}
	for _, l := range f.Librarians {
		librarian := &models.Librarian{FirstName: l.FirstName, LastName: l.LastName}
		if l.HiredAt != "" {
			hiredAt, err := time.Parse(binder.DateLayout, l.HiredAt)
			if err != nil {
				return res, errors.Wrapf(err, "librarian %q", l.LastName)
			}
			librarian.HiredAt = hiredAt
		}
		if err := librarianService.CreateLibrarian(ctx, librarian); err != nil {
			return res, errors.Wrapf(err, "librarian %q", l.LastName)
		}
		librarianIDs[l.LastName] = librarian.ID
		res.Librarians++
	}

	for _, l := range f.Loans {
		bookID, ok := bookIDs[l.Book]
		if !ok {
			return res, errors.Errorf("loan refers to unknown book %q", l.Book)
		}
		readerID, ok := readerIDs[l.Reader]
		if !ok {
			return res, errors.Errorf("loan refers to unknown reader %q", l.Reader)
		}
		opts := loans.CreateLoanOptions{
			BookID:   bookID,
			ReaderID: readerID,
			DueDate:  time.Now().UTC().AddDate(0, 0, l.DueInDays),
		}
		if l.Librarian != "" {
			id, ok := librarianIDs[l.Librarian]
			if !ok {
				return res, errors.Errorf("loan refers to unknown librarian %q", l.Librarian)
			}
			opts.LibrarianID = &id
		}

		loan, err := loanService.CreateLoan(ctx, opts)
		if err != nil {
			return res, errors.Wrapf(err, "loan of %q to %q", l.Book, l.Reader)
		}
		if l.Returned {
			if _, err := loanService.ReturnLoan(ctx, loan.ID); err != nil {
				return res, errors.Wrapf(err, "return of %q by %q", l.Book, l.Reader)
			}
		}
		res.Loans++
	}

	return res, nil
}
