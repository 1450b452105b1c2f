package loans

import (
	"context"

	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/shishobooks/circulation/pkg/pagination"
	"github.com/shishobooks/circulation/pkg/querysets"
)

// LoanDetail is a loan with the names of everyone and everything it refers
// to.
type LoanDetail struct {
	models.Loan `bun:",extend"`

	ReaderFirstName    string  `bun:"reader_first_name" json:"reader_first_name"`
	ReaderLastName     string  `bun:"reader_last_name" json:"reader_last_name"`
	BookName           string  `bun:"book_name" json:"book_name"`
	AuthorName         string  `bun:"author_name" json:"author_name"`
	LibrarianFirstName *string `bun:"librarian_first_name" json:"librarian_first_name"`
	LibrarianLastName  *string `bun:"librarian_last_name" json:"librarian_last_name"`
	State              string  `bun:"-" json:"state"`
	Overdue            bool    `bun:"-" json:"is_overdue"`
}

type ListLoansOptions struct {
	ActiveOnly   bool
	ReturnedOnly bool
	OverdueOnly  bool
	ReaderID     int
	BookID       int
	Sort         string
	Page         int
	PageSize     int
}

func (svc *Service) RetrieveLoan(ctx context.Context, id int) (*LoanDetail, error) {
	query, args, err := querysets.Loans(database.QueryDialect(svc.db)).ByID(id).Statement()
	if err != nil {
		return nil, err
	}
	loans := []*LoanDetail{}
	if err := database.Select(ctx, svc.db, query, args, &loans); err != nil {
		return nil, err
	}
	if len(loans) == 0 {
		return nil, errcodes.NotFound("Loan")
	}
	svc.annotate(loans)
	return loans[0], nil
}

func (svc *Service) ListLoansWithTotal(ctx context.Context, opts ListLoansOptions) ([]*LoanDetail, pagination.Pagination, error) {
	q := querysets.Loans(database.QueryDialect(svc.db)).
		ForReader(opts.ReaderID).
		ForBook(opts.BookID).
		OrderBy(opts.Sort)
	switch {
	case opts.OverdueOnly:
		q = q.OverdueAt(svc.now())
	case opts.ActiveOnly:
		q = q.ActiveOnly()
	case opts.ReturnedOnly:
		q = q.ReturnedOnly()
	}

	query, args, err := q.CountStatement()
	if err != nil {
		return nil, pagination.Pagination{}, err
	}
	total, err := database.Count(ctx, svc.db, query, args)
	if err != nil {
		return nil, pagination.Pagination{}, err
	}

	p, err := pagination.New(opts.Page, opts.PageSize, total)
	if err != nil {
		return nil, pagination.Pagination{}, errcodes.ValidationError(err.Error())
	}

	query, args, err = q.Page(p).Statement()
	if err != nil {
		return nil, pagination.Pagination{}, err
	}
	loans := []*LoanDetail{}
	if err := database.Select(ctx, svc.db, query, args, &loans); err != nil {
		return nil, pagination.Pagination{}, err
	}
	svc.annotate(loans)

	return loans, p, nil
}

func (svc *Service) annotate(loans []*LoanDetail) {
	t := svc.now()
	for _, l := range loans {
		l.State = l.Loan.State()
		l.Overdue = l.Loan.IsOverdue(t)
	}
}
