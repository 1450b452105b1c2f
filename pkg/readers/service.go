package readers

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/shishobooks/circulation/pkg/pagination"
	"github.com/shishobooks/circulation/pkg/querysets"
	"github.com/uptrace/bun"
)

// ReaderWithDetails is a reader with the number of books they currently hold
// and their ticket, if one was issued.
type ReaderWithDetails struct {
	models.Reader `bun:",extend"`

	ActiveLoanCount int     `bun:"active_loan_count" json:"active_loan_count"`
	TicketCode      *string `bun:"ticket_code" json:"ticket_code"`
	TicketActive    *bool   `bun:"ticket_active" json:"ticket_active"`
}

type ReaderChoice struct {
	ID        int    `bun:"id" json:"id"`
	FirstName string `bun:"first_name" json:"first_name"`
	LastName  string `bun:"last_name" json:"last_name"`
}

type ListReadersOptions struct {
	Search   string
	Sort     string
	Page     int
	PageSize int
}

type Service struct {
	db         *bun.DB
	ticketCode func() string
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db, ticketCode: newTicketCode}
}

func (svc *Service) CreateReader(ctx context.Context, reader *models.Reader) error {
	if reader.RegisteredAt.IsZero() {
		reader.RegisteredAt = time.Now().UTC()
	}

	_, err := svc.db.
		NewInsert().
		Model(reader).
		Returning("*").
		Exec(ctx)
	if database.IsUniqueViolation(err) {
		return errcodes.DuplicateReader()
	}
	return errors.WithStack(err)
}

func (svc *Service) RetrieveReader(ctx context.Context, id int) (*ReaderWithDetails, error) {
	query, args, err := svc.detailed().ByID(id).Statement()
	if err != nil {
		return nil, err
	}
	readers := []*ReaderWithDetails{}
	if err := database.Select(ctx, svc.db, query, args, &readers); err != nil {
		return nil, err
	}
	if len(readers) == 0 {
		return nil, errcodes.NotFound("Reader")
	}
	return readers[0], nil
}

func (svc *Service) ListReadersWithTotal(ctx context.Context, opts ListReadersOptions) ([]*ReaderWithDetails, pagination.Pagination, error) {
	q := svc.detailed().Search(opts.Search).OrderBy(opts.Sort)

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
	readers := []*ReaderWithDetails{}
	if err := database.Select(ctx, svc.db, query, args, &readers); err != nil {
		return nil, pagination.Pagination{}, err
	}

	return readers, p, nil
}

// ListReaderChoices returns every reader ordered by last name.
func (svc *Service) ListReaderChoices(ctx context.Context) ([]*ReaderChoice, error) {
	query, args, err := querysets.Readers(database.QueryDialect(svc.db)).
		Choices().
		OrderBy("last_name").
		Statement()
	if err != nil {
		return nil, err
	}
	choices := []*ReaderChoice{}
	if err := database.Select(ctx, svc.db, query, args, &choices); err != nil {
		return nil, err
	}
	return choices, nil
}

func (svc *Service) detailed() querysets.ReaderQuery {
	return querysets.Readers(database.QueryDialect(svc.db)).
		WithActiveLoanCount().
		WithTicket()
}
