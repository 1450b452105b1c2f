package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/shishobooks/circulation/pkg/pagination"
	"github.com/shishobooks/circulation/pkg/querysets"
	"github.com/uptrace/bun"
)

// BookWithAuthor is a book row with its author's name joined in.
type BookWithAuthor struct {
	models.Book `bun:",extend"`

	AuthorName string `bun:"author_name" json:"author_name"`
}

// BookChoice is the short form of a book used to fill select inputs.
type BookChoice struct {
	ID         int    `bun:"id" json:"id"`
	Name       string `bun:"name" json:"name"`
	AuthorName string `bun:"author_name" json:"author_name"`
}

type ListBooksOptions struct {
	Search        string
	Sort          string
	AvailableOnly bool
	AuthorID      int
	Page          int
	PageSize      int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	now := time.Now().UTC()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt

	exists, err := svc.db.
		NewSelect().
		Model((*models.Author)(nil)).
		Where("a.id = ?", book.AuthorID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.NotFound("Author")
	}

	_, err = svc.db.
		NewInsert().
		Model(book).
		Returning("*").
		Exec(ctx)
	switch {
	case database.IsUniqueViolation(err):
		return errcodes.DuplicateBook()
	case database.IsForeignKeyViolation(err):
		return errcodes.NotFound("Author")
	}
	return errors.WithStack(err)
}

func (svc *Service) RetrieveBook(ctx context.Context, id int) (*BookWithAuthor, error) {
	book := &BookWithAuthor{}

	err := svc.db.
		NewSelect().
		Model(book).
		ColumnExpr("b.*").
		ColumnExpr("a.name AS author_name").
		Join("JOIN authors AS a ON a.id = b.author_id").
		Where("b.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) BookExists(ctx context.Context, id int) (bool, error) {
	exists, err := svc.db.
		NewSelect().
		Model((*models.Book)(nil)).
		Where("b.id = ?", id).
		Exists(ctx)
	return exists, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*BookWithAuthor, pagination.Pagination, error) {
	q := querysets.Books(database.QueryDialect(svc.db)).
		WithAuthor().
		Search(opts.Search).
		OrderBy(opts.Sort)
	if opts.AvailableOnly {
		q = q.AvailableOnly()
	}
	if opts.AuthorID != 0 {
		q = q.ForAuthor(opts.AuthorID)
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
	books := []*BookWithAuthor{}
	if err := database.Select(ctx, svc.db, query, args, &books); err != nil {
		return nil, pagination.Pagination{}, err
	}

	return books, p, nil
}

func (svc *Service) ListBookChoices(ctx context.Context) ([]*BookChoice, error) {
	query, args, err := querysets.Books(database.QueryDialect(svc.db)).
		Choices().
		OrderBy("name").
		Statement()
	if err != nil {
		return nil, err
	}
	choices := []*BookChoice{}
	if err := database.Select(ctx, svc.db, query, args, &choices); err != nil {
		return nil, err
	}
	return choices, nil
}
