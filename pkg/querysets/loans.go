package querysets

import (
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/shishobooks/circulation/pkg/pagination"
)

var loanOrderFields = map[string]string{
	"id":          "ln.id",
	"issued_at":   "ln.issued_at",
	"due_date":    "ln.due_date",
	"returned_at": "ln.returned_at",
	"reader":      "r.last_name",
	"book":        "b.name",
}

// LoanQuery selects loans joined with their reader, book, author and, when
// there is one, the issuing librarian.
type LoanQuery struct {
	dialect      string
	id           int
	activeOnly   bool
	returnedOnly bool
	readerID     int
	bookID       int
	overdueAt    time.Time
	order        string
	page         window
}

func Loans(dialect string) LoanQuery {
	return LoanQuery{dialect: dialect}
}

// ByID narrows the query to a single loan.
func (q LoanQuery) ByID(id int) LoanQuery {
	q.id = id
	return q
}

func (q LoanQuery) ActiveOnly() LoanQuery {
	q.activeOnly = true
	q.returnedOnly = false
	return q
}

func (q LoanQuery) ReturnedOnly() LoanQuery {
	q.returnedOnly = true
	q.activeOnly = false
	return q
}

func (q LoanQuery) ForReader(readerID int) LoanQuery {
	q.readerID = readerID
	return q
}

func (q LoanQuery) ForBook(bookID int) LoanQuery {
	q.bookID = bookID
	return q
}

// OverdueAt keeps active loans whose due date is before t.
func (q LoanQuery) OverdueAt(t time.Time) LoanQuery {
	q.overdueAt = t.UTC()
	return q.ActiveOnly()
}

func (q LoanQuery) OrderBy(field string) LoanQuery {
	q.order = field
	return q
}

func (q LoanQuery) Page(p pagination.Pagination) LoanQuery {
	q.page = pageWindow(p)
	return q
}

func (q LoanQuery) filtered() *goqu.SelectDataset {
	ds := goqu.Dialect(q.dialect).
		From(goqu.T("loans").As("ln")).
		InnerJoin(goqu.T("readers").As("r"), goqu.On(goqu.I("r.id").Eq(goqu.I("ln.reader_id")))).
		InnerJoin(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("ln.book_id")))).
		InnerJoin(goqu.T("authors").As("a"), goqu.On(goqu.I("a.id").Eq(goqu.I("b.author_id")))).
		LeftJoin(goqu.T("librarians").As("l"), goqu.On(goqu.I("l.id").Eq(goqu.I("ln.librarian_id"))))

	if q.id != 0 {
		ds = ds.Where(goqu.I("ln.id").Eq(q.id))
	}
	if q.activeOnly {
		ds = ds.Where(goqu.I("ln.returned_at").IsNull())
	}
	if q.returnedOnly {
		ds = ds.Where(goqu.I("ln.returned_at").IsNotNull())
	}
	if q.readerID != 0 {
		ds = ds.Where(goqu.I("ln.reader_id").Eq(q.readerID))
	}
	if q.bookID != 0 {
		ds = ds.Where(goqu.I("ln.book_id").Eq(q.bookID))
	}
	if !q.overdueAt.IsZero() {
		ds = ds.Where(goqu.I("ln.due_date").Lt(timeArg(q.dialect, q.overdueAt)))
	}
	return ds
}

func (q LoanQuery) Statement() (string, []interface{}, error) {
	ds := q.filtered().Select(
		goqu.I("ln.id"),
		goqu.I("ln.reader_id"),
		goqu.I("ln.book_id"),
		goqu.I("ln.librarian_id"),
		goqu.I("ln.issued_at"),
		goqu.I("ln.due_date"),
		goqu.I("ln.returned_at"),
		goqu.I("r.first_name").As("reader_first_name"),
		goqu.I("r.last_name").As("reader_last_name"),
		goqu.I("b.name").As("book_name"),
		goqu.I("a.name").As("author_name"),
		goqu.I("l.first_name").As("librarian_first_name"),
		goqu.I("l.last_name").As("librarian_last_name"),
	)
	ds = ordered(ds, q.order, loanOrderFields, "ln.id")

	return compile(q.page.apply(ds))
}

func (q LoanQuery) CountStatement() (string, []interface{}, error) {
	return countOf(q.filtered())
}
