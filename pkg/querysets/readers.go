package querysets

import (
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/shishobooks/circulation/pkg/pagination"
)

var readerOrderFields = map[string]string{
	"id":            "r.id",
	"first_name":    "r.first_name",
	"last_name":     "r.last_name",
	"email":         "r.email",
	"registered_at": "r.registered_at",
}

// ReaderQuery selects readers with optional derived columns.
type ReaderQuery struct {
	dialect         string
	id              int
	search          string
	activeLoanCount bool
	ticket          bool
	choices         bool
	order           string
	page            window
}

func Readers(dialect string) ReaderQuery {
	return ReaderQuery{dialect: dialect}
}

// ByID narrows the query to a single reader.
func (q ReaderQuery) ByID(id int) ReaderQuery {
	q.id = id
	return q
}

// Search keeps readers whose first name, last name or email contains text,
// ignoring case.
func (q ReaderQuery) Search(text string) ReaderQuery {
	q.search = strings.TrimSpace(text)
	return q
}

// WithActiveLoanCount adds active_loan_count, the number of loans the reader
// has not returned yet.
func (q ReaderQuery) WithActiveLoanCount() ReaderQuery {
	q.activeLoanCount = true
	return q
}

// WithTicket adds ticket_code and ticket_active. Both are NULL for readers
// without a ticket.
func (q ReaderQuery) WithTicket() ReaderQuery {
	q.ticket = true
	return q
}

func (q ReaderQuery) Choices() ReaderQuery {
	q.choices = true
	return q
}

func (q ReaderQuery) OrderBy(field string) ReaderQuery {
	q.order = field
	return q
}

func (q ReaderQuery) Page(p pagination.Pagination) ReaderQuery {
	q.page = pageWindow(p)
	return q
}

func (q ReaderQuery) filtered() *goqu.SelectDataset {
	ds := goqu.Dialect(q.dialect).From(goqu.T("readers").As("r"))
	if q.id != 0 {
		ds = ds.Where(goqu.I("r.id").Eq(q.id))
	}
	if q.search != "" {
		pattern := containsPattern(q.search)
		ds = ds.Where(goqu.Or(
			goqu.I("r.first_name_folded").Like(pattern),
			goqu.I("r.last_name_folded").Like(pattern),
			goqu.Func("LOWER", goqu.I("r.email")).Like(pattern),
		))
	}
	return ds
}

func (q ReaderQuery) Statement() (string, []interface{}, error) {
	ds := q.filtered()

	columns := []interface{}{goqu.I("r.id"), goqu.I("r.first_name"), goqu.I("r.last_name")}
	if !q.choices {
		columns = append(columns,
			goqu.I("r.registered_at"),
			goqu.I("r.email"),
			goqu.I("r.phone"),
			goqu.I("r.cover_url"),
		)
	}
	if q.activeLoanCount {
		columns = append(columns, goqu.L(
			"(SELECT COUNT(*) FROM loans AS al WHERE al.reader_id = r.id AND al.returned_at IS NULL)",
		).As("active_loan_count"))
	}
	if q.ticket {
		ds = ds.LeftJoin(goqu.T("reader_tickets").As("rt"), goqu.On(goqu.I("rt.reader_id").Eq(goqu.I("r.id"))))
		columns = append(columns,
			goqu.I("rt.code").As("ticket_code"),
			goqu.I("rt.is_active").As("ticket_active"),
		)
	}
	ds = ds.Select(columns...)
	ds = ordered(ds, q.order, readerOrderFields, "r.id")

	return compile(q.page.apply(ds))
}

// CountStatement compiles a COUNT over the same filters. The ticket join is
// left out since each reader has at most one ticket.
func (q ReaderQuery) CountStatement() (string, []interface{}, error) {
	return countOf(q.filtered())
}
