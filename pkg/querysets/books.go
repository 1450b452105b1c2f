package querysets

import (
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/shishobooks/circulation/pkg/pagination"
)

var bookOrderFields = map[string]string{
	"id":              "b.id",
	"name":            "b.name",
	"available_count": "b.available_count",
	"created_at":      "b.created_at",
	"author":          "a.name",
}

var bookColumns = []interface{}{
	goqu.I("b.id"),
	goqu.I("b.created_at"),
	goqu.I("b.updated_at"),
	goqu.I("b.author_id"),
	goqu.I("b.name"),
	goqu.I("b.description"),
	goqu.I("b.available_count"),
	goqu.I("b.cover_url"),
}

// BookQuery selects books, optionally with their author's name.
type BookQuery struct {
	dialect       string
	withAuthor    bool
	search        string
	order         string
	availableOnly bool
	authorID      int
	choices       bool
	page          window
}

func Books(dialect string) BookQuery {
	return BookQuery{dialect: dialect}
}

// WithAuthor joins the author so each row carries author_name. Calling it more
// than once still produces a single join.
func (q BookQuery) WithAuthor() BookQuery {
	q.withAuthor = true
	return q
}

// Search keeps books whose name or author's name contains text, ignoring
// case. It implies WithAuthor. Blank text leaves the query unfiltered.
func (q BookQuery) Search(text string) BookQuery {
	text = strings.TrimSpace(text)
	if text == "" {
		return q
	}
	q.search = text
	return q.WithAuthor()
}

// OrderBy sorts by one of id, name, available_count, created_at or author,
// descending when prefixed with "-". Anything else sorts by id.
func (q BookQuery) OrderBy(field string) BookQuery {
	q.order = field
	if strings.TrimPrefix(field, "-") == "author" {
		return q.WithAuthor()
	}
	return q
}

// AvailableOnly keeps books with at least one copy on the shelf.
func (q BookQuery) AvailableOnly() BookQuery {
	q.availableOnly = true
	return q
}

func (q BookQuery) ForAuthor(authorID int) BookQuery {
	q.authorID = authorID
	return q
}

// Choices narrows the projection to id, name and author_name for select
// inputs.
func (q BookQuery) Choices() BookQuery {
	q.choices = true
	return q.WithAuthor()
}

func (q BookQuery) Page(p pagination.Pagination) BookQuery {
	q.page = pageWindow(p)
	return q
}

func (q BookQuery) filtered() *goqu.SelectDataset {
	ds := goqu.Dialect(q.dialect).From(goqu.T("books").As("b"))
	if q.withAuthor {
		ds = ds.InnerJoin(goqu.T("authors").As("a"), goqu.On(goqu.I("a.id").Eq(goqu.I("b.author_id"))))
	}
	if q.search != "" {
		pattern := containsPattern(q.search)
		ds = ds.Where(goqu.Or(
			goqu.I("b.name_folded").Like(pattern),
			goqu.I("a.name_folded").Like(pattern),
		))
	}
	if q.availableOnly {
		ds = ds.Where(goqu.I("b.available_count").Gt(0))
	}
	if q.authorID != 0 {
		ds = ds.Where(goqu.I("b.author_id").Eq(q.authorID))
	}
	return ds
}

// Statement compiles the page of rows.
func (q BookQuery) Statement() (string, []interface{}, error) {
	ds := q.filtered()

	var columns []interface{}
	if q.choices {
		columns = []interface{}{goqu.I("b.id"), goqu.I("b.name")}
	} else {
		columns = append(columns, bookColumns...)
	}
	if q.withAuthor {
		columns = append(columns, goqu.I("a.name").As("author_name"))
	}
	ds = ds.Select(columns...)

	ds = ordered(ds, q.order, bookOrderFields, "b.id")

	return compile(q.page.apply(ds))
}

// CountStatement compiles a COUNT over the same filters, ignoring order and
// page.
func (q BookQuery) CountStatement() (string, []interface{}, error) {
	return countOf(q.filtered())
}
