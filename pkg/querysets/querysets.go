// Package querysets builds the read statements behind the catalog list
// endpoints. A query is an immutable value: every method returns a modified
// copy, and nothing touches the database until the caller runs the compiled
// statement.
package querysets

import (
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/shishobooks/circulation/pkg/pagination"
)

// Dialects understood by the compiler.
const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

// window is the LIMIT/OFFSET of a page. The zero value means no limit.
type window struct {
	limit  uint
	offset uint
}

func pageWindow(p pagination.Pagination) window {
	return window{limit: uint(p.PageSize()), offset: uint(p.Offset())}
}

func (w window) apply(ds *goqu.SelectDataset) *goqu.SelectDataset {
	if w.limit == 0 {
		return ds
	}
	ds = ds.Limit(w.limit)
	if w.offset > 0 {
		ds = ds.Offset(w.offset)
	}
	return ds
}

// ordered sorts ds by a caller supplied field. A leading "-" sorts
// descending. Fields missing from allowed fall back to the id column, which
// also breaks ties for every other field so pages are stable.
func ordered(ds *goqu.SelectDataset, field string, allowed map[string]string, idColumn string) *goqu.SelectDataset {
	column, ok := allowed[strings.TrimPrefix(field, "-")]
	if !ok {
		return ds.Order(goqu.I(idColumn).Asc())
	}

	var order exp.OrderedExpression
	if strings.HasPrefix(field, "-") {
		order = goqu.I(column).Desc()
	} else {
		order = goqu.I(column).Asc()
	}
	ds = ds.Order(order)
	if column != idColumn {
		ds = ds.OrderAppend(goqu.I(idColumn).Asc())
	}
	return ds
}

// sqliteTimeFormat matches how bun's sqlite dialect stores timestamps, so
// text comparisons against stored columns order correctly.
const sqliteTimeFormat = "2006-01-02 15:04:05.999999-07:00"

func timeArg(dialect string, t time.Time) interface{} {
	if dialect == DialectSQLite {
		return t.UTC().Format(sqliteTimeFormat)
	}
	return t
}

// containsPattern matches text anywhere in a folded column.
func containsPattern(text string) string {
	return "%" + models.Fold(text) + "%"
}

func compile(ds *goqu.SelectDataset) (string, []interface{}, error) {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return "", nil, errors.WithStack(err)
	}
	return query, args, nil
}

func countOf(ds *goqu.SelectDataset) (string, []interface{}, error) {
	return compile(ds.Select(goqu.COUNT(goqu.Star())))
}
