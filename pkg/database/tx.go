package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// RunInTx runs fn in a single transaction. Any error returned by fn, or a
// canceled ctx, rolls the transaction back before RunInTx returns, so partial
// writes are never visible. Contention failures are reported as
// errcodes.Contention.
func RunInTx(ctx context.Context, db *bun.DB, fn func(ctx context.Context, tx bun.Tx) error) error {
	err := db.RunInTx(ctx, &sql.TxOptions{}, fn)
	if err != nil {
		return errors.WithStack(Classify(err))
	}
	return nil
}

// ForUpdate adds a row lock to a select when the dialect has one. SQLite
// doesn't support FOR UPDATE; there the transaction already owns the only
// connection to the database.
func ForUpdate(db bun.IDB) func(q *bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		if db.Dialect().Name() == dialect.PG {
			return q.For("UPDATE")
		}
		return q
	}
}

// QueryDialect returns the name of the SQL dialect for statement builders
// that compile outside of bun.
func QueryDialect(db bun.IDB) string {
	if db.Dialect().Name() == dialect.PG {
		return "postgres"
	}
	return "sqlite3"
}

// Select runs a precompiled statement and scans the rows into dest. The
// statement goes straight to the driver so its placeholders ("?" or "$1") are
// bound natively instead of being reformatted by bun.
func Select(ctx context.Context, db *bun.DB, query string, args []interface{}, dest interface{}) error {
	rows, err := db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return errors.WithStack(err)
	}
	defer rows.Close()

	if err := db.ScanRows(ctx, rows, dest); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(rows.Err())
}

// Count runs a precompiled COUNT statement.
func Count(ctx context.Context, db *bun.DB, query string, args []interface{}) (int, error) {
	var total int
	err := db.DB.QueryRowContext(ctx, query, args...).Scan(&total)
	return total, errors.WithStack(err)
}
