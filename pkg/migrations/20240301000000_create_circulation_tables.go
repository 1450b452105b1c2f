package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
		if db.Dialect().Name() == dialect.PG {
			pk = "BIGSERIAL PRIMARY KEY"
		}

		statements := []string{`
			CREATE TABLE authors (
				id ` + pk + `,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				name_folded TEXT NOT NULL
			)
`,
			`CREATE UNIQUE INDEX ux_authors_name_folded ON authors (name_folded)`,
			`
			CREATE TABLE books (
				id ` + pk + `,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				author_id INTEGER REFERENCES authors (id) ON DELETE CASCADE NOT NULL,
				name TEXT NOT NULL,
				name_folded TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				available_count INTEGER NOT NULL DEFAULT 0 CHECK (available_count >= 0),
				cover_url TEXT
			)
`,
			`CREATE UNIQUE INDEX ux_books_author_id_name ON books (author_id, name)`,
			`
			CREATE TABLE readers (
				id ` + pk + `,
				registered_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				first_name TEXT NOT NULL,
				last_name TEXT NOT NULL,
				email TEXT NOT NULL,
				first_name_folded TEXT NOT NULL,
				last_name_folded TEXT NOT NULL,
				phone TEXT,
				cover_url TEXT
			)
`,
			`CREATE UNIQUE INDEX ux_readers_email ON readers (email)`,
			`
			CREATE TABLE reader_tickets (
				id ` + pk + `,
				issued_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				reader_id INTEGER REFERENCES readers (id) ON DELETE CASCADE NOT NULL,
				code TEXT NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT TRUE
			)
`,
			`CREATE UNIQUE INDEX ux_reader_tickets_reader_id ON reader_tickets (reader_id)`,
			`CREATE UNIQUE INDEX ux_reader_tickets_code ON reader_tickets (code)`,
			`
			CREATE TABLE librarians (
				id ` + pk + `,
				hired_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				first_name TEXT NOT NULL,
				last_name TEXT NOT NULL
			)
`,
			`
			CREATE TABLE loans (
				id ` + pk + `,
				reader_id INTEGER REFERENCES readers (id) ON DELETE CASCADE NOT NULL,
				book_id INTEGER REFERENCES books (id) ON DELETE CASCADE NOT NULL,
				librarian_id INTEGER REFERENCES librarians (id) ON DELETE SET NULL,
				issued_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				due_date TIMESTAMPTZ NOT NULL,
				returned_at TIMESTAMPTZ
			)
`,
			// A reader can hold at most one copy of a book at a time.
			`CREATE UNIQUE INDEX ux_loans_active_book_reader ON loans (book_id, reader_id) WHERE returned_at IS NULL`,
			`CREATE INDEX ix_loans_reader_id ON loans (reader_id)`,
			`CREATE INDEX ix_loans_book_id ON loans (book_id)`,
		}

		for _, stmt := range statements {
			if _, err := db.Exec(stmt); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		for _, table := range []string{"loans", "librarians", "reader_tickets", "readers", "books", "authors"} {
			if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
