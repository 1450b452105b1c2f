package testutils

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shishobooks/circulation/pkg/models"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

var seq atomic.Int64

func next() int64 {
	return seq.Add(1)
}

// Now is the fixed timestamp fixtures are created at.
var Now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func insert(t *testing.T, db bun.IDB, model interface{}) {
	t.Helper()
	_, err := db.NewInsert().Model(model).Returning("*").Exec(context.Background())
	require.NoError(t, err)
}

func CreateAuthor(t *testing.T, db bun.IDB, name string) *models.Author {
	t.Helper()
	if name == "" {
		name = fmt.Sprintf("Author %d", next())
	}
	author := &models.Author{Name: name, CreatedAt: Now}
	insert(t, db, author)
	return author
}

// CreateBook creates a book with the given number of copies on the shelf. A
// new author is created for it.
func CreateBook(t *testing.T, db bun.IDB, name string, available int) *models.Book {
	t.Helper()
	author := CreateAuthor(t, db, "")
	if name == "" {
		name = fmt.Sprintf("Book %d", next())
	}
	book := &models.Book{
		AuthorID:       author.ID,
		Name:           name,
		AvailableCount: available,
		CreatedAt:      Now,
		UpdatedAt:      Now,
	}
	insert(t, db, book)
	return book
}

func CreateReader(t *testing.T, db bun.IDB, firstName, lastName string) *models.Reader {
	t.Helper()
	n := next()
	reader := &models.Reader{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        fmt.Sprintf("reader%d@example.com", n),
		RegisteredAt: Now,
	}
	insert(t, db, reader)
	return reader
}

func CreateLibrarian(t *testing.T, db bun.IDB, firstName, lastName string) *models.Librarian {
	t.Helper()
	librarian := &models.Librarian{FirstName: firstName, LastName: lastName, HiredAt: Now}
	insert(t, db, librarian)
	return librarian
}

// AvailableCount reads the current count straight from the database.
func AvailableCount(t *testing.T, db bun.IDB, bookID int) int {
	t.Helper()
	var count int
	err := db.NewSelect().
		Model((*models.Book)(nil)).
		Column("available_count").
		Where("b.id = ?", bookID).
		Scan(context.Background(), &count)
	require.NoError(t, err)
	return count
}

// CountLoans counts the loans for a book, optionally only the active ones.
func CountLoans(t *testing.T, db bun.IDB, bookID int, activeOnly bool) int {
	t.Helper()
	q := db.NewSelect().Model((*models.Loan)(nil)).Where("ln.book_id = ?", bookID)
	if activeOnly {
		q = q.Where("ln.returned_at IS NULL")
	}
	n, err := q.Count(context.Background())
	require.NoError(t, err)
	return n
}
