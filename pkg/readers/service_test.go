package readers

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/shishobooks/circulation/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReader(t *testing.T) {
	t.Parallel()
	svc := NewService(testutils.NewDB(t))
	ctx := context.Background()

	phone := "+79991234567"
	reader := &models.Reader{FirstName: "Anna", LastName: "Ivanova", Email: "anna@example.com", Phone: &phone}
	require.NoError(t, svc.CreateReader(ctx, reader))
	assert.NotZero(t, reader.ID)
	assert.False(t, reader.RegisteredAt.IsZero())

	err := svc.CreateReader(ctx, &models.Reader{FirstName: "Anya", LastName: "I.", Email: "anna@example.com"})
	assert.True(t, errors.Is(err, errcodes.DuplicateReader()))

	got, err := svc.RetrieveReader(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna Ivanova", got.FullName())
	require.NotNil(t, got.Phone)
	assert.Equal(t, phone, *got.Phone)
	assert.Equal(t, 0, got.ActiveLoanCount)
	assert.Nil(t, got.TicketCode)

	_, err = svc.RetrieveReader(ctx, reader.ID+100)
	assert.True(t, errors.Is(err, errcodes.NotFound("Reader")))
}

func TestListReadersWithTotal(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	anna := testutils.CreateReader(t, db, "Anna", "Ivanova")
	boris := testutils.CreateReader(t, db, "Boris", "Petrov")
	testutils.CreateReader(t, db, "Vera", "Sidorova")

	book := testutils.CreateBook(t, db, "", 5)
	returned := testutils.Now.Add(time.Hour)
	for _, loan := range []*models.Loan{
		{ReaderID: boris.ID, BookID: book.ID, IssuedAt: testutils.Now, DueDate: testutils.Now.AddDate(0, 0, 14)},
		{ReaderID: boris.ID, BookID: book.ID, IssuedAt: testutils.Now, DueDate: testutils.Now.AddDate(0, 0, 14), ReturnedAt: &returned},
	} {
		_, err := db.NewInsert().Model(loan).Exec(ctx)
		require.NoError(t, err)
	}
	_, err := svc.IssueTicket(ctx, anna.ID)
	require.NoError(t, err)

	readers, p, err := svc.ListReadersWithTotal(ctx, ListReadersOptions{Sort: "-last_name", Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Total())
	assert.True(t, p.HasNext())
	require.Len(t, readers, 2)
	assert.Equal(t, "Sidorova", readers[0].LastName)
	assert.Equal(t, "Petrov", readers[1].LastName)
	assert.Equal(t, 1, readers[1].ActiveLoanCount)

	readers, p, err = svc.ListReadersWithTotal(ctx, ListReadersOptions{Search: "ivan", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Total())
	require.Len(t, readers, 1)
	require.NotNil(t, readers[0].TicketCode)
	require.NotNil(t, readers[0].TicketActive)
	assert.True(t, *readers[0].TicketActive)

	choices, err := svc.ListReaderChoices(ctx)
	require.NoError(t, err)
	require.Len(t, choices, 3)
	assert.Equal(t, "Ivanova", choices[0].LastName)
}

func TestTickets(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	reader := testutils.CreateReader(t, db, "Anna", "Ivanova")

	_, err := svc.RetrieveTicket(ctx, reader.ID)
	assert.True(t, errors.Is(err, errcodes.NotFound("Ticket")))

	ticket, err := svc.IssueTicket(ctx, reader.ID)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]{12}$`), ticket.Code)
	assert.True(t, ticket.IsActive)

	_, err = svc.IssueTicket(ctx, reader.ID)
	assert.True(t, errors.Is(err, errcodes.DuplicateTicket()))

	_, err = svc.IssueTicket(ctx, reader.ID+100)
	assert.True(t, errors.Is(err, errcodes.NotFound("Reader")))

	ticket, err = svc.SetTicketActive(ctx, reader.ID, false)
	require.NoError(t, err)
	assert.False(t, ticket.IsActive)

	got, err := svc.RetrieveTicket(ctx, reader.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, ticket.Code, got.Code)

	_, err = svc.SetTicketActive(ctx, reader.ID+100, true)
	assert.True(t, errors.Is(err, errcodes.NotFound("Ticket")))
}

func codes(values ...string) func() string {
	i := 0
	return func() string {
		code := values[i]
		if i < len(values)-1 {
			i++
		}
		return code
	}
}

func TestIssueTicket_CodeTaken(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	anna := testutils.CreateReader(t, db, "Anna", "Ivanova")
	boris := testutils.CreateReader(t, db, "Boris", "Petrov")
	vera := testutils.CreateReader(t, db, "Vera", "Orlova")

	svc.ticketCode = codes("AAAAAAAAAAAA")
	_, err := svc.IssueTicket(ctx, anna.ID)
	require.NoError(t, err)

	t.Run("a taken code is regenerated", func(t *testing.T) {
		svc.ticketCode = codes("AAAAAAAAAAAA", "BBBBBBBBBBBB")
		ticket, err := svc.IssueTicket(ctx, boris.ID)
		require.NoError(t, err)
		assert.Equal(t, "BBBBBBBBBBBB", ticket.Code)
	})

	t.Run("a reader without a ticket is never reported as a duplicate", func(t *testing.T) {
		svc.ticketCode = codes("AAAAAAAAAAAA")
		_, err := svc.IssueTicket(ctx, vera.ID)
		require.Error(t, err)
		assert.False(t, errors.Is(err, errcodes.DuplicateTicket()))

		_, err = svc.RetrieveTicket(ctx, vera.ID)
		assert.True(t, errors.Is(err, errcodes.NotFound("Ticket")))
	})
}

func TestNewTicketCode(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := newTicketCode()
		assert.Len(t, code, ticketCodeLength)
		assert.Equal(t, code, regexp.MustCompile(`[^0-9A-F]`).ReplaceAllString(code, ""))
		assert.False(t, seen[code])
		seen[code] = true
	}
}
