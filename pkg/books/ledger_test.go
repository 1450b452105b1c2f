package books

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestLockBook(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	ctx := context.Background()
	book := testutils.CreateBook(t, db, "Solaris", 2)

	err := database.RunInTx(ctx, db, func(ctx context.Context, tx bun.Tx) error {
		locked, err := LockBook(ctx, tx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, "Solaris", locked.Name)
		assert.Equal(t, 2, locked.AvailableCount)

		_, err = LockBook(ctx, tx, book.ID+1000)
		assert.True(t, errors.Is(err, errcodes.NotFound("Book")))
		return nil
	})
	require.NoError(t, err)
}

func TestCheckout(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	ctx := context.Background()
	book := testutils.CreateBook(t, db, "", 1)

	err := database.RunInTx(ctx, db, func(ctx context.Context, tx bun.Tx) error {
		locked, err := LockBook(ctx, tx, book.ID)
		require.NoError(t, err)

		require.NoError(t, Checkout(ctx, tx, locked))
		assert.Equal(t, 0, locked.AvailableCount)

		err = Checkout(ctx, tx, locked)
		assert.True(t, errors.Is(err, errcodes.BookUnavailable()))
		assert.Equal(t, 0, locked.AvailableCount)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, testutils.AvailableCount(t, db, book.ID))
}

func TestCheckout_GuardHoldsWithoutLock(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	ctx := context.Background()
	book := testutils.CreateBook(t, db, "", 0)

	// A stale in-memory copy claims there's a copy left; the database disagrees.
	book.AvailableCount = 5
	err := Checkout(ctx, db, book)
	assert.True(t, errors.Is(err, errcodes.BookUnavailable()))
	assert.Equal(t, 0, testutils.AvailableCount(t, db, book.ID))
}

func TestCheckinAndRecheckout(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	ctx := context.Background()
	book := testutils.CreateBook(t, db, "", 0)

	err := Recheckout(ctx, db, book)
	assert.True(t, errors.Is(err, errcodes.InsufficientInventory()))

	require.NoError(t, Checkin(ctx, db, book))
	assert.Equal(t, 1, book.AvailableCount)
	assert.Equal(t, 1, testutils.AvailableCount(t, db, book.ID))

	require.NoError(t, Recheckout(ctx, db, book))
	assert.Equal(t, 0, book.AvailableCount)
	assert.Equal(t, 0, testutils.AvailableCount(t, db, book.ID))
}

func TestLedger_RollsBackWithTransaction(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	ctx := context.Background()
	book := testutils.CreateBook(t, db, "", 3)

	boom := errors.New("boom")
	err := database.RunInTx(ctx, db, func(ctx context.Context, tx bun.Tx) error {
		locked, err := LockBook(ctx, tx, book.ID)
		require.NoError(t, err)
		require.NoError(t, Checkout(ctx, tx, locked))
		require.NoError(t, Checkout(ctx, tx, locked))
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, testutils.AvailableCount(t, db, book.ID))
}
