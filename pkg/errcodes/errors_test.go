package errcodes

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	unavailable := BusinessRule("book_unavailable", "Book has no available copies.")

	wrapped := errors.WithStack(BusinessRule("book_unavailable", "Book has no available copies."))
	assert.ErrorIs(t, wrapped, unavailable)
	assert.NotErrorIs(t, wrapped, NotFound("Book"))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(errors.WithStack(NotFound("Loan"))))
	assert.Equal(t, KindBusinessRule, KindOf(BusinessRule("x", "y")))
	assert.Equal(t, KindContention, KindOf(errors.Wrap(Contention("busy"), "create loan")))
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(errors.WithStack(Contention("lock wait timeout"))))
	assert.False(t, IsRetryable(BusinessRule("book_unavailable", "nope")))
	assert.False(t, IsRetryable(NotFound("Book")))
	assert.False(t, IsRetryable(errors.New("boom")))
}
