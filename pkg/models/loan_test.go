package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoan_State(t *testing.T) {
	issued := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	loan := &Loan{IssuedAt: issued, DueDate: issued.AddDate(0, 0, 14)}

	assert.Equal(t, LoanStateActive, loan.State())
	assert.True(t, loan.IsActive())
	assert.False(t, loan.IsOverdue(issued.AddDate(0, 0, 14)))
	assert.True(t, loan.IsOverdue(issued.AddDate(0, 0, 15)))

	returned := issued.AddDate(0, 0, 20)
	loan.ReturnedAt = &returned
	assert.Equal(t, LoanStateReturned, loan.State())
	assert.False(t, loan.IsActive())
	assert.False(t, loan.IsOverdue(issued.AddDate(0, 0, 30)))
}
