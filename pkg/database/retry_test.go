package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errLocked = errors.New("database is locked")

// failing returns a function that fails with err for the first n calls and
// counts every call in calls.
func failing(n int, err error, calls *int) func() error {
	return func() error {
		*calls++
		if *calls <= n {
			return err
		}
		return nil
	}
}

func TestBusyPolicy_Do(t *testing.T) {
	errRefused := errors.New("connection refused")

	tests := []struct {
		name       string
		maxRetries int
		failures   int
		err        error
		wantCalls  int
		wantErr    error
	}{
		{"first attempt", 5, 0, errLocked, 1, nil},
		{"busy then success", 5, 2, errLocked, 3, nil},
		{"non-busy error is not retried", 5, 10, errRefused, 1, errRefused},
		{"retries run out", 3, 10, errLocked, 4, errLocked},
		{"zero retries", 0, 10, errLocked, 1, errLocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newBusyPolicy(tt.maxRetries)
			p.baseDelay = time.Millisecond

			calls := 0
			err := p.do(context.Background(), failing(tt.failures, tt.err, &calls))
			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestBusyPolicy_ExhaustedRetriesAreContention(t *testing.T) {
	p := newBusyPolicy(1)
	p.baseDelay = time.Millisecond

	calls := 0
	err := p.do(context.Background(), failing(10, errLocked, &calls))
	require.Error(t, err)
	assert.True(t, errcodes.IsRetryable(Classify(err)))
}

func TestBusyPolicy_StopsWhenContextIsDone(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	calls := 0
	err := newBusyPolicy(10).do(ctx, failing(100, errLocked, &calls))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, calls, 1)
	assert.Less(t, calls, 10)
}

func TestBusyPolicy_Delay(t *testing.T) {
	p := newBusyPolicy(10)

	for attempt, base := range []time.Duration{50 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond} {
		d := p.delay(attempt)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+base/4)
	}

	// Large attempts are capped instead of overflowing.
	assert.Equal(t, 2*time.Second, p.delay(8))
	assert.Equal(t, 2*time.Second, p.delay(62))
}
