package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("service down")

func failing(ctx context.Context) error { return errDown }
func succeeding(ctx context.Context) error { return nil }

func testBreaker(cooldown time.Duration) *CircuitBreaker {
	return New(Settings{
		Name:             "test",
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Cooldown:         cooldown,
		MaxProbes:        1,
	})
}

func tripBreaker(t *testing.T, cb *CircuitBreaker) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(context.Background(), failing), errDown)
	}
	require.Equal(t, StateOpen, cb.State())
}

func TestExecute_StaysClosedOnSuccess(t *testing.T) {
	cb := testBreaker(time.Minute)

	for i := 0; i < 10; i++ {
		assert.NoError(t, cb.Execute(context.Background(), succeeding))
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestExecute_OpensAfterThreshold(t *testing.T) {
	cb := testBreaker(time.Minute)

	assert.ErrorIs(t, cb.Execute(context.Background(), failing), errDown)
	assert.ErrorIs(t, cb.Execute(context.Background(), failing), errDown)
	assert.Equal(t, StateClosed, cb.State())

	assert.ErrorIs(t, cb.Execute(context.Background(), failing), errDown)
	assert.Equal(t, StateOpen, cb.State())
}

func TestExecute_RejectsWhileOpen(t *testing.T) {
	cb := testBreaker(time.Minute)
	tripBreaker(t, cb)

	called := false
	err := cb.Execute(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestExecute_SuccessResetsFailureRun(t *testing.T) {
	cb := testBreaker(time.Minute)

	assert.Error(t, cb.Execute(context.Background(), failing))
	assert.Error(t, cb.Execute(context.Background(), failing))
	assert.NoError(t, cb.Execute(context.Background(), succeeding))
	assert.Error(t, cb.Execute(context.Background(), failing))
	assert.Error(t, cb.Execute(context.Background(), failing))

	assert.Equal(t, StateClosed, cb.State())
}

func TestExecute_ProbesAfterCooldown(t *testing.T) {
	cb := testBreaker(10 * time.Millisecond)
	tripBreaker(t, cb)

	time.Sleep(20 * time.Millisecond)

	// Two probe successes close the breaker again.
	assert.NoError(t, cb.Execute(context.Background(), succeeding))
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.NoError(t, cb.Execute(context.Background(), succeeding))
	assert.Equal(t, StateClosed, cb.State())
}

func TestExecute_FailedProbeReopens(t *testing.T) {
	cb := testBreaker(10 * time.Millisecond)
	tripBreaker(t, cb)

	time.Sleep(20 * time.Millisecond)

	assert.ErrorIs(t, cb.Execute(context.Background(), failing), errDown)
	assert.Equal(t, StateOpen, cb.State())
}

func TestExecute_NotifiesStateChanges(t *testing.T) {
	type change struct{ from, to State }
	var changes []change

	cb := New(Settings{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		Cooldown:         10 * time.Millisecond,
		OnStateChange: func(name string, from, to State) {
			changes = append(changes, change{from, to})
		},
	})

	assert.Error(t, cb.Execute(context.Background(), failing))
	time.Sleep(20 * time.Millisecond)
	assert.NoError(t, cb.Execute(context.Background(), succeeding))

	assert.Equal(t, []change{
		{StateClosed, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateClosed},
	}, changes)
}

func TestReset(t *testing.T) {
	cb := testBreaker(time.Minute)
	tripBreaker(t, cb)

	cb.Reset()

	assert.Equal(t, StateClosed, cb.State())
	assert.NoError(t, cb.Execute(context.Background(), succeeding))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
}
