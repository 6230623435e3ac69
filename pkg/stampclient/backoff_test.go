package stampclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptTracker_FreeBelowThreshold(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tracker := newAttemptTracker(clock)

	for i := 0; i < failureThreshold-1; i++ {
		tracker.RecordFailure()
		assert.Zero(t, tracker.Wait())
	}
}

func TestAttemptTracker_BackoffDoubles(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tracker := newAttemptTracker(clock)

	for i := 0; i < failureThreshold; i++ {
		tracker.RecordFailure()
	}
	assert.Equal(t, 2*time.Minute, tracker.Wait())

	clock.Advance(2 * time.Minute)
	assert.Zero(t, tracker.Wait(), "wait expires once the backoff has elapsed")

	tracker.RecordFailure()
	assert.Equal(t, 4*time.Minute, tracker.Wait())
}

func TestAttemptTracker_CappedAtOneHour(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tracker := newAttemptTracker(clock)

	for i := 0; i < failureThreshold+20; i++ {
		tracker.RecordFailure()
	}
	assert.Equal(t, maxBackoff, tracker.Wait())
}

func TestAttemptTracker_WindowResetsCount(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tracker := newAttemptTracker(clock)

	for i := 0; i < failureThreshold; i++ {
		tracker.RecordFailure()
	}
	require.NotZero(t, tracker.Wait())

	// A failure long after the window restarts the count from one.
	clock.Advance(resetWindow + time.Minute)
	assert.Zero(t, tracker.Wait())
	tracker.RecordFailure()
	assert.Zero(t, tracker.Wait())
}

func TestAttemptTracker_ResetOnSuccess(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tracker := newAttemptTracker(clock)

	for i := 0; i < failureThreshold; i++ {
		tracker.RecordFailure()
	}
	require.NotZero(t, tracker.Wait())

	tracker.Reset()
	assert.Zero(t, tracker.Wait())
}

func TestClient_Login_BacksOffAfterRepeatedFailures(t *testing.T) {
	attempts := 0
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	clock := clockwork.NewFakeClock()
	client, err := New(srv.URL, Options{Clock: clock})
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < failureThreshold; i++ {
		assert.ErrorIs(t, client.Login(ctx, "wrong"), ErrInvalidCredentials)
	}
	require.Equal(t, failureThreshold, attempts)

	// The next attempt is throttled locally and never reaches the server.
	err = client.Login(ctx, "wrong")
	var rateErr *RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, 2*time.Minute, rateErr.RetryAfter)
	assert.Equal(t, failureThreshold, attempts)

	// Once the backoff passes, the attempt goes through again.
	clock.Advance(2 * time.Minute)
	assert.ErrorIs(t, client.Login(ctx, "wrong"), ErrInvalidCredentials)
	assert.Equal(t, failureThreshold+1, attempts)
}
