package stampclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_FetchesOnEveryTick(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/stamps", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Stamp{{ID: "s1", Type: "gold", User: "userA"}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	clock := clockwork.NewFakeClock()
	client, err := New(srv.URL, Options{Clock: clock})
	require.NoError(t, err)

	updates := make(chan []Stamp, 8)
	poller := NewPoller(client, 2*time.Second, func(stamps []Stamp) {
		updates <- stamps
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	// First fetch happens before any tick.
	first := <-updates
	require.Len(t, first, 1)
	assert.Equal(t, "s1", first[0].ID)

	// Each tick produces another fetch.
	clock.BlockUntil(1)
	clock.Advance(2 * time.Second)
	<-updates
	clock.Advance(2 * time.Second)
	<-updates

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestPoller_StopsOnCancel(t *testing.T) {
	fetches := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/stamps", func(w http.ResponseWriter, r *http.Request) {
		fetches++
		json.NewEncoder(w).Encode([]Stamp{})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	clock := clockwork.NewFakeClock()
	client, err := New(srv.URL, Options{Clock: clock})
	require.NoError(t, err)

	updates := make(chan []Stamp, 8)
	poller := NewPoller(client, 2*time.Second, func(stamps []Stamp) {
		updates <- stamps
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	<-updates
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	// No further fetches or updates after cancellation.
	before := fetches
	clock.Advance(10 * time.Second)
	select {
	case <-updates:
		t.Fatal("update delivered after cancel")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, before, fetches)
}

func TestPoller_ReportsFetchErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/stamps", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	clock := clockwork.NewFakeClock()
	client, err := New(srv.URL, Options{Clock: clock})
	require.NoError(t, err)

	errs := make(chan error, 8)
	poller := NewPoller(client, 2*time.Second, func([]Stamp) {
		t.Error("no update expected for a failing fetch")
	}, func(err error) {
		errs <- err
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	assert.ErrorIs(t, <-errs, ErrUnauthenticated)

	cancel()
	<-done
}

func TestPoller_DefaultInterval(t *testing.T) {
	client, err := New("http://localhost", Options{})
	require.NoError(t, err)

	p := NewPoller(client, 0, func([]Stamp) {}, nil)
	assert.Equal(t, defaultPollInterval, p.interval)
}
