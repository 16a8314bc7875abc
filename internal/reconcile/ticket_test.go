package reconcile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-triage/internal/domain"
	"github.com/spec-kit/complaint-triage/pkg/apierror"
)

const testInterval = 30 * time.Millisecond

// quietWindow is how long we wait before declaring that no further
// fetch is coming. Several intervals, so a mistakenly armed timer
// would have fired.
const quietWindow = 4 * testInterval

type stubTicketFetcher struct {
	mu     sync.Mutex
	status domain.Status
	err    error
	calls  int
}

func (s *stubTicketFetcher) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Ticket{ID: id, Title: "stub", Status: s.status}, nil
}

func (s *stubTicketFetcher) set(status domain.Status, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.err = err
}

func (s *stubTicketFetcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func nextTicketEvent(t *testing.T, w *TicketWatcher) TicketEvent {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		require.True(t, ok, "events channel closed unexpectedly")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for ticket event")
		return TicketEvent{}
	}
}

func assertNoTicketEvent(t *testing.T, w *TicketWatcher) {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		if ok {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(quietWindow):
	}
}

func TestTicketWatcherPollsWhileEligible(t *testing.T) {
	fetcher := &stubTicketFetcher{status: domain.StatusProcessing}
	w := NewTicketWatcher(fetcher, "t-1", testInterval)
	defer w.Close()

	first := nextTicketEvent(t, w)
	require.NoError(t, first.Err)
	assert.Equal(t, domain.StatusProcessing, first.Ticket.Status)

	// The cadence keeps going while the backend can still mutate the
	// ticket.
	second := nextTicketEvent(t, w)
	require.NoError(t, second.Err)
	third := nextTicketEvent(t, w)
	require.NoError(t, third.Err)
	assert.GreaterOrEqual(t, fetcher.callCount(), 3)
}

func TestTicketWatcherStopsOnTerminalStatus(t *testing.T) {
	fetcher := &stubTicketFetcher{status: domain.StatusReady}
	w := NewTicketWatcher(fetcher, "t-1", testInterval)
	defer w.Close()

	ev := nextTicketEvent(t, w)
	require.NoError(t, ev.Err)
	assert.Equal(t, domain.StatusReady, ev.Ticket.Status)

	assertNoTicketEvent(t, w)
	assert.Equal(t, 1, fetcher.callCount(), "ready ticket must not be re-fetched")
}

func TestTicketWatcherErrorDisarmsUntilRefresh(t *testing.T) {
	fetcher := &stubTicketFetcher{err: apierror.NewTransport(context.DeadlineExceeded)}
	w := NewTicketWatcher(fetcher, "t-1", testInterval)
	defer w.Close()

	ev := nextTicketEvent(t, w)
	require.Error(t, ev.Err)
	assert.Nil(t, ev.Ticket)

	// No automatic retry after a failure.
	assertNoTicketEvent(t, w)
	assert.Equal(t, 1, fetcher.callCount())

	// A manual refresh is the resumption path.
	fetcher.set(domain.StatusProcessing, nil)
	w.Refresh()

	ev = nextTicketEvent(t, w)
	require.NoError(t, ev.Err)
	assert.Equal(t, domain.StatusProcessing, ev.Ticket.Status)

	// Polling is re-armed by the successful fetch.
	ev = nextTicketEvent(t, w)
	require.NoError(t, ev.Err)
}

func TestTicketWatcherSetEnabled(t *testing.T) {
	fetcher := &stubTicketFetcher{status: domain.StatusPending}
	w := NewTicketWatcher(fetcher, "t-1", testInterval)
	defer w.Close()

	ev := nextTicketEvent(t, w)
	require.NoError(t, ev.Err)

	w.SetEnabled(false)
	// Drain anything that was already in flight before the toggle
	// landed, then expect silence.
	drainDeadline := time.After(quietWindow)
drain:
	for {
		select {
		case <-w.Events():
		case <-drainDeadline:
			break drain
		}
	}
	before := fetcher.callCount()
	assertNoTicketEvent(t, w)
	assert.Equal(t, before, fetcher.callCount())

	// Re-enabling arms the next interval tick, no catch-up fetch.
	w.SetEnabled(true)
	ev = nextTicketEvent(t, w)
	require.NoError(t, ev.Err)
}

func TestTicketWatcherObserveTerminalDisarms(t *testing.T) {
	fetcher := &stubTicketFetcher{status: domain.StatusProcessing}
	w := NewTicketWatcher(fetcher, "t-1", testInterval)
	defer w.Close()

	ev := nextTicketEvent(t, w)
	require.NoError(t, ev.Err)

	// A mutation response showing the ticket resolved supersedes the
	// polled status in the scheduling decision.
	w.Observe(&domain.Ticket{ID: "t-1", Status: domain.StatusResolved})

	drainDeadline := time.After(quietWindow)
drain:
	for {
		select {
		case <-w.Events():
		case <-drainDeadline:
			break drain
		}
	}
	before := fetcher.callCount()
	assertNoTicketEvent(t, w)
	assert.Equal(t, before, fetcher.callCount())
}

func TestTicketWatcherCloseClosesEvents(t *testing.T) {
	fetcher := &stubTicketFetcher{status: domain.StatusResolved}
	w := NewTicketWatcher(fetcher, "t-1", testInterval)

	nextTicketEvent(t, w)
	w.Close()

	select {
	case _, ok := <-w.Events():
		assert.False(t, ok, "events channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("events channel not closed after Close")
	}
}
