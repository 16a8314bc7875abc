// Package reconcile keeps locally held ticket state eventually
// consistent with the ticket store. Watchers own a poll loop and
// deliver snapshots over a channel the view layer listens on; the
// view never fetches on its own timer.
//
// Both watchers run a single goroutine, so at most one fetch per
// watcher is ever in flight: the next poll is scheduled only after the
// previous fetch fully completes (fetch-then-wait, not a wall-clock
// cadence that can pile up).
package reconcile

import (
	"context"
	"time"

	"github.com/spec-kit/complaint-triage/internal/client"
	"github.com/spec-kit/complaint-triage/internal/domain"
)

// TicketFetcher fetches a single ticket. *client.Client satisfies it;
// tests substitute a stub.
type TicketFetcher interface {
	Get(ctx context.Context, id string) (*domain.Ticket, error)
}

// CollectionFetcher fetches the dashboard list and stats summary.
type CollectionFetcher interface {
	List(ctx context.Context, query client.ListQuery) (*client.ListResponse, error)
	Stats(ctx context.Context) (*client.StatsResponse, error)
}

// stopTimer halts a timer and drains a pending fire so a later Reset
// starts clean.
func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
