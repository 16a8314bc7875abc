package reconcile

import (
	"context"
	"time"

	"github.com/spec-kit/complaint-triage/internal/client"
	"github.com/spec-kit/complaint-triage/internal/domain"
)

// CollectionEventKind tells which fetch domain an event belongs to.
type CollectionEventKind int

const (
	// EventList carries a list result or the error that replaced it.
	EventList CollectionEventKind = iota
	// EventStats carries a stats result or the error that replaced it.
	EventStats
)

// CollectionEvent is one list or stats observation. The two domains
// fail independently: a stats error never suppresses a list result
// from the same tick, and vice versa.
type CollectionEvent struct {
	Kind  CollectionEventKind
	List  *client.ListResponse
	Stats *client.StatsResponse
	Err   error
}

type collectionCommandKind int

const (
	collectionCmdRefresh collectionCommandKind = iota
	collectionCmdSetEnabled
	collectionCmdSetFilter
)

type collectionCommand struct {
	kind    collectionCommandKind
	enabled bool
	status  domain.Status
	urgency domain.Urgency
}

// CollectionWatcher polls the dashboard list and stats summary on a
// fixed cadence, independent of any single ticket's status. The set
// of tickets needing a tighter loop is not determinable client-side
// without fetching, so the whole collection reconciles coarsely.
type CollectionWatcher struct {
	fetcher  CollectionFetcher
	interval time.Duration

	commands chan collectionCommand
	events   chan CollectionEvent

	ctx    context.Context
	cancel context.CancelFunc

	// Loop-local state, touched only by run.
	enabled bool
	status  domain.Status
	urgency domain.Urgency
}

// NewCollectionWatcher starts the collection poll loop with an
// immediate first fetch of both list and stats.
func NewCollectionWatcher(fetcher CollectionFetcher, interval time.Duration) *CollectionWatcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &CollectionWatcher{
		fetcher:  fetcher,
		interval: interval,
		commands: make(chan collectionCommand),
		events:   make(chan CollectionEvent, 8),
		ctx:      ctx,
		cancel:   cancel,
		enabled:  true,
	}
	go w.run()
	return w
}

// Events returns the observation channel. Closed after Close.
func (w *CollectionWatcher) Events() <-chan CollectionEvent {
	return w.events
}

// Refresh fetches both list and stats immediately. Also resumes the
// cadence after a total connectivity failure disarmed it.
func (w *CollectionWatcher) Refresh() {
	w.send(collectionCommand{kind: collectionCmdRefresh})
}

// SetEnabled toggles the automatic cadence.
func (w *CollectionWatcher) SetEnabled(enabled bool) {
	w.send(collectionCommand{kind: collectionCmdSetEnabled, enabled: enabled})
}

// SetFilter replaces the list filters and re-fetches the list
// immediately, without waiting for the next tick. Stats are not
// re-fetched: they are filter-independent.
func (w *CollectionWatcher) SetFilter(status domain.Status, urgency domain.Urgency) {
	w.send(collectionCommand{kind: collectionCmdSetFilter, status: status, urgency: urgency})
}

// Close stops the watcher; no event is delivered afterwards.
func (w *CollectionWatcher) Close() {
	w.cancel()
}

func (w *CollectionWatcher) send(cmd collectionCommand) {
	select {
	case w.commands <- cmd:
	case <-w.ctx.Done():
	}
}

func (w *CollectionWatcher) run() {
	defer close(w.events)

	timer := time.NewTimer(w.interval)
	stopTimer(timer)
	defer stopTimer(timer)

	w.tick(timer)

	for {
		select {
		case <-w.ctx.Done():
			return

		case cmd := <-w.commands:
			switch cmd.kind {
			case collectionCmdRefresh:
				stopTimer(timer)
				w.tick(timer)

			case collectionCmdSetEnabled:
				w.enabled = cmd.enabled
				stopTimer(timer)
				if w.enabled {
					timer.Reset(w.interval)
				}

			case collectionCmdSetFilter:
				w.status = cmd.status
				w.urgency = cmd.urgency
				w.fetchList()
			}

		case <-timer.C:
			w.tick(timer)
		}
	}
}

// tick fetches both domains, then decides scheduling. The cadence
// keeps running as long as at least one domain answered; when both
// fail in the same tick the backend is plainly unreachable and the
// timer is disarmed until a manual refresh.
func (w *CollectionWatcher) tick(timer *time.Timer) {
	listErr := w.fetchList()
	statsErr := w.fetchStats()

	if !w.enabled {
		return
	}
	if listErr != nil && statsErr != nil {
		return
	}
	timer.Reset(w.interval)
}

func (w *CollectionWatcher) fetchList() error {
	resp, err := w.fetcher.List(w.ctx, client.ListQuery{Status: w.status, Urgency: w.urgency})
	if err != nil {
		w.emit(CollectionEvent{Kind: EventList, Err: err})
		return err
	}
	w.emit(CollectionEvent{Kind: EventList, List: resp})
	return nil
}

func (w *CollectionWatcher) fetchStats() error {
	resp, err := w.fetcher.Stats(w.ctx)
	if err != nil {
		w.emit(CollectionEvent{Kind: EventStats, Err: err})
		return err
	}
	w.emit(CollectionEvent{Kind: EventStats, Stats: resp})
	return nil
}

func (w *CollectionWatcher) emit(ev CollectionEvent) {
	select {
	case w.events <- ev:
	case <-w.ctx.Done():
	}
}
