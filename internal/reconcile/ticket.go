package reconcile

import (
	"context"
	"time"

	"github.com/spec-kit/complaint-triage/internal/domain"
)

// TicketEvent is one observation of the watched ticket: either a
// fresh snapshot or the error that prevented one.
type TicketEvent struct {
	Ticket *domain.Ticket
	Err    error
}

type ticketCommandKind int

const (
	ticketCmdRefresh ticketCommandKind = iota
	ticketCmdSetEnabled
	ticketCmdObserve
)

type ticketCommand struct {
	kind    ticketCommandKind
	enabled bool
	ticket  *domain.Ticket
}

// TicketWatcher polls a single ticket while its last observed status
// is still mutable by the backend (pending or processing). A fetch
// failure disarms the timer, and resumption requires a manual
// refresh, so an unreachable backend is not hammered on a cadence.
type TicketWatcher struct {
	fetcher  TicketFetcher
	id       string
	interval time.Duration

	commands chan ticketCommand
	events   chan TicketEvent

	ctx    context.Context
	cancel context.CancelFunc

	// Loop-local state, touched only by run.
	enabled    bool
	lastStatus domain.Status
	haveStatus bool
}

// NewTicketWatcher starts watching the given ticket id. The first
// fetch is issued immediately; follow-ups obey the scheduling rule.
// Callers must drain Events and call Close when done.
func NewTicketWatcher(fetcher TicketFetcher, id string, interval time.Duration) *TicketWatcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &TicketWatcher{
		fetcher:  fetcher,
		id:       id,
		interval: interval,
		commands: make(chan ticketCommand),
		events:   make(chan TicketEvent, 8),
		ctx:      ctx,
		cancel:   cancel,
		enabled:  true,
	}
	go w.run()
	return w
}

// Events returns the observation channel. Closed after Close.
func (w *TicketWatcher) Events() <-chan TicketEvent {
	return w.events
}

// Refresh fetches immediately, superseding any armed timer. This is
// also the path that resumes polling after a fetch failure.
func (w *TicketWatcher) Refresh() {
	w.send(ticketCommand{kind: ticketCmdRefresh})
}

// SetEnabled toggles automatic polling. Disabling cancels the armed
// timer deterministically; re-enabling arms the next interval tick
// when the last observed status is still polling-eligible, with no
// catch-up fetch.
func (w *TicketWatcher) SetEnabled(enabled bool) {
	w.send(ticketCommand{kind: ticketCmdSetEnabled, enabled: enabled})
}

// Observe feeds a ticket obtained outside the poll loop (typically a
// mutation response) into the scheduling decision, so the timer state
// follows the freshest known status. The snapshot is not re-emitted;
// the caller already has it.
func (w *TicketWatcher) Observe(ticket *domain.Ticket) {
	if ticket == nil {
		return
	}
	w.send(ticketCommand{kind: ticketCmdObserve, ticket: ticket})
}

// Close stops the watcher. No event is delivered after Close returns
// and any armed timer is cancelled.
func (w *TicketWatcher) Close() {
	w.cancel()
}

func (w *TicketWatcher) send(cmd ticketCommand) {
	select {
	case w.commands <- cmd:
	case <-w.ctx.Done():
	}
}

func (w *TicketWatcher) run() {
	defer close(w.events)

	timer := time.NewTimer(w.interval)
	stopTimer(timer)
	defer stopTimer(timer)

	w.fetch(timer)

	for {
		select {
		case <-w.ctx.Done():
			return

		case cmd := <-w.commands:
			switch cmd.kind {
			case ticketCmdRefresh:
				stopTimer(timer)
				w.fetch(timer)

			case ticketCmdSetEnabled:
				w.enabled = cmd.enabled
				stopTimer(timer)
				if w.enabled && w.haveStatus && domain.PollingEligible(w.lastStatus) {
					timer.Reset(w.interval)
				}

			case ticketCmdObserve:
				w.lastStatus = cmd.ticket.Status
				w.haveStatus = true
				stopTimer(timer)
				if w.enabled && domain.PollingEligible(w.lastStatus) {
					timer.Reset(w.interval)
				}
			}

		case <-timer.C:
			w.fetch(timer)
		}
	}
}

// fetch runs one synchronous fetch and then makes the scheduling
// decision. The timer is armed iff the fetch succeeded, polling is
// enabled, and the observed status is pending or processing; a failed
// fetch leaves the timer disarmed.
func (w *TicketWatcher) fetch(timer *time.Timer) {
	ticket, err := w.fetcher.Get(w.ctx, w.id)
	if err != nil {
		w.emit(TicketEvent{Err: err})
		return
	}

	w.lastStatus = ticket.Status
	w.haveStatus = true
	w.emit(TicketEvent{Ticket: ticket})

	if w.enabled && domain.PollingEligible(ticket.Status) {
		timer.Reset(w.interval)
	}
}

func (w *TicketWatcher) emit(ev TicketEvent) {
	select {
	case w.events <- ev:
	case <-w.ctx.Done():
	}
}
