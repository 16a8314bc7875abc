package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-triage/internal/client"
	"github.com/spec-kit/complaint-triage/internal/domain"
	"github.com/spec-kit/complaint-triage/internal/reconcile"
	"github.com/spec-kit/complaint-triage/pkg/apierror"
)

type fakeTicketFetcher struct {
	mu     sync.Mutex
	ticket domain.Ticket
	calls  int
}

func (f *fakeTicketFetcher) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	copied := f.ticket
	return &copied, nil
}

func (f *fakeTicketFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCollectionFetcher struct{}

func (f *fakeCollectionFetcher) List(ctx context.Context, query client.ListQuery) (*client.ListResponse, error) {
	return &client.ListResponse{Items: []domain.Ticket{}}, nil
}

func (f *fakeCollectionFetcher) Stats(ctx context.Context) (*client.StatsResponse, error) {
	return &client.StatsResponse{}, nil
}

func newTestModel() *Model {
	return &Model{
		logger: zap.NewNop(),
		theme:  DefaultTheme,
		keys:   DefaultKeyMap,
		view:   ViewList,
		list:   NewListState(),
		form:   NewFormState(),
	}
}

func readyTicket(draft *string) *domain.Ticket {
	return &domain.Ticket{
		ID:              "t-1",
		Title:           "Charged twice",
		Status:          domain.StatusReady,
		AIDraftResponse: draft,
	}
}

func TestCycleStatusWrapsAround(t *testing.T) {
	current := domain.Status("")
	seen := []domain.Status{}
	for range statusCycle {
		current = cycleStatus(current)
		seen = append(seen, current)
	}
	assert.Equal(t, domain.StatusPending, seen[0])
	assert.Equal(t, domain.Status(""), seen[len(seen)-1], "cycle returns to no filter")

	assert.Equal(t, domain.UrgencyHigh, cycleUrgency(""))
	assert.Equal(t, domain.Urgency(""), cycleUrgency(domain.UrgencyLow))
}

func TestListStableFocus(t *testing.T) {
	l := NewListState()
	l.setTickets(&client.ListResponse{Total: 3, Items: []domain.Ticket{
		{ID: "a"}, {ID: "b"}, {ID: "c"},
	}})
	l.cursor = 1
	l.rememberSelection()
	assert.Equal(t, "b", l.selectedID)

	// A refresh that reorders the list keeps focus on the same ticket.
	l.setTickets(&client.ListResponse{Total: 3, Items: []domain.Ticket{
		{ID: "c"}, {ID: "b"}, {ID: "a"},
	}})
	assert.Equal(t, 1, l.cursor)
	assert.Equal(t, "b", l.selectedID)

	// The selected ticket disappearing clamps the cursor into range.
	l.cursor = 2
	l.rememberSelection()
	l.setTickets(&client.ListResponse{Total: 1, Items: []domain.Ticket{{ID: "c"}}})
	assert.Equal(t, 0, l.cursor)
}

func TestInvariantViolationBlocksResolve(t *testing.T) {
	d := NewDetailState("t-1")

	// Ready without a draft violates the backend contract: the view
	// surfaces the inconsistency and withholds the resolve action.
	d.setCanonical(readyTicket(nil))
	require.Error(t, d.invariantErr)
	assert.False(t, d.canResolve())
	assert.True(t, d.canEditDraft())

	draft := "We apologize for the inconvenience."
	d.setCanonical(readyTicket(&draft))
	require.NoError(t, d.invariantErr)
	assert.True(t, d.canResolve())
}

func TestBeginEditSeedsBuffers(t *testing.T) {
	draft := "AI draft text for the customer."
	d := NewDetailState("t-1")
	d.setCanonical(readyTicket(&draft))

	d.beginEdit(detailModeEdit)
	assert.Equal(t, draft, d.response.Value(), "no saved response: seed from the AI draft")

	// A saved final response takes precedence over the draft.
	final := "Edited final response."
	ticket := readyTicket(&draft)
	ticket.FinalResponse = &final
	d.setCanonical(ticket)
	d.beginEdit(detailModeResolve)
	assert.Equal(t, final, d.response.Value())
	assert.Empty(t, d.agentName.Value())
}

func TestSubmitResolveValidatesLocally(t *testing.T) {
	m := newTestModel()
	m.view = ViewDetail
	draft := "We apologize for the inconvenience."
	m.detail = NewDetailState("t-1")
	m.detail.setCanonical(readyTicket(&draft))
	m.detail.beginEdit(detailModeResolve)
	m.detail.response.SetValue("short")
	m.detail.agentName.SetValue("agent42")

	_, cmd := m.submitDetail()
	assert.Nil(t, cmd, "invalid input must not produce a network call")
	assert.False(t, m.detail.saving)
	assert.NotEmpty(t, m.detail.errMsg)
	assert.Equal(t, detailModeResolve, m.detail.mode, "the edit stays open for correction")
}

func TestMutationPreconditionTriggersRefetch(t *testing.T) {
	draft := "We apologize for the inconvenience."
	fetcher := &fakeTicketFetcher{ticket: *readyTicket(&draft)}

	m := newTestModel()
	m.view = ViewDetail
	m.detail = NewDetailState("t-1")
	m.detail.setCanonical(readyTicket(&draft))
	m.watcher = reconcile.NewTicketWatcher(fetcher, "t-1", time.Minute)
	defer m.watcher.Close()

	require.Eventually(t, func() bool { return fetcher.callCount() == 1 }, time.Second, 5*time.Millisecond)

	m.applyMutationResult(mutationResultMsg{
		err:        apierror.NewRejected("Ticket is not ready for resolution (status: resolved)", 409),
		resolved:   true,
		generation: m.generation,
	})

	// The rejection detail is surfaced verbatim and a re-fetch is
	// issued; the snapshot is never patched optimistically.
	assert.Equal(t, "Ticket is not ready for resolution (status: resolved)", m.detail.errMsg)
	assert.Equal(t, domain.StatusReady, m.detail.ticket.Status)
	require.Eventually(t, func() bool { return fetcher.callCount() == 2 }, time.Second, 5*time.Millisecond)
}

func TestMutationSuccessReplacesSnapshot(t *testing.T) {
	draft := "We apologize for the inconvenience."
	m := newTestModel()
	m.view = ViewDetail
	m.detail = NewDetailState("t-1")
	m.detail.setCanonical(readyTicket(&draft))
	m.detail.mode = detailModeResolve
	m.detail.saving = true

	resolvedBy := "agent42"
	now := time.Now().UTC()
	final := "Refund issued, apologies."
	resolved := readyTicket(&draft)
	resolved.Status = domain.StatusResolved
	resolved.FinalResponse = &final
	resolved.ResolvedBy = &resolvedBy
	resolved.ResolvedAt = &now

	m.applyMutationResult(mutationResultMsg{ticket: resolved, resolved: true, generation: m.generation})

	assert.Equal(t, domain.StatusResolved, m.detail.ticket.Status)
	assert.Equal(t, detailModeView, m.detail.mode)
	assert.False(t, m.detail.saving)
	assert.Equal(t, "Ticket resolved", m.detail.notice)
	assert.Empty(t, m.detail.errMsg)
}

func TestStaleMutationResultDropped(t *testing.T) {
	draft := "We apologize for the inconvenience."
	m := newTestModel()
	m.view = ViewDetail
	m.detail = NewDetailState("t-1")
	m.detail.setCanonical(readyTicket(&draft))
	m.generation = 3

	stale := readyTicket(&draft)
	stale.Status = domain.StatusResolved
	m.applyMutationResult(mutationResultMsg{ticket: stale, resolved: true, generation: 2})

	assert.Equal(t, domain.StatusReady, m.detail.ticket.Status, "a result from a torn-down view must not land")
}

func TestTicketEventErrorKeepsSnapshot(t *testing.T) {
	draft := "We apologize for the inconvenience."
	m := newTestModel()
	m.view = ViewDetail
	m.detail = NewDetailState("t-1")
	m.detail.setCanonical(readyTicket(&draft))

	m.applyTicketEvent(reconcile.TicketEvent{Err: apierror.NewTransport(context.DeadlineExceeded)})

	assert.Equal(t, "No response from server. Please check your connection.", m.detail.errMsg)
	require.NotNil(t, m.detail.ticket, "the last good snapshot stays on screen")
	assert.Equal(t, domain.StatusReady, m.detail.ticket.Status)
}

func TestCollectionEventIndependentDomains(t *testing.T) {
	m := newTestModel()
	m.list.setTickets(&client.ListResponse{Total: 1, Items: []domain.Ticket{{ID: "a", Title: "kept"}}})

	// A list failure shows a banner but keeps the last good rows.
	m.applyCollectionEvent(reconcile.CollectionEvent{
		Kind: reconcile.EventList,
		Err:  apierror.NewTransport(context.DeadlineExceeded),
	})
	assert.NotEmpty(t, m.list.errMsg)
	require.Len(t, m.list.tickets, 1)

	// Stats from the same tick still land.
	m.applyCollectionEvent(reconcile.CollectionEvent{
		Kind:  reconcile.EventStats,
		Stats: &client.StatsResponse{Total: 7},
	})
	require.NotNil(t, m.list.stats)
	assert.Equal(t, 7, m.list.stats.Total)

	// The next good list clears the banner.
	m.applyCollectionEvent(reconcile.CollectionEvent{
		Kind: reconcile.EventList,
		List: &client.ListResponse{Total: 0, Items: []domain.Ticket{}},
	})
	assert.Empty(t, m.list.errMsg)
	assert.Empty(t, m.list.tickets)
}

func TestCreateResultReturnsToList(t *testing.T) {
	m := newTestModel()
	m.view = ViewForm
	m.collection = reconcile.NewCollectionWatcher(&fakeCollectionFetcher{}, time.Minute)
	defer m.collection.Close()

	m.applyCreateResult(createResultMsg{resp: &client.CreateTicketResponse{
		ID:      "t-9",
		Status:  domain.StatusPending,
		Message: "Complaint received. Analysis is running in the background.",
	}})

	assert.Equal(t, ViewList, m.view)
	assert.Equal(t, "Complaint received. Analysis is running in the background.", m.list.notice)
	assert.Empty(t, m.form.errMsg)
}

func TestStaleCreateResultDropped(t *testing.T) {
	m := newTestModel()
	m.view = ViewForm
	m.formGeneration = 2 // The form was cancelled and reopened.

	m.applyCreateResult(createResultMsg{
		resp: &client.CreateTicketResponse{ID: "t-9", Status: domain.StatusPending},
	})

	assert.Equal(t, ViewForm, m.view, "a result from a cancelled form must not navigate away")
	assert.Empty(t, m.list.notice)
}

func TestTruncateCountsRunes(t *testing.T) {
	assert.Equal(t, "héllo", truncate("héllo", 5))
	assert.Equal(t, "héll…", truncate("héllo world", 5))
	assert.Equal(t, "ü", truncate("über", 1))
}

func TestCreateResultErrorStaysOnForm(t *testing.T) {
	m := newTestModel()
	m.view = ViewForm
	m.form.submitting = true

	m.applyCreateResult(createResultMsg{err: apierror.NewValidation("description must be at least 10 characters")})

	assert.Equal(t, ViewForm, m.view)
	assert.False(t, m.form.submitting)
	assert.Equal(t, "description must be at least 10 characters", m.form.errMsg)
}
