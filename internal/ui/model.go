// Package ui implements the agent-facing terminal dashboard. Built on
// bubbletea, it renders three views on top of the reconcile watchers:
// the ticket list with stats and filters, a single-ticket detail with
// draft editing and resolution, and the new-complaint form. The views
// are projections: every ticket snapshot they display came from a
// watcher event or a confirmed mutation response, never from a
// locally patched copy.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-triage/internal/client"
	"github.com/spec-kit/complaint-triage/internal/domain"
	"github.com/spec-kit/complaint-triage/internal/reconcile"
	"github.com/spec-kit/complaint-triage/pkg/apierror"
)

// View identifies which screen is active.
type View int

const (
	// ViewList is the dashboard: stats, filters and the ticket table.
	ViewList View = iota
	// ViewDetail shows one ticket with editing and resolution.
	ViewDetail
	// ViewForm is the new-complaint intake form.
	ViewForm
)

// collectionEventMsg wraps a collection watcher event for the
// bubbletea loop.
type collectionEventMsg struct {
	event reconcile.CollectionEvent
}

// ticketEventMsg wraps a ticket watcher event. generation guards
// against events from a watcher that was already torn down when the
// user navigated away.
type ticketEventMsg struct {
	event      reconcile.TicketEvent
	generation int
}

// mutationResultMsg is delivered when an asynchronous update or
// resolve call completes.
type mutationResultMsg struct {
	ticket     *domain.Ticket
	err        error
	resolved   bool
	generation int
}

// createResultMsg is delivered when an asynchronous create completes.
// generation guards against a result from a form the user already
// cancelled.
type createResultMsg struct {
	resp       *client.CreateTicketResponse
	err        error
	generation int
}

// Model is the top-level bubbletea model for the dashboard.
type Model struct {
	client *client.Client
	logger *zap.Logger
	theme  Theme
	keys   KeyMap

	width  int
	height int

	view View
	list ListState
	form FormState

	collection *reconcile.CollectionWatcher
	watcher    *reconcile.TicketWatcher
	generation int // Bumped on each detail watcher teardown.
	detail     DetailState

	formGeneration int // Bumped on each form teardown.

	ticketInterval time.Duration
	spin           spinner.Model
}

// NewModel creates the dashboard model and starts the collection
// watcher. openTicket, when non-empty, jumps straight into the detail
// view for that id.
func NewModel(apiClient *client.Client, logger *zap.Logger, collectionInterval, ticketInterval time.Duration, openTicket string) *Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot

	model := &Model{
		client:         apiClient,
		logger:         logger,
		theme:          DefaultTheme,
		keys:           DefaultKeyMap,
		view:           ViewList,
		list:           NewListState(),
		form:           NewFormState(),
		collection:     reconcile.NewCollectionWatcher(apiClient, collectionInterval),
		ticketInterval: ticketInterval,
		spin:           spin,
	}
	if openTicket != "" {
		model.openDetail(openTicket)
	}
	return model
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		listenForCollectionEvent(m.collection.Events()),
		m.spin.Tick,
	}
	if m.watcher != nil {
		cmds = append(cmds, listenForTicketEvent(m.watcher.Events(), m.generation))
	}
	return tea.Batch(cmds...)
}

// listenForCollectionEvent blocks until the collection watcher emits,
// then delivers the event as a message.
func listenForCollectionEvent(channel <-chan reconcile.CollectionEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-channel
		if !ok {
			return nil
		}
		return collectionEventMsg{event: event}
	}
}

// listenForTicketEvent blocks until the ticket watcher emits.
func listenForTicketEvent(channel <-chan reconcile.TicketEvent, generation int) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-channel
		if !ok {
			return nil
		}
		return ticketEventMsg{event: event, generation: generation}
	}
}

// Update implements tea.Model.
func (m *Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.resizeInputs()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(message)
		return m, cmd

	case collectionEventMsg:
		m.applyCollectionEvent(message.event)
		return m, listenForCollectionEvent(m.collection.Events())

	case ticketEventMsg:
		if message.generation != m.generation || m.watcher == nil {
			return m, nil
		}
		m.applyTicketEvent(message.event)
		return m, listenForTicketEvent(m.watcher.Events(), m.generation)

	case mutationResultMsg:
		m.applyMutationResult(message)
		return m, nil

	case createResultMsg:
		m.applyCreateResult(message)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(message)
	}

	return m, nil
}

func (m *Model) handleKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Text-entry modes capture everything except their own controls.
	if m.view == ViewForm {
		return m.updateForm(message)
	}
	if m.view == ViewDetail && m.detail.mode != detailModeView {
		return m.updateDetailEditing(message)
	}

	if key.Matches(message, m.keys.Quit) {
		m.teardown()
		return m, tea.Quit
	}

	switch m.view {
	case ViewList:
		return m.updateList(message)
	case ViewDetail:
		return m.updateDetail(message)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return "loading..."
	}
	switch m.view {
	case ViewDetail:
		return m.viewDetail()
	case ViewForm:
		return m.viewForm()
	default:
		return m.viewList()
	}
}

// openDetail tears down any previous ticket watcher and starts one
// for the given id. The watcher issues its first fetch immediately.
func (m *Model) openDetail(id string) {
	m.closeDetailWatcher()
	m.view = ViewDetail
	m.detail = NewDetailState(id)
	m.watcher = reconcile.NewTicketWatcher(m.client, id, m.ticketInterval)
	// The list view is hidden; its cadence pauses until we return.
	m.collection.SetEnabled(false)
}

// closeDetail returns to the list view. The ticket watcher's timers
// die with it; the collection cadence resumes with a catch-up fetch.
func (m *Model) closeDetail() {
	m.closeDetailWatcher()
	m.view = ViewList
	m.collection.SetEnabled(m.list.autoRefresh)
	m.collection.Refresh()
}

func (m *Model) closeDetailWatcher() {
	if m.watcher != nil {
		m.watcher.Close()
		m.watcher = nil
		m.generation++
	}
}

func (m *Model) teardown() {
	m.closeDetailWatcher()
	m.collection.Close()
}

// applyTicketEvent replaces the canonical detail snapshot. Fetch
// errors disarm the watcher timer on their own; here they only become
// a banner. Local edit buffers are never merged with fetched state.
func (m *Model) applyTicketEvent(event reconcile.TicketEvent) {
	m.detail.loading = false
	if event.Err != nil {
		m.detail.errMsg = apierror.Message(event.Err)
		m.logger.Warn("ticket fetch failed", zap.String("ticket_id", m.detail.id), zap.Error(event.Err))
		return
	}
	m.detail.errMsg = ""
	m.detail.setCanonical(event.Ticket)
}

// applyCollectionEvent folds a list or stats observation into the
// list view. The two domains fail independently; an error in one
// leaves the other's last good data on screen.
func (m *Model) applyCollectionEvent(event reconcile.CollectionEvent) {
	m.list.loading = false
	switch event.Kind {
	case reconcile.EventList:
		if event.Err != nil {
			m.list.errMsg = apierror.Message(event.Err)
			return
		}
		m.list.errMsg = ""
		m.list.setTickets(event.List)
	case reconcile.EventStats:
		if event.Err != nil {
			m.logger.Warn("stats fetch failed", zap.Error(event.Err))
			return
		}
		m.list.stats = event.Stats
	}
}

// saveDraftCmd issues the draft update. The returned canonical copy
// supersedes the local edit buffers (server value wins).
func (m *Model) saveDraftCmd(id string, req client.UpdateTicketRequest, generation int) tea.Cmd {
	return func() tea.Msg {
		ticket, err := m.client.Update(context.Background(), id, req)
		return mutationResultMsg{ticket: ticket, err: err, generation: generation}
	}
}

// resolveCmd issues the resolve. Validation runs inside the client
// before any network call.
func (m *Model) resolveCmd(id string, in domain.ResolveInput, generation int) tea.Cmd {
	return func() tea.Msg {
		ticket, err := m.client.Resolve(context.Background(), id, in)
		return mutationResultMsg{ticket: ticket, err: err, resolved: true, generation: generation}
	}
}

// createCmd submits the intake form.
func (m *Model) createCmd(in domain.CreateInput, generation int) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.client.Create(context.Background(), in)
		return createResultMsg{resp: resp, err: err, generation: generation}
	}
}

// applyMutationResult handles save/resolve completion. On success the
// confirmed ticket replaces the canonical copy and feeds the watcher's
// scheduling decision. A backend precondition rejection means our
// last-seen status was stale: show the detail and re-fetch instead of
// retrying blindly.
func (m *Model) applyMutationResult(result mutationResultMsg) {
	if result.generation != m.generation || m.view != ViewDetail {
		return
	}
	m.detail.saving = false

	if result.err != nil {
		m.detail.errMsg = apierror.Message(result.err)
		if apierror.IsPrecondition(result.err) && m.watcher != nil {
			m.watcher.Refresh()
		}
		return
	}

	m.detail.errMsg = ""
	m.detail.setCanonical(result.ticket)
	m.detail.mode = detailModeView
	if m.watcher != nil {
		m.watcher.Observe(result.ticket)
	}
	if result.resolved {
		m.detail.notice = "Ticket resolved"
		m.logger.Info("ticket resolved", zap.String("ticket_id", result.ticket.ID))
	} else {
		m.detail.notice = "Draft saved"
	}
}

// applyCreateResult handles intake submission completion. Results
// from a form the user cancelled and reopened carry a stale
// generation and are dropped.
func (m *Model) applyCreateResult(result createResultMsg) {
	if result.generation != m.formGeneration || m.view != ViewForm {
		return
	}
	m.form.submitting = false

	if result.err != nil {
		m.form.errMsg = apierror.Message(result.err)
		return
	}

	m.form = NewFormState()
	m.formGeneration++
	m.view = ViewList
	m.list.notice = result.resp.Message
	m.collection.SetEnabled(m.list.autoRefresh)
	m.collection.Refresh()
	m.logger.Info("ticket created", zap.String("ticket_id", result.resp.ID), zap.String("status", string(result.resp.Status)))
}

func (m *Model) resizeInputs() {
	width := m.width - 8
	if width < 20 {
		width = 20
	}
	m.detail.resize(width)
	m.form.resize(width)
}
