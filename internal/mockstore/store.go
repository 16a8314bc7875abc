// Package mockstore is an in-process stand-in for the complaint
// backend. It implements the same HTTP contract the dashboard speaks
// (create, list, get, patch, resolve, delete, stats) and simulates the
// asynchronous analysis pipeline, so the dashboard can be developed
// and end-to-end tested without the real service.
package mockstore

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/complaint-triage/internal/client"
	"github.com/spec-kit/complaint-triage/internal/domain"
)

// storeError carries the HTTP status and detail string the handler
// layer serializes into the {detail} envelope.
type storeError struct {
	Status int
	Detail string
}

func (e *storeError) Error() string { return e.Detail }

func notFound(id string) error {
	return &storeError{Status: 404, Detail: fmt.Sprintf("Ticket %s not found", id)}
}

// Store holds tickets in memory behind a single mutex. Writers
// replace whole snapshots; readers get copies, never aliases into the
// map, so concurrent pipeline transitions cannot tear a response.
type Store struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
	order   []string
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		tickets: make(map[string]*domain.Ticket),
		now:     time.Now,
	}
}

// Create registers a new pending ticket and returns a copy.
func (s *Store) Create(req client.CreateTicketRequest) *domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	ticket := &domain.Ticket{
		ID:            uuid.NewString(),
		Title:         req.Title,
		Description:   req.Description,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		Status:        domain.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.tickets[ticket.ID] = ticket
	s.order = append(s.order, ticket.ID)
	return copyTicket(ticket)
}

// Get returns a copy of the ticket.
func (s *Store) Get(id string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[id]
	if !ok {
		return nil, notFound(id)
	}
	return copyTicket(ticket), nil
}

// List returns tickets matching the filters, newest first, with the
// filtered total (the pagination denominator) and the limited window.
func (s *Store) List(query client.ListQuery) *client.ListResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*domain.Ticket, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		ticket := s.tickets[s.order[i]]
		if query.Status != "" && ticket.Status != query.Status {
			continue
		}
		if query.Urgency != "" && (ticket.Urgency == nil || *ticket.Urgency != query.Urgency) {
			continue
		}
		if query.Category != "" && (ticket.Category == nil || *ticket.Category != query.Category) {
			continue
		}
		matched = append(matched, ticket)
	}

	total := len(matched)
	offset := query.Offset
	if offset > total {
		offset = total
	}
	limit := query.Limit
	if limit <= 0 || offset+limit > total {
		limit = total - offset
	}

	items := make([]domain.Ticket, 0, limit)
	for _, ticket := range matched[offset : offset+limit] {
		items = append(items, *copyTicket(ticket))
	}
	return &client.ListResponse{Total: total, Items: items}
}

// Update patches the draft response and/or agent notes. Resolved
// tickets are immutable.
func (s *Store) Update(id string, req client.UpdateTicketRequest) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[id]
	if !ok {
		return nil, notFound(id)
	}
	if ticket.Status == domain.StatusResolved {
		return nil, &storeError{Status: 409, Detail: "Ticket is already resolved"}
	}
	if req.FinalResponse != nil {
		ticket.FinalResponse = req.FinalResponse
	}
	if req.AgentNotes != nil {
		ticket.AgentNotes = req.AgentNotes
	}
	ticket.UpdatedAt = s.now().UTC()
	return copyTicket(ticket), nil
}

// Resolve finalizes a ready ticket. The status check is the backend's
// authority: a stale client sees a 409 and must re-fetch. Status,
// resolved_by and resolved_at are stamped under the same lock, so no
// reader ever observes a half-resolved ticket.
func (s *Store) Resolve(id string, req client.ResolveTicketRequest) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[id]
	if !ok {
		return nil, notFound(id)
	}
	if ticket.Status != domain.StatusReady {
		return nil, &storeError{
			Status: 409,
			Detail: fmt.Sprintf("Ticket is not ready for resolution (status: %s)", ticket.Status),
		}
	}
	if len(strings.TrimSpace(req.FinalResponse)) < domain.FinalResponseMinLen {
		return nil, &storeError{Status: 400, Detail: "final_response must be at least 10 characters"}
	}
	if strings.TrimSpace(req.ResolvedBy) == "" {
		return nil, &storeError{Status: 400, Detail: "resolved_by is required"}
	}

	now := s.now().UTC()
	resolvedBy := strings.TrimSpace(req.ResolvedBy)
	ticket.Status = domain.StatusResolved
	ticket.FinalResponse = &req.FinalResponse
	ticket.ResolvedBy = &resolvedBy
	ticket.ResolvedAt = &now
	if req.AgentNotes != nil {
		ticket.AgentNotes = req.AgentNotes
	}
	ticket.UpdatedAt = now
	return copyTicket(ticket), nil
}

// Delete removes a ticket. Administrative side channel.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[id]; !ok {
		return notFound(id)
	}
	delete(s.tickets, id)
	for i, ticketID := range s.order {
		if ticketID == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Stats aggregates counts by status and urgency across all tickets.
func (s *Store) Stats() *client.StatsResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &client.StatsResponse{Total: len(s.tickets)}
	for _, ticket := range s.tickets {
		switch ticket.Status {
		case domain.StatusPending:
			stats.ByStatus.Pending++
		case domain.StatusProcessing:
			stats.ByStatus.Processing++
		case domain.StatusReady:
			stats.ByStatus.Ready++
		case domain.StatusResolved:
			stats.ByStatus.Resolved++
		case domain.StatusFailed:
			stats.ByStatus.Failed++
		}
		if ticket.Urgency != nil {
			switch *ticket.Urgency {
			case domain.UrgencyHigh:
				stats.ByUrgency.High++
			case domain.UrgencyMedium:
				stats.ByUrgency.Medium++
			case domain.UrgencyLow:
				stats.ByUrgency.Low++
			}
		}
	}
	return stats
}

// transition moves a ticket along a backend-driven edge of the state
// machine, applying mutate under the lock. Illegal transitions (the
// ticket was resolved or deleted meanwhile) are dropped silently: the
// pipeline yields to agent actions.
func (s *Store) transition(id string, to domain.Status, mutate func(*domain.Ticket)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[id]
	if !ok {
		return false
	}
	if !domain.ValidTransition(ticket.Status, to) {
		return false
	}
	ticket.Status = to
	if mutate != nil {
		mutate(ticket)
	}
	ticket.UpdatedAt = s.now().UTC()
	return true
}

func copyTicket(t *domain.Ticket) *domain.Ticket {
	clone := *t
	return &clone
}
