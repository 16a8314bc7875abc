package client

import "github.com/spec-kit/complaint-triage/internal/domain"

// CreateTicketRequest payload for POST /api/tickets/.
type CreateTicketRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	CustomerEmail string  `json:"customer_email"`
	CustomerName  *string `json:"customer_name,omitempty"`
}

// CreateTicketResponse is the non-blocking create acknowledgment: the
// ticket id and initial status, not the materialized ticket.
type CreateTicketResponse struct {
	ID      string        `json:"id"`
	Status  domain.Status `json:"status"`
	Message string        `json:"message"`
}

// UpdateTicketRequest payload for PATCH /api/tickets/{id}. Absent
// fields are left untouched by the backend.
type UpdateTicketRequest struct {
	FinalResponse *string `json:"final_response,omitempty"`
	AgentNotes    *string `json:"agent_notes,omitempty"`
}

// ResolveTicketRequest payload for POST /api/tickets/{id}/resolve.
type ResolveTicketRequest struct {
	FinalResponse string  `json:"final_response"`
	AgentNotes    *string `json:"agent_notes,omitempty"`
	ResolvedBy    string  `json:"resolved_by"`
}

// ListQuery captures the server-side filters for GET /api/tickets/.
type ListQuery struct {
	Status   domain.Status
	Urgency  domain.Urgency
	Category domain.Category
	Limit    int
	Offset   int
}

// ListResponse is the filtered item set plus the filtered total.
type ListResponse struct {
	Total int             `json:"total"`
	Items []domain.Ticket `json:"items"`
}

// StatsResponse is the aggregate summary for the dashboard header.
type StatsResponse struct {
	Total     int           `json:"total"`
	ByStatus  StatusCounts  `json:"by_status"`
	ByUrgency UrgencyCounts `json:"by_urgency"`
}

// StatusCounts buckets tickets by lifecycle status.
type StatusCounts struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Ready      int `json:"ready"`
	Resolved   int `json:"resolved"`
	Failed     int `json:"failed"`
}

// UrgencyCounts buckets tickets by AI-assigned urgency.
type UrgencyCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// errorEnvelope is the backend's error body.
type errorEnvelope struct {
	Detail string `json:"detail"`
}
