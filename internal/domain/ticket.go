package domain

import "time"

// Status enumerates lifecycle states for complaint tickets.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusResolved   Status = "resolved"
	StatusFailed     Status = "failed"
)

// Urgency enumerates AI-assigned urgency levels.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// Category enumerates AI-assigned complaint categories.
type Category string

const (
	CategoryBilling        Category = "billing"
	CategoryTechnical      Category = "technical"
	CategoryFeatureRequest Category = "feature_request"
)

// Ticket is the complaint record as served by the ticket store. The
// struct mirrors the backend's wire shape directly; triage and
// resolution fields are pointers so "not yet written" survives a
// round trip.
type Ticket struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	CustomerEmail string  `json:"customer_email"`
	CustomerName  *string `json:"customer_name"`

	Category        *Category `json:"category"`
	SentimentScore  *int      `json:"sentiment_score"`
	Urgency         *Urgency  `json:"urgency"`
	AIDraftResponse *string   `json:"ai_draft_response"`

	FinalResponse *string    `json:"final_response"`
	AgentNotes    *string    `json:"agent_notes"`
	ResolvedBy    *string    `json:"resolved_by"`
	ResolvedAt    *time.Time `json:"resolved_at"`

	Status             Status  `json:"status"`
	ErrorMessage       *string `json:"error_message"`
	ProcessingAttempts int     `json:"processing_attempts"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Capability lists the client-issued mutations legal for a status.
type Capability struct {
	CanEditDraft bool
	CanResolve   bool
}

// Capabilities maps a ticket status to the mutations an agent may
// perform on it. Draft edits are allowed while the backend is still
// processing (the edit lands on the draft fields, not the status);
// resolving requires a completed analysis.
func Capabilities(status Status) Capability {
	switch status {
	case StatusProcessing:
		return Capability{CanEditDraft: true}
	case StatusReady:
		return Capability{CanEditDraft: true, CanResolve: true}
	default:
		return Capability{}
	}
}

// PollingEligible reports whether a ticket in the given status can
// still be mutated by the backend, i.e. whether an automatic re-fetch
// is worth scheduling. Every other status disarms the poll timer.
func PollingEligible(status Status) bool {
	return status == StatusPending || status == StatusProcessing
}

// ValidTransition reports whether a ticket may legally move from one
// status to another, whoever causes it. failed → processing covers the
// backend's retry path: processing_attempts is monotonic, so a failed
// ticket can re-enter the pipeline.
func ValidTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusReady || to == StatusFailed
	case StatusReady:
		return to == StatusResolved
	case StatusFailed:
		return to == StatusProcessing
	default:
		return false
	}
}

// CheckInvariants verifies the cross-field consistency the backend
// promises for a ticket snapshot. A violation means the snapshot
// cannot be trusted for state-dependent actions.
func (t *Ticket) CheckInvariants() error {
	switch t.Status {
	case StatusReady:
		if t.AIDraftResponse == nil {
			return ErrReadyWithoutDraft
		}
	case StatusResolved:
		if t.FinalResponse == nil || t.ResolvedBy == nil || t.ResolvedAt == nil {
			return ErrResolvedIncomplete
		}
	case StatusFailed:
		if t.ErrorMessage == nil || t.ProcessingAttempts < 1 {
			return ErrFailedWithoutError
		}
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return ErrTimestampsInverted
	}
	return nil
}
