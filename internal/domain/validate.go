package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Snapshot invariant violations (see Ticket.CheckInvariants).
var (
	ErrReadyWithoutDraft  = errors.New("ready ticket has no ai_draft_response")
	ErrResolvedIncomplete = errors.New("resolved ticket is missing resolution fields")
	ErrFailedWithoutError = errors.New("failed ticket has no error_message")
	ErrTimestampsInverted = errors.New("updated_at precedes created_at")
)

// Intake field limits enforced before any request is sent.
const (
	TitleMinLen         = 5
	TitleMaxLen         = 255
	DescriptionMinLen   = 10
	CustomerNameMaxLen  = 100
	FinalResponseMinLen = 10
)

// CreateInput carries the intake fields for a new complaint.
type CreateInput struct {
	Title         string
	Description   string
	CustomerEmail string
	CustomerName  string
}

// ResolveInput carries the fields for resolving a ready ticket.
type ResolveInput struct {
	FinalResponse string
	AgentNotes    string
	ResolvedBy    string
}

// ValidateCreate checks intake constraints client-side. A non-nil
// error means the submission must not reach the network. Limits are
// character counts, not bytes, so multibyte input measures the way the
// customer typed it.
func ValidateCreate(in CreateInput) error {
	title := strings.TrimSpace(in.Title)
	if utf8.RuneCountInString(title) < TitleMinLen {
		return fmt.Errorf("title must be at least %d characters", TitleMinLen)
	}
	if utf8.RuneCountInString(title) > TitleMaxLen {
		return fmt.Errorf("title must be at most %d characters", TitleMaxLen)
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Description)) < DescriptionMinLen {
		return fmt.Errorf("description must be at least %d characters", DescriptionMinLen)
	}
	if _, err := mail.ParseAddress(in.CustomerEmail); err != nil {
		return errors.New("customer email is not a valid address")
	}
	if utf8.RuneCountInString(in.CustomerName) > CustomerNameMaxLen {
		return fmt.Errorf("customer name must be at most %d characters", CustomerNameMaxLen)
	}
	return nil
}

// ValidateResolve checks resolution constraints client-side.
func ValidateResolve(in ResolveInput) error {
	if strings.TrimSpace(in.ResolvedBy) == "" {
		return errors.New("please enter your name")
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.FinalResponse)) < FinalResponseMinLen {
		return fmt.Errorf("please provide a final response (at least %d characters)", FinalResponseMinLen)
	}
	return nil
}
