package apierror

import (
	"errors"
	"fmt"
)

// Kind classifies client-observed failures.
type Kind string

const (
	// KindValidation is a client-detected input error; the request
	// never reached the network.
	KindValidation Kind = "VALIDATION"
	// KindRejected is a backend-enforced precondition failure: the
	// request arrived but violated a state invariant (e.g. resolving
	// a ticket that is no longer ready). The right reaction is a
	// re-fetch, not a blind retry.
	KindRejected Kind = "REJECTED"
	// KindTransport means no response was received at all.
	KindTransport Kind = "TRANSPORT"
	// KindUnexpected is everything else.
	KindUnexpected Kind = "UNEXPECTED"
)

// User-facing fallback messages, matching the dashboard's wording.
const (
	msgGenericDetail = "An error occurred"
	msgNoResponse    = "No response from server. Please check your connection."
	msgUnexpected    = "An unexpected error occurred"
)

// APIError standardizes failures surfaced by the ticket client.
type APIError struct {
	Kind       Kind
	Message    string // User-displayable; backend detail verbatim when present.
	HTTPStatus int    // Zero when no response was received.
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewValidation constructs a client-side validation error.
func NewValidation(message string) error {
	return &APIError{Kind: KindValidation, Message: message}
}

// NewRejected constructs a server-rejected precondition error. The
// detail string is surfaced verbatim; an empty detail falls back to a
// generic message.
func NewRejected(detail string, status int) error {
	if detail == "" {
		detail = msgGenericDetail
	}
	return &APIError{Kind: KindRejected, Message: detail, HTTPStatus: status}
}

// NewTransport constructs a no-response error.
func NewTransport(err error) error {
	return &APIError{Kind: KindTransport, Message: msgNoResponse, Err: err}
}

// NewUnexpected constructs a catch-all error.
func NewUnexpected(err error) error {
	return &APIError{Kind: KindUnexpected, Message: msgUnexpected, Err: err}
}

// Message returns the single user-displayable string for any error.
// Raw transport errors never leak into rendering code.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func isKind(err error, kind Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// IsValidation reports whether err is a client-side validation error.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsPrecondition reports whether err is a backend-rejected
// precondition, signalling the caller to re-fetch before retrying.
func IsPrecondition(err error) bool { return isKind(err, KindRejected) }

// IsTransport reports whether err means no response was received.
func IsTransport(err error) bool { return isKind(err, KindTransport) }
