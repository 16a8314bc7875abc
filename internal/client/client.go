package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/complaint-triage/internal/domain"
	"github.com/spec-kit/complaint-triage/pkg/apierror"
)

const defaultTimeout = 10 * time.Second

// Client is the typed wrapper around the ticket store's REST API. It
// translates local intents into requests and normalizes every failure
// into the apierror taxonomy; callers never see a raw transport error.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given base URL. A non-positive timeout
// falls back to the contract's fixed 10 seconds.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Create submits a new complaint. The response is an acknowledgment
// (id + initial status), not the materialized ticket: analysis runs
// asynchronously on the backend. Validation failures return before any
// network call.
func (c *Client) Create(ctx context.Context, in domain.CreateInput) (*CreateTicketResponse, error) {
	if err := domain.ValidateCreate(in); err != nil {
		return nil, apierror.NewValidation(err.Error())
	}
	req := CreateTicketRequest{
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		CustomerEmail: in.CustomerEmail,
	}
	if name := strings.TrimSpace(in.CustomerName); name != "" {
		req.CustomerName = &name
	}
	var resp CreateTicketResponse
	if err := c.do(ctx, http.MethodPost, "/api/tickets/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// List fetches tickets matching the query. Filtering is server-side.
func (c *Client) List(ctx context.Context, query ListQuery) (*ListResponse, error) {
	params := url.Values{}
	if query.Status != "" {
		params.Set("status", string(query.Status))
	}
	if query.Urgency != "" {
		params.Set("urgency", string(query.Urgency))
	}
	if query.Category != "" {
		params.Set("category", string(query.Category))
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		params.Set("offset", strconv.Itoa(query.Offset))
	}
	path := "/api/tickets/"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var resp ListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get fetches a single ticket by id.
func (c *Client) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := c.do(ctx, http.MethodGet, "/api/tickets/"+id, nil, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Update edits the draft response and/or agent notes. The status is
// untouched; the returned canonical copy supersedes any local edits.
func (c *Client) Update(ctx context.Context, id string, req UpdateTicketRequest) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := c.do(ctx, http.MethodPatch, "/api/tickets/"+id, req, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Resolve finalizes a ready ticket. Validation failures return before
// any network call; a backend rejection (ticket no longer ready)
// surfaces as a precondition error, signalling a re-fetch.
func (c *Client) Resolve(ctx context.Context, id string, in domain.ResolveInput) (*domain.Ticket, error) {
	if err := domain.ValidateResolve(in); err != nil {
		return nil, apierror.NewValidation(err.Error())
	}
	req := ResolveTicketRequest{
		FinalResponse: in.FinalResponse,
		ResolvedBy:    strings.TrimSpace(in.ResolvedBy),
	}
	if notes := strings.TrimSpace(in.AgentNotes); notes != "" {
		req.AgentNotes = &notes
	}
	var ticket domain.Ticket
	if err := c.do(ctx, http.MethodPost, "/api/tickets/"+id+"/resolve", req, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Delete removes a ticket. Administrative side channel; the dashboard
// itself never calls it.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tickets/"+id, nil, nil)
}

// Stats fetches the aggregate summary. Independent of list filters.
func (c *Client) Stats(ctx context.Context) (*StatsResponse, error) {
	var resp StatsResponse
	if err := c.do(ctx, http.MethodGet, "/api/tickets/stats/summary", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do executes one request against the ticket store and decodes the
// response into out (when non-nil). Failure normalization: no response
// at all is a transport error, an error response with a detail body
// surfaces that detail verbatim, everything else is unexpected.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apierror.NewUnexpected(fmt.Errorf("marshal request body: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apierror.NewUnexpected(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return apierror.NewTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierror.NewTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return apierror.NewUnexpected(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// decodeError converts an error response into the taxonomy. 4xx means
// the backend rejected a precondition; 5xx is unexpected. In both
// cases the backend's detail string is the user-facing message when
// present.
func decodeError(status int, body []byte) error {
	var envelope errorEnvelope
	_ = json.Unmarshal(body, &envelope)

	if status >= 400 && status < 500 {
		return apierror.NewRejected(envelope.Detail, status)
	}
	if envelope.Detail != "" {
		return &apierror.APIError{
			Kind:       apierror.KindUnexpected,
			Message:    envelope.Detail,
			HTTPStatus: status,
		}
	}
	return apierror.NewUnexpected(fmt.Errorf("server returned status %d", status))
}
