package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-triage/internal/domain"
	"github.com/spec-kit/complaint-triage/pkg/apierror"
)

func TestCreate(t *testing.T) {
	var gotPath string
	var gotBody CreateTicketRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(CreateTicketResponse{
			ID:      "t-1",
			Status:  domain.StatusPending,
			Message: "Complaint received.",
		})
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	resp, err := c.Create(context.Background(), domain.CreateInput{
		Title:         "Refund not received",
		Description:   "I was charged twice for order #123 and need a refund.",
		CustomerEmail: "a@b.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/tickets/", gotPath)
	assert.Equal(t, "Refund not received", gotBody.Title)
	assert.Equal(t, domain.StatusPending, resp.Status)
	assert.Equal(t, "t-1", resp.ID)
}

func TestCreateValidationSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	_, err := c.Create(context.Background(), domain.CreateInput{
		Title:         "Hi",
		Description:   "too short",
		CustomerEmail: "a@b.com",
	})
	require.Error(t, err)
	assert.True(t, apierror.IsValidation(err))
	assert.Equal(t, int32(0), calls.Load(), "validation failures must not reach the network")
}

func TestResolveValidationSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	_, err := c.Resolve(context.Background(), "t-1", domain.ResolveInput{
		FinalResponse: "short", // under the 10 character minimum
		ResolvedBy:    "agent1",
	})
	require.Error(t, err)
	assert.True(t, apierror.IsValidation(err))
	assert.Equal(t, int32(0), calls.Load())
}

func TestResolvePrecondition(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tickets/t-1/resolve", r.URL.Path)
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"detail": "Ticket is not ready for resolution (status: processing)",
		})
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	_, err := c.Resolve(context.Background(), "t-1", domain.ResolveInput{
		FinalResponse: "Refund issued.",
		ResolvedBy:    "agent1",
	})
	require.Error(t, err)
	assert.True(t, apierror.IsPrecondition(err))
	assert.Equal(t, "Ticket is not ready for resolution (status: processing)", apierror.Message(err))
}

func TestGetDecodesTicket(t *testing.T) {
	draft := "We apologize..."
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tickets/t-9", r.URL.Path)
		_ = json.NewEncoder(w).Encode(domain.Ticket{
			ID:              "t-9",
			Title:           "Broken export",
			Status:          domain.StatusReady,
			AIDraftResponse: &draft,
		})
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	ticket, err := c.Get(context.Background(), "t-9")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, ticket.Status)
	require.NotNil(t, ticket.AIDraftResponse)
	assert.Equal(t, draft, *ticket.AIDraftResponse)
}

func TestListQueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "failed", r.URL.Query().Get("status"))
		assert.Equal(t, "high", r.URL.Query().Get("urgency"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(ListResponse{Total: 0, Items: []domain.Ticket{}})
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	resp, err := c.List(context.Background(), ListQuery{
		Status:  domain.StatusFailed,
		Urgency: domain.UrgencyHigh,
		Limit:   25,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Nothing listening anymore.

	c := New(server.URL, time.Second)
	_, err := c.Get(context.Background(), "t-1")
	require.Error(t, err)
	assert.True(t, apierror.IsTransport(err))
	assert.Equal(t, "No response from server. Please check your connection.", apierror.Message(err))
}

func TestTimeoutIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := New(server.URL, 20*time.Millisecond)
	_, err := c.Get(context.Background(), "t-1")
	require.Error(t, err)
	assert.True(t, apierror.IsTransport(err))
}

func TestServerErrorWithoutDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	_, err := c.Get(context.Background(), "t-1")
	require.Error(t, err)
	assert.Equal(t, "An unexpected error occurred", apierror.Message(err))
}

func TestRejectedWithoutDetailFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	_, err := c.Get(context.Background(), "t-1")
	require.Error(t, err)
	assert.Equal(t, "An error occurred", apierror.Message(err))
}

func TestGetIdempotent(t *testing.T) {
	draft := "We apologize..."
	fixed := domain.Ticket{
		ID:              "t-2",
		Title:           "Stable ticket",
		Status:          domain.StatusReady,
		AIDraftResponse: &draft,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(fixed)
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	first, err := c.Get(context.Background(), "t-2")
	require.NoError(t, err)
	second, err := c.Get(context.Background(), "t-2")
	require.NoError(t, err)
	assert.Equal(t, first, second, "unchanged backend ticket must read back identically")
}
