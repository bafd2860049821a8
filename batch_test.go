package printone

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// batchServer keeps a single batch and counts the orders added to it.
type batchServer struct {
	t *testing.T

	mu      sync.Mutex
	orders  int
	ready   any
	created map[string]any
}

func (s *batchServer) batchJSON() map[string]any {
	status := BatchStatusCreated
	if s.orders > 0 {
		status = BatchStatusNeedsApproval
	}
	return map[string]any{
		"id":             "batch-1",
		"companyId":      "company-1",
		"name":           "Spring campaign",
		"finish":         FinishMatte,
		"templateId":     "template-1",
		"isBillable":     true,
		"estimatedPrice": 1.23 * float64(s.orders),
		"sendDate":       nil,
		"status":         status,
		"orders": map[string]any{
			"processing": s.orders,
			"success":    0,
			"failed":     0,
			"cancelled":  0,
		},
		"createdAt": "2024-01-01T00:00:00.000Z",
		"updatedAt": "2024-01-01T00:00:00.000Z",
	}
}

func (s *batchServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/batches", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.created = decodeBody(s.t, r)
		writeJSON(s.t, w, http.StatusCreated, s.batchJSON())
	})
	mux.HandleFunc("GET /v2/batches/batch-1", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(s.t, w, http.StatusOK, s.batchJSON())
	})
	mux.HandleFunc("PATCH /v2/batches/batch-1", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.ready = decodeBody(s.t, r)["ready"]
		writeJSON(s.t, w, http.StatusOK, s.batchJSON())
	})
	mux.HandleFunc("POST /v2/batches/batch-1/orders", func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(s.t, r)
		recipient, _ := body["recipient"].(map[string]any)

		s.mu.Lock()
		s.orders++
		id := fmt.Sprintf("order-%d", s.orders)
		s.mu.Unlock()

		order := orderJSON(id, OrderStatusCreated, "")
		order["recipient"] = recipient
		writeJSON(s.t, w, http.StatusCreated, order)
	})
	return mux
}

func createTestBatch(t *testing.T, client *Client) *Batch {
	t.Helper()
	batch, err := client.CreateBatch(context.Background(), CreateBatchRequest{
		Name:       "Spring campaign",
		TemplateID: "template-1",
		Finish:     FinishMatte,
	})
	require.NoError(t, err)
	return batch
}

func TestBatch_CreateOrders(t *testing.T) {
	server := &batchServer{t: t}
	client, _ := newTestClient(t, server.handler())
	ctx := context.Background()

	batch := createTestBatch(t, client)
	assert.Equal(t, BatchStatusCreated, batch.Status())
	assert.Nil(t, batch.SendDate())
	_, hasReady := server.created["ready"]
	assert.False(t, hasReady, "ready is left out when not set")

	reqs := make([]CreateBatchOrderRequest, 300)
	for i := range reqs {
		reqs[i] = CreateBatchOrderRequest{
			Recipient: Address{
				Name:       fmt.Sprintf("Recipient %d", i),
				Address:    "Keizersgracht 123",
				PostalCode: "1015 CJ",
				City:       "Amsterdam",
				Country:    "NL",
			},
		}
	}

	orders, err := batch.CreateOrders(ctx, reqs, 16)
	require.NoError(t, err)
	require.Len(t, orders, 300)
	for i, order := range orders {
		assert.Equal(t, fmt.Sprintf("Recipient %d", i), order.Recipient().Name)
		assert.Equal(t, "batch-1", order.BatchID())
	}

	require.NoError(t, batch.Refresh(ctx))
	assert.Equal(t, BatchStatusNeedsApproval, batch.Status())
	counts := batch.OrderCounts()
	assert.Equal(t, 300, counts.Processing+counts.Success+counts.Failed)
	assert.Equal(t, 300, counts.Total())
}

func TestBatch_CreateOrders_Validation(t *testing.T) {
	server := &batchServer{t: t}
	client, _ := newTestClient(t, server.handler())
	batch := createTestBatch(t, client)

	_, err := batch.CreateOrders(context.Background(), []CreateBatchOrderRequest{{}}, 4)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, server.orders, "nothing is sent when a request is invalid")
}

func TestBatch_Update(t *testing.T) {
	readyAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		update BatchUpdate
		want   any
	}{
		{name: "ready now", update: BatchUpdate{Ready: true}, want: true},
		{name: "scheduled", update: BatchUpdate{ReadyAt: readyAt}, want: "2024-03-01T09:00:00.000Z"},
		{name: "not ready", update: BatchUpdate{}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := &batchServer{t: t}
			client, _ := newTestClient(t, server.handler())
			batch := createTestBatch(t, client)

			require.NoError(t, batch.Update(context.Background(), tt.update))
			assert.Equal(t, tt.want, server.ready)
		})
	}
}

func TestClient_CreateBatch_Validation(t *testing.T) {
	server := &batchServer{t: t}
	client, _ := newTestClient(t, server.handler())

	_, err := client.CreateBatch(context.Background(), CreateBatchRequest{
		Name:       "No finish",
		TemplateID: "template-1",
	})
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []FieldError{{Field: "finish", Rule: "required"}}, validationErr.Fields)
}
