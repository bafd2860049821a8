package printone

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orderServer keeps orders in memory. A new order reports order_created for
// the first createdReads reads and order_pdf_queued afterwards.
type orderServer struct {
	t            *testing.T
	createdReads int

	mu        sync.Mutex
	reads     map[string]int
	cancelled map[string]bool
	downloads int
}

func newOrderServer(t *testing.T, createdReads int) *orderServer {
	return &orderServer{t: t, createdReads: createdReads, reads: map[string]int{}, cancelled: map[string]bool{}}
}

func (s *orderServer) status(id string) OrderStatus {
	switch {
	case s.cancelled[id]:
		return OrderStatusCancelled
	case s.reads[id] < s.createdReads:
		return OrderStatusCreated
	default:
		return OrderStatusPDFQueued
	}
}

func (s *orderServer) readCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads[id]
}

func (s *orderServer) downloadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.downloads
}

func (s *orderServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/orders", func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(s.t, r)
		assert.Equal(s.t, "template-1", body["templateId"])
		assert.Equal(s.t, "2024-06-01T10:00:00.000Z", body["sendDate"])
		writeJSON(s.t, w, http.StatusCreated, orderJSON("order-1", OrderStatusCreated, ""))
	})
	mux.HandleFunc("GET /v2/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		id := r.PathValue("id")
		s.reads[id]++
		writeJSON(s.t, w, http.StatusOK, orderJSON(id, s.status(id), ""))
	})
	mux.HandleFunc("POST /v2/orders/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		id := r.PathValue("id")
		s.cancelled[id] = true
		writeJSON(s.t, w, http.StatusCreated, orderJSON(id, s.status(id), ""))
	})
	mux.HandleFunc("GET /v2/storage/order/preview/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.downloads++
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.7"))
	})
	return mux
}

func createTestOrder(t *testing.T, client *Client) *Order {
	t.Helper()
	sender := Address{Name: "Sender", Address: "Damrak 1", PostalCode: "1012 LG", City: "Amsterdam", Country: "NL"}
	order, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		Recipient:  Address{Name: "Recipient", Address: "Keizersgracht 123", PostalCode: "1015 CJ", City: "Amsterdam", Country: "NL"},
		Sender:     &sender,
		TemplateID: "template-1",
		SendDate:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600)),
	})
	require.NoError(t, err)
	return order
}

func TestOrder_CreateAndCancel(t *testing.T) {
	server := newOrderServer(t, 2)
	client, _ := newTestClient(t, server.handler())

	order := createTestOrder(t, client)
	assert.Equal(t, OrderStatusCreated, order.Status())
	assert.Equal(t, "Sender", order.Sender().Name)
	assert.Empty(t, order.BatchID())
	assert.Empty(t, order.CsvOrderID())

	require.NoError(t, order.Cancel(context.Background()))
	assert.Equal(t, OrderStatusCancelled, order.Status())
	assert.Equal(t, FriendlyStatusCancelled, order.FriendlyStatus())
	assert.Equal(t, 2, server.readCount("order-1"), "waited until the order left order_created")
}

func TestOrder_Download(t *testing.T) {
	tests := []struct {
		name      string
		reads     int
		opts      []PollOption
		wantReads int
	}{
		{
			name:      "waits for the order",
			reads:     3,
			wantReads: 3,
		},
		{
			name:      "downloads anyway when the wait runs out",
			reads:     100,
			wantReads: 5,
		},
		{
			name:      "without polling",
			reads:     100,
			opts:      []PollOption{WithoutPolling()},
			wantReads: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newOrderServer(t, tt.reads)
			client, _ := newTestClient(t, server.handler())
			order := createTestOrder(t, client)

			data, err := order.Download(context.Background(), tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, []byte("%PDF-1.7"), data)
			assert.Equal(t, tt.wantReads, server.readCount("order-1"))
			assert.Equal(t, 1, server.downloadCount())
		})
	}
}

func TestOrder_BatchRouting(t *testing.T) {
	var paths []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		writeJSON(t, w, http.StatusOK, orderJSON("order-1", OrderStatusCancelled, "batch-1"))
	}))

	order := newOrder(client.s, orderData{ID: "order-1", BatchID: "batch-1", Status: OrderStatusPDFQueued})
	require.NoError(t, order.Refresh(context.Background()))
	require.NoError(t, order.Cancel(context.Background()))

	assert.Equal(t, []string{
		"GET /v2/batches/batch-1/orders/order-1",
		"POST /v2/batches/batch-1/orders/order-1/cancel",
	}, paths)
}

func TestClient_Orders(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/orders", r.URL.Path)
		assert.Equal(t, "$in:Cancelled", r.URL.Query().Get("filter.friendlyStatus"))
		assert.Equal(t, "createdAt:DESC", r.URL.Query().Get("sortBy"))
		writeJSON(t, w, http.StatusOK, pageJSON([]any{orderJSON("order-1", OrderStatusCancelled, "")}, 1, 1, nil, nil))
	}))

	page, err := client.Orders(context.Background(), OrderQuery{
		ListOptions:    ListOptions{SortBy: []Sort{{Field: "createdAt", Order: SortDesc}}},
		FriendlyStatus: []FriendlyStatus{FriendlyStatusCancelled},
	})
	require.NoError(t, err)
	require.Len(t, page.Data(), 1)
	assert.Equal(t, FriendlyStatusCancelled, page.Data()[0].FriendlyStatus())
}

func TestClient_CreateOrder_Validation(t *testing.T) {
	client := New(testAPIKey, WithTransport(func(string, Config, *slog.Logger) Transport {
		return UnimplementedTransport{}
	}))

	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		Recipient:  Address{Name: "Recipient"},
		TemplateID: "template-1",
		Finish:     "SATIN",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	fields := make([]string, 0, len(validationErr.Fields))
	for _, f := range validationErr.Fields {
		fields = append(fields, f.Field)
	}
	assert.Contains(t, fields, "recipient.address")
	assert.Contains(t, fields, "recipient.city")
	assert.Contains(t, fields, "finish")
	assert.NotContains(t, fields, "recipient.addressLine2")
}
