package printone

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

// newTestClient starts a server for mux and returns a client pointed at it
// with a fast polling schedule.
func newTestClient(t *testing.T, mux http.Handler, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	opts = append([]Option{
		WithBaseURL(server.URL),
		WithPollInterval(time.Millisecond),
		WithPollAttempts(5),
	}, opts...)
	return New(testAPIKey, opts...), server
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func testAddress(name string) map[string]any {
	return map[string]any{
		"name":       name,
		"address":    "Keizersgracht 123",
		"postalCode": "1015 CJ",
		"city":       "Amsterdam",
		"country":    "NL",
	}
}

func orderJSON(id string, status OrderStatus, batchID string) map[string]any {
	o := map[string]any{
		"id":                  id,
		"companyId":           "company-1",
		"templateId":          "template-1",
		"finish":              FinishGlossy,
		"format":              FormatPostcardA5,
		"mergeVariables":      map[string]any{},
		"recipient":           testAddress("Recipient"),
		"sender":              testAddress("Sender"),
		"definitiveCountryId": "NL",
		"deliverySpeed":       "FAST",
		"isBillable":          true,
		"status":              status,
		"friendlyStatus":      FriendlyStatusProcessing,
		"errors":              []string{},
		"sendDate":            "2024-01-01T00:00:00.000Z",
		"createdAt":           "2024-01-01T00:00:00.000Z",
		"updatedAt":           "2024-01-01T00:00:00.000Z",
		"anonymizedAt":        nil,
		"csvOrderId":          nil,
	}
	if batchID != "" {
		o["batchId"] = batchID
	}
	if status == OrderStatusCancelled {
		o["friendlyStatus"] = FriendlyStatusCancelled
	}
	return o
}

func pageJSON(data any, page, pages int, prev, next *string) map[string]any {
	return map[string]any{
		"data":        data,
		"page":        page,
		"pages":       pages,
		"pageSize":    10,
		"total":       pages * 10,
		"previousUrl": prev,
		"nextUrl":     next,
		"currentUrl":  "",
	}
}
