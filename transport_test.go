package printone

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestJoinBaseURL(t *testing.T) {
	tests := []struct {
		root    string
		version string
		want    string
	}{
		{root: "https://api.print.one/", version: "v2", want: "https://api.print.one/v2/"},
		{root: "https://api.print.one", version: "v2", want: "https://api.print.one/v2/"},
		{root: "https://api.print.one/", version: "/v1/", want: "https://api.print.one/v1/"},
		{root: "http://localhost:3000", version: "", want: "http://localhost:3000/"},
	}

	for _, tt := range tests {
		t.Run(tt.root+"+"+tt.version, func(t *testing.T) {
			assert.Equal(t, tt.want, joinBaseURL(tt.root, tt.version))
		})
	}
}

func TestHTTPTransport_resolve(t *testing.T) {
	transport := NewHTTPTransport("key", Config{BaseURL: "https://api.print.one/", Version: "v2"}, nil)

	tests := []struct {
		name  string
		path  string
		query url.Values
		want  string
	}{
		{
			name: "relative path",
			path: "orders/123",
			want: "https://api.print.one/v2/orders/123",
		},
		{
			name: "leading slash",
			path: "/orders",
			want: "https://api.print.one/v2/orders",
		},
		{
			name: "absolute url",
			path: "https://api.print.one/v2/orders?page=2",
			want: "https://api.print.one/v2/orders?page=2",
		},
		{
			name:  "with query",
			path:  "orders",
			query: url.Values{"limit": {"10"}},
			want:  "https://api.print.one/v2/orders?limit=10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transport.resolve(tt.path, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "orders", transport.resource("https://api.print.one/v2/orders/123/cancel"))
	assert.Equal(t, "templates", transport.resource("https://api.print.one/v2/templates?page=2"))
}

func TestHTTPTransport_errors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantMessages []string
		wantIs       error
	}{
		{
			name:         "single message",
			status:       http.StatusNotFound,
			body:         `{"statusCode":404,"message":"Order not found"}`,
			wantMessages: []string{"Order not found"},
			wantIs:       ErrNotFound,
		},
		{
			name:         "message list",
			status:       http.StatusBadRequest,
			body:         `{"statusCode":400,"message":["recipient.name should not be empty","templateId must be a UUID"]}`,
			wantMessages: []string{"recipient.name should not be empty", "templateId must be a UUID"},
			wantIs:       ErrBadRequest,
		},
		{
			name:         "plain text",
			status:       http.StatusBadGateway,
			body:         "upstream unavailable\n",
			wantMessages: []string{"upstream unavailable"},
			wantIs:       ErrServerError,
		},
		{
			name:         "empty body",
			status:       http.StatusForbidden,
			body:         "",
			wantMessages: nil,
			wantIs:       ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))

			err := client.Transport().Get(context.Background(), "orders/123", nil, &struct{}{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantIs)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessages, apiErr.Messages)
			assert.Equal(t, http.MethodGet, apiErr.Method)
			assert.Equal(t, "/v2/orders/123", apiErr.Path)
			assert.Contains(t, apiErr.Error(), "GET /v2/orders/123 failed with status")
		})
	}
}

func TestHTTPTransport_bodies(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/json":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			body := decodeBody(t, r)
			assert.Equal(t, "value", body["key"])
			w.WriteHeader(http.StatusCreated)
		case "/v2/raw":
			assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))
			data, _ := io.ReadAll(r.Body)
			assert.Equal(t, "raw body", string(data))
			writeJSON(t, w, http.StatusOK, map[string]any{"ok": true})
		}
	}))

	var out struct {
		OK bool `json:"ok"`
	}
	err := client.Transport().Post(context.Background(), "json", map[string]string{"key": "value"}, nil, &out)
	require.NoError(t, err)
	assert.False(t, out.OK, "empty response leaves out untouched")

	err = client.Transport().Post(context.Background(), "raw", strings.NewReader("raw body"), &RequestOptions{ContentType: "text/plain"}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
}

func TestHTTPTransport_compressed(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Encoding"), "gzip")
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, err := io.WriteString(gz, `{"id":"company-1","companyName":"Acme"}`)
		assert.NoError(t, err)
		assert.NoError(t, gz.Close())
	}))

	company, err := client.Self(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Acme", company.CompanyName())
}

func TestHTTPTransport_metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/orders/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{})
	}), WithMetrics(reg))

	ctx := context.Background()
	require.NoError(t, client.Transport().Get(ctx, "orders/1", nil, &struct{}{}))
	require.NoError(t, client.Transport().Get(ctx, "orders/2", nil, &struct{}{}))
	require.Error(t, client.Transport().Get(ctx, "orders/missing", nil, &struct{}{}))

	m := client.Transport().(*HTTPTransport).metrics
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "orders", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "orders", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration, "printone_client_request_duration_seconds"))

	// A second client on the same registry shares the collectors.
	other := New(testAPIKey, WithMetrics(reg))
	assert.Same(t, m.requestsTotal, other.Transport().(*HTTPTransport).metrics.requestsTotal)
}

func TestHTTPTransport_tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/batches/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{})
	}), WithTracerProvider(tp))

	ctx := context.Background()
	require.NoError(t, client.Transport().Get(ctx, "batches/1", nil, &struct{}{}))
	require.Error(t, client.Transport().Get(ctx, "batches/missing", nil, &struct{}{}))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "printone GET batches", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestHTTPTransport_rateLimit(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{})
	}), WithRateLimit(1, 1))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, client.Transport().Get(ctx, "orders", nil, &struct{}{}))

	// The burst is used up, so the next request has to wait and the
	// cancelled context ends that wait.
	cancel()
	err := client.Transport().Get(ctx, "orders", nil, &struct{}{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
