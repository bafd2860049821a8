package printone

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// previewServer renders template-1 into one preview that becomes available
// after readyAfter requests for its details.
func previewServer(t *testing.T, readyAfter int32, detailCalls *atomic.Int32) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/templates/preview/template-1", func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "Jane", body["firstName"])
		writeJSON(t, w, http.StatusCreated, []map[string]any{{
			"detailsUrl":  "previews/preview-1",
			"url":         "storage/template/preview/preview-1",
			"orderingKey": 0,
		}})
	})
	mux.HandleFunc("GET /v2/previews/preview-1", func(w http.ResponseWriter, r *http.Request) {
		if detailCalls.Add(1) <= readyAfter {
			writeJSON(t, w, http.StatusNotFound, map[string]any{"statusCode": 404, "message": "Not Found"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"id":         "preview-1",
			"imageUrl":   "storage/template/preview/preview-1",
			"errors":     []string{},
			"templateId": "template-1",
		})
	})
	mux.HandleFunc("GET /v2/storage/template/preview/preview-1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("\x89PNG"))
	})
	return mux
}

func templatePreviews(t *testing.T, client *Client) []*Preview {
	t.Helper()
	tmpl := newTemplate(client.s, templateData{ID: "template-1"})
	previews, err := tmpl.Preview(context.Background(), map[string]any{"firstName": "Jane"})
	require.NoError(t, err)
	require.Len(t, previews, 1)
	return previews
}

func TestPreview_Details(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, previewServer(t, 2, &calls))
	preview := templatePreviews(t, client)[0]

	details, err := preview.Details(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "preview-1", details.ID())
	assert.Equal(t, "template-1", details.TemplateID())
	assert.Empty(t, details.Errors())
	assert.Equal(t, int32(3), calls.Load())

	image, err := details.Download(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), image)
}

func TestPreview_Download(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, previewServer(t, 0, &calls))
	preview := templatePreviews(t, client)[0]

	image, err := preview.Download(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), image)
}

func TestPreview_Details_Timeout(t *testing.T) {
	tests := []struct {
		name         string
		opts         []PollOption
		wantCalls    int32
		wantAttempts int
	}{
		{
			name:         "client default",
			opts:         nil,
			wantCalls:    6,
			wantAttempts: 6,
		},
		{
			name:         "per call attempts",
			opts:         []PollOption{MaxPollAttempts(2)},
			wantCalls:    3,
			wantAttempts: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			client, _ := newTestClient(t, previewServer(t, 100, &calls))
			preview := templatePreviews(t, client)[0]

			_, err := preview.Details(context.Background(), tt.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTimeout)
			assert.ErrorIs(t, err, ErrNotFound, "the last failure is kept")

			var timeoutErr *TimeoutError
			require.True(t, errors.As(err, &timeoutErr))
			assert.Equal(t, tt.wantAttempts, timeoutErr.Attempts)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestPreview_Details_WithoutPolling(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, previewServer(t, 100, &calls))
	preview := templatePreviews(t, client)[0]

	_, err := preview.Details(context.Background(), WithoutPolling())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Equal(t, int32(1), calls.Load())
}
