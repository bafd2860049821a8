package printone

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func templateJSON(withPages bool) map[string]any {
	t := map[string]any{
		"id":             "template-1",
		"name":           "Welcome",
		"format":         FormatPostcardSQ15,
		"labels":         []string{"welcome"},
		"mergeVariables": []string{"firstName"},
		"thumbnail":      "https://cdn.example.com/thumb.png",
		"apiVersion":     2,
		"version":        3,
		"updatedAt":      "2024-01-01T00:00:00.000Z",
	}
	if withPages {
		t["pages"] = []map[string]any{
			{"orderingKey": 1, "content": "<p>back {{firstName}}</p>"},
			{"orderingKey": 0, "content": "<p>front</p>"},
		}
	}
	return t
}

func templateServer(t *testing.T) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/templates", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "$in:POSTCARD_SQ15", r.URL.Query().Get("filter.format"))
		writeJSON(t, w, http.StatusOK, pageJSON([]any{templateJSON(false)}, 1, 1, nil, nil))
	})
	mux.HandleFunc("GET /v2/templates/template-1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, templateJSON(true))
	})
	mux.HandleFunc("POST /v2/templates", func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "Welcome", body["name"])
		assert.Equal(t, string(FormatPostcardSQ15), body["format"])
		assert.Len(t, body["pages"], 2)
		writeJSON(t, w, http.StatusCreated, templateJSON(true))
	})
	mux.HandleFunc("DELETE /v2/templates/template-1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func TestTemplate_NotLoaded(t *testing.T) {
	client, _ := newTestClient(t, templateServer(t))
	ctx := context.Background()

	page, err := client.Templates(ctx, TemplateQuery{Format: []Format{FormatPostcardSQ15}})
	require.NoError(t, err)
	require.Len(t, page.Data(), 1)

	tmpl := page.Data()[0]
	assert.Equal(t, "Welcome", tmpl.Name())
	assert.Equal(t, []string{"firstName"}, tmpl.MergeVariables())
	assert.False(t, tmpl.Loaded())

	_, err = tmpl.Pages()
	assert.ErrorIs(t, err, ErrTemplateNotLoaded)
	_, err = tmpl.Full()
	assert.ErrorIs(t, err, ErrTemplateNotLoaded)

	full, err := tmpl.Load(ctx)
	require.NoError(t, err)
	assert.True(t, full.Loaded())
	assert.Equal(t, []string{"<p>front</p>", "<p>back {{firstName}}</p>"}, full.Pages())

	assert.False(t, tmpl.Loaded(), "Load leaves the receiver unchanged")
}

func TestClient_Template(t *testing.T) {
	client, _ := newTestClient(t, templateServer(t))

	tmpl, err := client.Template(context.Background(), "template-1")
	require.NoError(t, err)
	assert.True(t, tmpl.Loaded())

	pages, err := tmpl.Pages()
	require.NoError(t, err)
	assert.Len(t, pages, 2)

	require.NoError(t, tmpl.Delete(context.Background()))
}

func TestClient_CreateTemplate(t *testing.T) {
	client, _ := newTestClient(t, templateServer(t))

	full, err := client.CreateTemplate(context.Background(), CreateTemplateRequest{
		Name:   "Welcome",
		Format: FormatPostcardSQ15,
		Pages:  []string{"<p>front</p>", "<p>back</p>"},
	})
	require.NoError(t, err)
	assert.Equal(t, "template-1", full.ID())
	assert.Equal(t, 3, full.Version())

	_, err = client.CreateTemplate(context.Background(), CreateTemplateRequest{Name: "No pages", Format: FormatPostcardA5})
	assert.ErrorIs(t, err, ErrValidation)
}
