package printone

import (
	"context"
	"fmt"
	"slices"
	"time"
)

type templatePage struct {
	OrderingKey int    `json:"orderingKey"`
	Content     string `json:"content"`
}

type templateData struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Format         Format         `json:"format"`
	Labels         []string       `json:"labels"`
	MergeVariables []string       `json:"mergeVariables"`
	Thumbnail      string         `json:"thumbnail"`
	APIVersion     int            `json:"apiVersion"`
	Version        int            `json:"version"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	Pages          []templatePage `json:"pages,omitempty"`
}

// Template is a print design. Listings return templates without their
// pages; Load fetches the full representation.
type Template struct {
	s    *shared
	data templateData
}

// FullTemplate is a Template whose pages are known.
type FullTemplate struct {
	*Template
}

func newTemplate(s *shared, data templateData) *Template {
	return &Template{s: s, data: data}
}

func (t *Template) ID() string               { return t.data.ID }
func (t *Template) Name() string             { return t.data.Name }
func (t *Template) Format() Format           { return t.data.Format }
func (t *Template) Labels() []string         { return slices.Clone(t.data.Labels) }
func (t *Template) MergeVariables() []string { return slices.Clone(t.data.MergeVariables) }
func (t *Template) Thumbnail() string        { return t.data.Thumbnail }
func (t *Template) APIVersion() int          { return t.data.APIVersion }
func (t *Template) Version() int             { return t.data.Version }
func (t *Template) UpdatedAt() time.Time     { return t.data.UpdatedAt }

// Loaded reports whether the pages are part of this value.
func (t *Template) Loaded() bool {
	return t.data.Pages != nil
}

// Full returns the template as a FullTemplate, or ErrTemplateNotLoaded.
func (t *Template) Full() (*FullTemplate, error) {
	if !t.Loaded() {
		return nil, ErrTemplateNotLoaded
	}
	return &FullTemplate{Template: t}, nil
}

// Pages returns the page contents in order, or ErrTemplateNotLoaded.
func (t *Template) Pages() ([]string, error) {
	full, err := t.Full()
	if err != nil {
		return nil, err
	}
	return full.Pages(), nil
}

// Pages returns the page contents in order.
func (t *FullTemplate) Pages() []string {
	pages := slices.Clone(t.data.Pages)
	slices.SortStableFunc(pages, func(a, b templatePage) int {
		return a.OrderingKey - b.OrderingKey
	})
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.Content
	}
	return out
}

// Load fetches the full template. The receiver is left unchanged.
func (t *Template) Load(ctx context.Context) (*FullTemplate, error) {
	data, err := getJSON[templateData](ctx, t.s, "templates/"+t.data.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}
	if data.Pages == nil {
		data.Pages = []templatePage{}
	}
	return &FullTemplate{Template: newTemplate(t.s, data)}, nil
}

// Preview renders the template with mergeVariables.
func (t *Template) Preview(ctx context.Context, mergeVariables map[string]any) ([]*Preview, error) {
	if mergeVariables == nil {
		mergeVariables = map[string]any{}
	}
	data, err := postJSON[[]previewData](ctx, t.s, "templates/preview/"+t.data.ID, mergeVariables, nil)
	if err != nil {
		return nil, fmt.Errorf("previewing template: %w", err)
	}
	previews := make([]*Preview, len(data))
	for i, d := range data {
		previews[i] = newPreview(t.s, d)
	}
	return previews, nil
}

// Delete removes the template.
func (t *Template) Delete(ctx context.Context) error {
	if err := t.s.transport.Delete(ctx, "templates/"+t.data.ID, nil, nil); err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	return nil
}

// CreateTemplateRequest describes a new template.
type CreateTemplateRequest struct {
	Name   string   `json:"name" validate:"required"`
	Format Format   `json:"format" validate:"required"`
	Labels []string `json:"labels,omitempty"`
	Pages  []string `json:"pages" validate:"required,min=1"`
}

// CreateTemplate creates a template.
func (c *Client) CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*FullTemplate, error) {
	if err := validateRequest("create template", req); err != nil {
		return nil, err
	}

	data, err := postJSON[templateData](ctx, c.s, "templates", req, nil)
	if err != nil {
		return nil, fmt.Errorf("creating template: %w", err)
	}
	if data.Pages == nil {
		data.Pages = []templatePage{}
	}
	return &FullTemplate{Template: newTemplate(c.s, data)}, nil
}

// Template retrieves a template by id, including its pages.
func (c *Client) Template(ctx context.Context, id string) (*Template, error) {
	data, err := getJSON[templateData](ctx, c.s, "templates/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("getting template: %w", err)
	}
	return newTemplate(c.s, data), nil
}

// Templates lists templates. Listed templates are not loaded.
func (c *Client) Templates(ctx context.Context, q TemplateQuery) (*PaginatedResponse[*Template], error) {
	page, err := fetchPage(ctx, c.s, "templates", &RequestOptions{Query: q.values()}, func(d templateData) *Template {
		return newTemplate(c.s, d)
	})
	if err != nil {
		return nil, fmt.Errorf("getting templates: %w", err)
	}
	return page, nil
}
