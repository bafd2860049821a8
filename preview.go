package printone

import (
	"context"
	"fmt"
	"slices"
)

type previewData struct {
	DetailsURL  string `json:"detailsUrl"`
	URL         string `json:"url"`
	OrderingKey int    `json:"orderingKey"`
}

// Preview is one rendered page of a template preview. Rendering happens
// asynchronously, so Details and Download wait for it.
type Preview struct {
	s    *shared
	data previewData
}

func newPreview(s *shared, data previewData) *Preview {
	return &Preview{s: s, data: data}
}

func (p *Preview) URL() string        { return p.data.URL }
func (p *Preview) DetailsURL() string { return p.data.DetailsURL }
func (p *Preview) OrderingKey() int   { return p.data.OrderingKey }

// Details fetches the render details, retrying while the server answers 404.
// It returns a *TimeoutError when the preview is still missing after the
// polling attempts.
func (p *Preview) Details(ctx context.Context, opts ...PollOption) (*PreviewDetails, error) {
	data, err := retryOnNotFound(ctx, "preview details", p.s.pollPolicy(opts), func(ctx context.Context) (previewDetailsData, error) {
		return getJSON[previewDetailsData](ctx, p.s, p.data.DetailsURL, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("getting preview details: %w", err)
	}
	return newPreviewDetails(p.s, data), nil
}

// Download fetches the rendered image, retrying while the server answers 404.
func (p *Preview) Download(ctx context.Context, opts ...PollOption) ([]byte, error) {
	data, err := retryOnNotFound(ctx, "preview download", p.s.pollPolicy(opts), func(ctx context.Context) ([]byte, error) {
		return p.s.transport.GetBinary(ctx, p.data.URL, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("downloading preview: %w", err)
	}
	return data, nil
}

type previewDetailsData struct {
	ID         string   `json:"id"`
	ImageURL   string   `json:"imageUrl"`
	Errors     []string `json:"errors"`
	TemplateID string   `json:"templateId"`
}

// PreviewDetails describes a finished preview render.
type PreviewDetails struct {
	s    *shared
	data previewDetailsData
}

func newPreviewDetails(s *shared, data previewDetailsData) *PreviewDetails {
	return &PreviewDetails{s: s, data: data}
}

func (d *PreviewDetails) ID() string         { return d.data.ID }
func (d *PreviewDetails) ImageURL() string   { return d.data.ImageURL }
func (d *PreviewDetails) Errors() []string   { return slices.Clone(d.data.Errors) }
func (d *PreviewDetails) TemplateID() string { return d.data.TemplateID }

// Download fetches the rendered image.
func (d *PreviewDetails) Download(ctx context.Context) ([]byte, error) {
	data, err := d.s.transport.GetBinary(ctx, d.data.ImageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("downloading preview image: %w", err)
	}
	return data, nil
}
