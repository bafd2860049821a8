package printone

import (
	"context"
	"fmt"
	"iter"
	"slices"
)

// PageMeta describes the position of a page in a listing.
type PageMeta struct {
	Page          int
	Pages         int
	PageSize      int
	Total         int
	FilterOptions map[string][]string
}

// PageLinks holds the cursor URLs of a page. PreviousURL and NextURL are
// empty when there is no page in that direction.
type PageLinks struct {
	PreviousURL string
	CurrentURL  string
	NextURL     string
}

// pageWire is the JSON shape of every list endpoint.
type pageWire[R any] struct {
	Data        []R     `json:"data"`
	PreviousURL *string `json:"previousUrl"`
	CurrentURL  string  `json:"currentUrl"`
	NextURL     *string `json:"nextUrl"`
	Page        int     `json:"page"`
	Pages       int     `json:"pages"`
	PageSize    int     `json:"pageSize"`
	Total       int     `json:"total"`
	Meta        struct {
		FilterOptions map[string][]string `json:"filterOptions"`
	} `json:"meta"`
}

// PaginatedResponse is one page of a listing. Next and Previous fetch the
// adjacent pages and return new values; a page is never modified.
type PaginatedResponse[T any] struct {
	data  []T
	meta  PageMeta
	links PageLinks
	fetch func(ctx context.Context, url string) (*PaginatedResponse[T], error)
}

// Data returns the page's items in server order.
func (p *PaginatedResponse[T]) Data() []T {
	return slices.Clone(p.data)
}

// Meta returns the page metadata.
func (p *PaginatedResponse[T]) Meta() PageMeta {
	return p.meta
}

// Links returns the cursor URLs.
func (p *PaginatedResponse[T]) Links() PageLinks {
	return p.links
}

// Next fetches the following page. It returns nil, nil on the last page.
func (p *PaginatedResponse[T]) Next(ctx context.Context) (*PaginatedResponse[T], error) {
	if p.links.NextURL == "" {
		return nil, nil
	}
	next, err := p.fetch(ctx, p.links.NextURL)
	if err != nil {
		return nil, fmt.Errorf("getting next page: %w", err)
	}
	return next, nil
}

// Previous fetches the preceding page. It returns nil, nil on the first page.
func (p *PaginatedResponse[T]) Previous(ctx context.Context) (*PaginatedResponse[T], error) {
	if p.links.PreviousURL == "" {
		return nil, nil
	}
	prev, err := p.fetch(ctx, p.links.PreviousURL)
	if err != nil {
		return nil, fmt.Errorf("getting previous page: %w", err)
	}
	return prev, nil
}

// All yields the items of this page and every following page. Iteration
// stops after the first error.
func (p *PaginatedResponse[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		page := p
		for page != nil {
			for _, item := range page.data {
				if !yield(item, nil) {
					return
				}
			}

			next, err := page.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			page = next
		}
	}
}

func newPage[R, T any](s *shared, wire pageWire[R], convert func(R) T) *PaginatedResponse[T] {
	p := &PaginatedResponse[T]{
		data: make([]T, len(wire.Data)),
		meta: PageMeta{
			Page:          wire.Page,
			Pages:         wire.Pages,
			PageSize:      wire.PageSize,
			Total:         wire.Total,
			FilterOptions: wire.Meta.FilterOptions,
		},
		links: PageLinks{CurrentURL: wire.CurrentURL},
		fetch: func(ctx context.Context, url string) (*PaginatedResponse[T], error) {
			return fetchPage(ctx, s, url, nil, convert)
		},
	}
	if wire.PreviousURL != nil {
		p.links.PreviousURL = *wire.PreviousURL
	}
	if wire.NextURL != nil {
		p.links.NextURL = *wire.NextURL
	}
	for i, raw := range wire.Data {
		p.data[i] = convert(raw)
	}
	return p
}

func fetchPage[R, T any](ctx context.Context, s *shared, path string, opts *RequestOptions, convert func(R) T) (*PaginatedResponse[T], error) {
	wire, err := getJSON[pageWire[R]](ctx, s, path, opts)
	if err != nil {
		return nil, err
	}
	return newPage(s, wire, convert), nil
}
