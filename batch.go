package printone

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchOrderCounts are the per-state order totals of a batch, maintained by
// the server.
type BatchOrderCounts struct {
	Processing int `json:"processing"`
	Success    int `json:"success"`
	Failed     int `json:"failed"`
	Cancelled  int `json:"cancelled"`
}

// Total returns the number of orders in the batch.
func (c BatchOrderCounts) Total() int {
	return c.Processing + c.Success + c.Failed + c.Cancelled
}

type batchData struct {
	ID             string           `json:"id"`
	CompanyID      string           `json:"companyId"`
	Name           string           `json:"name"`
	BillingID      string           `json:"billingId"`
	Finish         Finish           `json:"finish"`
	IsBillable     bool             `json:"isBillable"`
	TemplateID     string           `json:"templateId"`
	EstimatedPrice float64          `json:"estimatedPrice"`
	SendDate       *time.Time       `json:"sendDate"`
	Status         BatchStatus      `json:"status"`
	Orders         BatchOrderCounts `json:"orders"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// Batch is a named group of orders that share a template and are sent
// together.
type Batch struct {
	s    *shared
	data batchData
}

func newBatch(s *shared, data batchData) *Batch {
	return &Batch{s: s, data: data}
}

func (b *Batch) ID() string                    { return b.data.ID }
func (b *Batch) CompanyID() string             { return b.data.CompanyID }
func (b *Batch) Name() string                  { return b.data.Name }
func (b *Batch) BillingID() string             { return b.data.BillingID }
func (b *Batch) Finish() Finish                { return b.data.Finish }
func (b *Batch) IsBillable() bool              { return b.data.IsBillable }
func (b *Batch) TemplateID() string            { return b.data.TemplateID }
func (b *Batch) EstimatedPrice() float64       { return b.data.EstimatedPrice }
func (b *Batch) Status() BatchStatus           { return b.data.Status }
func (b *Batch) OrderCounts() BatchOrderCounts { return b.data.Orders }
func (b *Batch) CreatedAt() time.Time          { return b.data.CreatedAt }
func (b *Batch) UpdatedAt() time.Time          { return b.data.UpdatedAt }

// SendDate returns nil while the batch is not scheduled.
func (b *Batch) SendDate() *time.Time { return b.data.SendDate }

func (b *Batch) path() string {
	return "batches/" + b.data.ID
}

// Refresh replaces the batch's data with the server's current state.
func (b *Batch) Refresh(ctx context.Context) error {
	data, err := getJSON[batchData](ctx, b.s, b.path(), nil)
	if err != nil {
		return fmt.Errorf("refreshing batch: %w", err)
	}
	b.data = data
	return nil
}

// Template fetches the batch's template.
func (b *Batch) Template(ctx context.Context) (*Template, error) {
	return b.s.client.Template(ctx, b.data.TemplateID)
}

// Order retrieves an order of this batch.
func (b *Batch) Order(ctx context.Context, id string) (*Order, error) {
	data, err := getJSON[orderData](ctx, b.s, b.path()+"/orders/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("getting batch order: %w", err)
	}
	if data.BatchID == "" {
		data.BatchID = b.data.ID
	}
	return newOrder(b.s, data), nil
}

// Orders lists the orders of this batch. q.BatchID is ignored.
func (b *Batch) Orders(ctx context.Context, q OrderQuery) (*PaginatedResponse[*Order], error) {
	q.BatchID = nil
	return listOrders(ctx, b.s, b.path()+"/orders", b.data.ID, q)
}

// CreateBatchOrderRequest describes an order added to a batch. Template,
// finish and sender come from the batch.
type CreateBatchOrderRequest struct {
	Recipient      Address        `json:"recipient" validate:"required"`
	MergeVariables map[string]any `json:"mergeVariables,omitempty"`
}

// CreateOrder adds an order to the batch.
func (b *Batch) CreateOrder(ctx context.Context, req CreateBatchOrderRequest) (*Order, error) {
	if err := validateRequest("create batch order", req); err != nil {
		return nil, err
	}

	data, err := postJSON[orderData](ctx, b.s, b.path()+"/orders", req, nil)
	if err != nil {
		return nil, fmt.Errorf("creating batch order: %w", err)
	}
	if data.BatchID == "" {
		data.BatchID = b.data.ID
	}
	return newOrder(b.s, data), nil
}

// CreateOrders adds many orders with at most concurrency requests in
// flight. The result has the order of reqs. The first failure cancels the
// requests that have not started yet; orders created before it are kept by
// the server.
func (b *Batch) CreateOrders(ctx context.Context, reqs []CreateBatchOrderRequest, concurrency int) ([]*Order, error) {
	for _, req := range reqs {
		if err := validateRequest("create batch order", req); err != nil {
			return nil, err
		}
	}
	if concurrency < 1 {
		concurrency = 1
	}

	orders := make([]*Order, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, req := range reqs {
		g.Go(func() error {
			order, err := b.CreateOrder(ctx, req)
			if err != nil {
				return fmt.Errorf("order %d: %w", i, err)
			}
			orders[i] = order
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateCsvOrder imports a CSV into the batch.
func (b *Batch) CreateCsvOrder(ctx context.Context, req CreateBatchCsvOrderRequest) (*CsvOrder, error) {
	if err := validateRequest("create batch csv order", req); err != nil {
		return nil, err
	}

	mapping, err := jsonField("mapping", req.Mapping)
	if err != nil {
		return nil, fmt.Errorf("creating batch csv order: %w", err)
	}

	order, err := createCsvOrder(ctx, b.s, b.path()+"/orders/csv", b.data.ID, req.File, []formField{mapping})
	if err != nil {
		return nil, fmt.Errorf("creating batch csv order: %w", err)
	}
	return order, nil
}

// CsvOrder retrieves a CSV import of this batch.
func (b *Batch) CsvOrder(ctx context.Context, id string) (*CsvOrder, error) {
	data, err := getJSON[csvOrderData](ctx, b.s, b.path()+"/orders/csv/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("getting batch csv order: %w", err)
	}
	if data.BatchID == "" {
		data.BatchID = b.data.ID
	}
	return newCsvOrder(b.s, data), nil
}

// BatchUpdate changes the ready state of a batch. Ready marks the batch
// ready now; ReadyAt schedules it for that moment instead. Neither clears
// the ready state.
type BatchUpdate struct {
	Ready   bool
	ReadyAt time.Time
}

type batchUpdateBody struct {
	Ready any `json:"ready"`
}

func (u BatchUpdate) body() batchUpdateBody {
	switch {
	case !u.ReadyAt.IsZero():
		return batchUpdateBody{Ready: formatTime(u.ReadyAt)}
	case u.Ready:
		return batchUpdateBody{Ready: true}
	}
	return batchUpdateBody{Ready: nil}
}

// Update changes the ready state and replaces the batch's data with the result.
func (b *Batch) Update(ctx context.Context, u BatchUpdate) error {
	data, err := patchJSON[batchData](ctx, b.s, b.path(), u.body())
	if err != nil {
		return fmt.Errorf("updating batch: %w", err)
	}
	b.data = data
	return nil
}

// CreateBatchRequest describes a new batch. Ready and ReadyAt behave as in
// BatchUpdate.
type CreateBatchRequest struct {
	Name       string    `json:"name" validate:"required"`
	TemplateID string    `json:"templateId" validate:"required"`
	Finish     Finish    `json:"finish" validate:"required,finish"`
	BillingID  string    `json:"billingId,omitempty"`
	Sender     *Address  `json:"sender,omitempty"`
	Ready      bool      `json:"-"`
	ReadyAt    time.Time `json:"-"`
}

type createBatchBody struct {
	CreateBatchRequest
	Ready any `json:"ready,omitempty"`
}

// CreateBatch creates a batch.
func (c *Client) CreateBatch(ctx context.Context, req CreateBatchRequest) (*Batch, error) {
	if err := validateRequest("create batch", req); err != nil {
		return nil, err
	}

	body := createBatchBody{
		CreateBatchRequest: req,
		Ready:              BatchUpdate{Ready: req.Ready, ReadyAt: req.ReadyAt}.body().Ready,
	}
	data, err := postJSON[batchData](ctx, c.s, "batches", body, nil)
	if err != nil {
		return nil, fmt.Errorf("creating batch: %w", err)
	}
	return newBatch(c.s, data), nil
}

// Batch retrieves a batch by id.
func (c *Client) Batch(ctx context.Context, id string) (*Batch, error) {
	data, err := getJSON[batchData](ctx, c.s, "batches/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("getting batch: %w", err)
	}
	return newBatch(c.s, data), nil
}

// Batches lists batches.
func (c *Client) Batches(ctx context.Context, q BatchQuery) (*PaginatedResponse[*Batch], error) {
	page, err := fetchPage(ctx, c.s, "batches", &RequestOptions{Query: q.values()}, func(d batchData) *Batch {
		return newBatch(c.s, d)
	})
	if err != nil {
		return nil, fmt.Errorf("getting batches: %w", err)
	}
	return page, nil
}
