package printone

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"
)

type orderData struct {
	ID                  string         `json:"id"`
	CompanyID           string         `json:"companyId"`
	TemplateID          string         `json:"templateId"`
	Finish              Finish         `json:"finish"`
	Format              Format         `json:"format"`
	MergeVariables      map[string]any `json:"mergeVariables"`
	Sender              *Address       `json:"sender,omitempty"`
	Recipient           Address        `json:"recipient"`
	DefinitiveCountryID string         `json:"definitiveCountryId"`
	DeliverySpeed       string         `json:"deliverySpeed"`
	BillingID           string         `json:"billingId,omitempty"`
	IsBillable          bool           `json:"isBillable"`
	Status              OrderStatus    `json:"status"`
	FriendlyStatus      FriendlyStatus `json:"friendlyStatus"`
	Errors              []string       `json:"errors"`
	SendDate            time.Time      `json:"sendDate"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
	AnonymizedAt        *time.Time     `json:"anonymizedAt"`
	CsvOrderID          *string        `json:"csvOrderId"`
	BatchID             string         `json:"batchId,omitempty"`
}

// Order is a single printed and mailed item. Orders that belong to a batch
// are addressed below that batch for their whole lifetime.
type Order struct {
	s        *shared
	data     orderData
	basePath string
}

func newOrder(s *shared, data orderData) *Order {
	base := "orders"
	if data.BatchID != "" {
		base = "batches/" + data.BatchID + "/orders"
	}
	return &Order{s: s, data: data, basePath: base}
}

func (o *Order) ID() string                     { return o.data.ID }
func (o *Order) CompanyID() string              { return o.data.CompanyID }
func (o *Order) TemplateID() string             { return o.data.TemplateID }
func (o *Order) Finish() Finish                 { return o.data.Finish }
func (o *Order) Format() Format                 { return o.data.Format }
func (o *Order) MergeVariables() map[string]any { return maps.Clone(o.data.MergeVariables) }
func (o *Order) Recipient() Address             { return o.data.Recipient }
func (o *Order) DefinitiveCountryID() string    { return o.data.DefinitiveCountryID }
func (o *Order) DeliverySpeed() string          { return o.data.DeliverySpeed }
func (o *Order) BillingID() string              { return o.data.BillingID }
func (o *Order) IsBillable() bool               { return o.data.IsBillable }
func (o *Order) Status() OrderStatus            { return o.data.Status }
func (o *Order) FriendlyStatus() FriendlyStatus { return o.data.FriendlyStatus }
func (o *Order) Errors() []string               { return slices.Clone(o.data.Errors) }
func (o *Order) SendDate() time.Time            { return o.data.SendDate }
func (o *Order) CreatedAt() time.Time           { return o.data.CreatedAt }
func (o *Order) UpdatedAt() time.Time           { return o.data.UpdatedAt }
func (o *Order) BatchID() string                { return o.data.BatchID }

// Sender returns nil when the order has no sender address.
func (o *Order) Sender() *Address {
	if o.data.Sender == nil {
		return nil
	}
	sender := *o.data.Sender
	return &sender
}

// AnonymizedAt returns nil while the order holds personal data.
func (o *Order) AnonymizedAt() *time.Time { return o.data.AnonymizedAt }

// CsvOrderID returns the CSV import the order came from, or "".
func (o *Order) CsvOrderID() string {
	if o.data.CsvOrderID == nil {
		return ""
	}
	return *o.data.CsvOrderID
}

// Template fetches the order's template.
func (o *Order) Template(ctx context.Context) (*Template, error) {
	return o.s.client.Template(ctx, o.data.TemplateID)
}

// Refresh replaces the order's data with the server's current state.
func (o *Order) Refresh(ctx context.Context) error {
	data, err := getJSON[orderData](ctx, o.s, o.basePath+"/"+o.data.ID, nil)
	if err != nil {
		return fmt.Errorf("refreshing order: %w", err)
	}
	o.replace(data)
	return nil
}

// replace swaps in fresh data. The batch id is kept when the server leaves
// it out, since the routing already depends on it.
func (o *Order) replace(data orderData) {
	if data.BatchID == "" {
		data.BatchID = o.data.BatchID
	}
	o.data = data
}

func (o *Order) pending() bool {
	return o.data.Status == OrderStatusCreated
}

// Download waits while the order is still being created and then fetches
// its PDF. If the wait runs out the download is attempted anyway.
func (o *Order) Download(ctx context.Context, opts ...PollOption) ([]byte, error) {
	settled, err := waitWhile(ctx, o.s.pollPolicy(opts), o.pending, o.Refresh)
	if err != nil {
		return nil, fmt.Errorf("downloading order: %w", err)
	}
	if !settled {
		o.s.logger.DebugContext(ctx, "order still being created, downloading anyway", "order_id", o.data.ID)
	}

	data, err := o.s.transport.GetBinary(ctx, "storage/order/preview/"+o.data.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("downloading order: %w", err)
	}
	return data, nil
}

// Cancel waits while the order is still being created and then cancels it.
// If the wait runs out the cancel is attempted anyway.
func (o *Order) Cancel(ctx context.Context, opts ...PollOption) error {
	settled, err := waitWhile(ctx, o.s.pollPolicy(opts), o.pending, o.Refresh)
	if err != nil {
		return fmt.Errorf("cancelling order: %w", err)
	}
	if !settled {
		o.s.logger.DebugContext(ctx, "order still being created, cancelling anyway", "order_id", o.data.ID)
	}

	data, err := postJSON[orderData](ctx, o.s, o.basePath+"/"+o.data.ID+"/cancel", struct{}{}, nil)
	if err != nil {
		return fmt.Errorf("cancelling order: %w", err)
	}
	o.replace(data)
	return nil
}

// CreateOrderRequest describes a new order. Finish defaults to GLOSSY on
// the server. A zero SendDate sends the order as soon as possible.
type CreateOrderRequest struct {
	Recipient      Address        `json:"recipient" validate:"required"`
	Sender         *Address       `json:"sender,omitempty"`
	TemplateID     string         `json:"templateId" validate:"required"`
	Finish         Finish         `json:"finish,omitempty" validate:"finish"`
	MergeVariables map[string]any `json:"mergeVariables,omitempty"`
	BillingID      string         `json:"billingId,omitempty"`
	SendDate       time.Time      `json:"-"`
}

type createOrderBody struct {
	CreateOrderRequest
	SendDate string `json:"sendDate,omitempty"`
}

func optionalTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return formatTime(t)
}

// CreateOrder creates an order.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if err := validateRequest("create order", req); err != nil {
		return nil, err
	}

	body := createOrderBody{CreateOrderRequest: req, SendDate: optionalTime(req.SendDate)}
	data, err := postJSON[orderData](ctx, c.s, "orders", body, nil)
	if err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}
	return newOrder(c.s, data), nil
}

// Order retrieves an order by id.
func (c *Client) Order(ctx context.Context, id string) (*Order, error) {
	data, err := getJSON[orderData](ctx, c.s, "orders/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("getting order: %w", err)
	}
	return newOrder(c.s, data), nil
}

// Orders lists orders.
func (c *Client) Orders(ctx context.Context, q OrderQuery) (*PaginatedResponse[*Order], error) {
	return listOrders(ctx, c.s, "orders", "", q)
}

// listOrders lists orders below path. Orders without a batch id get batchID.
func listOrders(ctx context.Context, s *shared, path, batchID string, q OrderQuery) (*PaginatedResponse[*Order], error) {
	page, err := fetchPage(ctx, s, path, &RequestOptions{Query: q.values()}, func(d orderData) *Order {
		if d.BatchID == "" {
			d.BatchID = batchID
		}
		return newOrder(s, d)
	})
	if err != nil {
		return nil, fmt.Errorf("getting orders: %w", err)
	}
	return page, nil
}
