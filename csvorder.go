package printone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"time"
)

// CsvMapping maps CSV columns onto the recipient address and merge
// variables, using {{Column}} placeholders.
type CsvMapping struct {
	Recipient      Address           `json:"recipient" validate:"required"`
	MergeVariables map[string]string `json:"mergeVariables,omitempty"`
}

type csvOrderData struct {
	ID                  string            `json:"id"`
	EstimatedOrderCount int               `json:"estimatedOrderCount"`
	FailedOrderCount    int               `json:"failedOrderCount"`
	ProcessedOrderCount int               `json:"processedOrderCount"`
	TotalOrderCount     int               `json:"totalOrderCount"`
	TemplateID          string            `json:"templateId"`
	Mapping             CsvMapping        `json:"mapping"`
	Finish              Finish            `json:"finish"`
	Format              Format            `json:"format"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
	SendDate            time.Time         `json:"sendDate"`
	IsBillable          bool              `json:"isBillable"`
	Status              CsvStatus         `json:"status"`
	FriendlyStatus      FriendlyCsvStatus `json:"friendlyStatus"`
	Sender              *Address          `json:"sender,omitempty"`
	BillingID           string            `json:"billingId,omitempty"`
	BatchID             string            `json:"batchId,omitempty"`
}

// CsvOrder is a bulk import that creates one order per CSV row.
type CsvOrder struct {
	s        *shared
	data     csvOrderData
	basePath string
}

func newCsvOrder(s *shared, data csvOrderData) *CsvOrder {
	base := "orders/csv"
	if data.BatchID != "" {
		base = "batches/" + data.BatchID + "/orders/csv"
	}
	return &CsvOrder{s: s, data: data, basePath: base}
}

func (o *CsvOrder) ID() string                { return o.data.ID }
func (o *CsvOrder) EstimatedOrderCount() int  { return o.data.EstimatedOrderCount }
func (o *CsvOrder) FailedOrderCount() int     { return o.data.FailedOrderCount }
func (o *CsvOrder) ProcessedOrderCount() int  { return o.data.ProcessedOrderCount }
func (o *CsvOrder) TotalOrderCount() int      { return o.data.TotalOrderCount }
func (o *CsvOrder) TemplateID() string        { return o.data.TemplateID }
func (o *CsvOrder) RecipientMapping() Address { return o.data.Mapping.Recipient }
func (o *CsvOrder) Finish() Finish            { return o.data.Finish }
func (o *CsvOrder) Format() Format            { return o.data.Format }
func (o *CsvOrder) CreatedAt() time.Time      { return o.data.CreatedAt }
func (o *CsvOrder) UpdatedAt() time.Time      { return o.data.UpdatedAt }
func (o *CsvOrder) SendDate() time.Time       { return o.data.SendDate }
func (o *CsvOrder) IsBillable() bool          { return o.data.IsBillable }
func (o *CsvOrder) Status() CsvStatus         { return o.data.Status }
func (o *CsvOrder) BillingID() string         { return o.data.BillingID }
func (o *CsvOrder) BatchID() string           { return o.data.BatchID }

// MergeVariableMapping returns the merge variable column mapping.
func (o *CsvOrder) MergeVariableMapping() map[string]string {
	m := maps.Clone(o.data.Mapping.MergeVariables)
	if m == nil {
		m = map[string]string{}
	}
	return m
}

// FriendlyStatus returns the coarse status, derived from Status when the
// server left it out.
func (o *CsvOrder) FriendlyStatus() FriendlyCsvStatus {
	if o.data.FriendlyStatus != "" {
		return o.data.FriendlyStatus
	}
	return o.data.Status.Friendly()
}

// Sender returns nil when no sender address was given.
func (o *CsvOrder) Sender() *Address {
	if o.data.Sender == nil {
		return nil
	}
	sender := *o.data.Sender
	return &sender
}

// Template fetches the template the orders are created from.
func (o *CsvOrder) Template(ctx context.Context) (*Template, error) {
	return o.s.client.Template(ctx, o.data.TemplateID)
}

// Orders lists the orders created by this import.
func (o *CsvOrder) Orders(ctx context.Context, q OrderQuery) (*PaginatedResponse[*Order], error) {
	q.CsvOrderID = Equals(o.data.ID)
	return listOrders(ctx, o.s, "orders", "", q)
}

// Refresh replaces the import's data with the server's current state.
func (o *CsvOrder) Refresh(ctx context.Context) error {
	data, err := getJSON[csvOrderData](ctx, o.s, o.basePath+"/"+o.data.ID, nil)
	if err != nil {
		return fmt.Errorf("refreshing csv order: %w", err)
	}
	if data.BatchID == "" {
		data.BatchID = o.data.BatchID
	}
	o.data = data
	return nil
}

// CreateCsvOrderRequest describes a CSV import. File holds the CSV
// contents. A zero SendDate sends the orders as soon as possible.
type CreateCsvOrderRequest struct {
	File       []byte     `validate:"required"`
	Mapping    CsvMapping `validate:"required"`
	TemplateID string     `validate:"required"`
	Finish     Finish     `validate:"finish"`
	BillingID  string
	Sender     *Address
	SendDate   time.Time
}

// CreateBatchCsvOrderRequest describes a CSV import into a batch, which
// supplies the template and finish.
type CreateBatchCsvOrderRequest struct {
	File    []byte     `validate:"required"`
	Mapping CsvMapping `validate:"required"`
}

func csvOrderBody(file []byte, fields []formField) (*bytes.Buffer, *RequestOptions, error) {
	body, contentType, err := multipartBody(fields, formFile{
		field:       "file",
		fileName:    "orders.csv",
		contentType: "text/csv",
		data:        file,
	})
	if err != nil {
		return nil, nil, err
	}
	return body, &RequestOptions{ContentType: contentType}, nil
}

func jsonField(name string, v any) (formField, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return formField{}, fmt.Errorf("encoding %s: %w", name, err)
	}
	return formField{name: name, value: string(data)}, nil
}

// createCsvOrder uploads the import and makes sure the returned value
// carries the full representation.
func createCsvOrder(ctx context.Context, s *shared, path, batchID string, file []byte, fields []formField) (*CsvOrder, error) {
	body, opts, err := csvOrderBody(file, fields)
	if err != nil {
		return nil, err
	}

	data, err := postJSON[csvOrderData](ctx, s, path, body, opts)
	if err != nil {
		return nil, err
	}
	if data.Status == "" {
		data, err = getJSON[csvOrderData](ctx, s, path+"/"+data.ID, nil)
		if err != nil {
			return nil, err
		}
	}
	if data.BatchID == "" {
		data.BatchID = batchID
	}
	return newCsvOrder(s, data), nil
}

// CreateCsvOrder starts a CSV import.
func (c *Client) CreateCsvOrder(ctx context.Context, req CreateCsvOrderRequest) (*CsvOrder, error) {
	if err := validateRequest("create csv order", req); err != nil {
		return nil, err
	}

	mapping, err := jsonField("mapping", req.Mapping)
	if err != nil {
		return nil, fmt.Errorf("creating csv order: %w", err)
	}
	fields := []formField{
		mapping,
		{name: "templateId", value: req.TemplateID},
		{name: "finish", value: string(req.Finish)},
		{name: "billingId", value: req.BillingID},
		{name: "sendDate", value: optionalTime(req.SendDate)},
	}
	if req.Sender != nil {
		sender, err := jsonField("sender", req.Sender)
		if err != nil {
			return nil, fmt.Errorf("creating csv order: %w", err)
		}
		fields = append(fields, sender)
	}

	order, err := createCsvOrder(ctx, c.s, "orders/csv", "", req.File, fields)
	if err != nil {
		return nil, fmt.Errorf("creating csv order: %w", err)
	}
	return order, nil
}

// CsvOrder retrieves a CSV import by id.
func (c *Client) CsvOrder(ctx context.Context, id string) (*CsvOrder, error) {
	data, err := getJSON[csvOrderData](ctx, c.s, "orders/csv/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("getting csv order: %w", err)
	}
	return newCsvOrder(c.s, data), nil
}
