package printone

import (
	"context"
	"fmt"
	"time"
)

// CouponStats counts the codes of a coupon.
type CouponStats struct {
	Total     int `json:"total"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

type couponData struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	CompanyID string      `json:"companyId"`
	Stats     CouponStats `json:"stats"`
}

// Coupon groups single-use codes that can be printed on orders.
type Coupon struct {
	s    *shared
	data couponData
}

func newCoupon(s *shared, data couponData) *Coupon {
	return &Coupon{s: s, data: data}
}

func (c *Coupon) ID() string         { return c.data.ID }
func (c *Coupon) Name() string       { return c.data.Name }
func (c *Coupon) CompanyID() string  { return c.data.CompanyID }
func (c *Coupon) Stats() CouponStats { return c.data.Stats }

func (c *Coupon) path() string {
	return "coupons/" + c.data.ID
}

// Refresh replaces the coupon's data with the server's current state.
func (c *Coupon) Refresh(ctx context.Context) error {
	data, err := getJSON[couponData](ctx, c.s, c.path(), nil)
	if err != nil {
		return fmt.Errorf("refreshing coupon: %w", err)
	}
	c.data = data
	return nil
}

// Codes lists the codes of the coupon.
func (c *Coupon) Codes(ctx context.Context, opts ListOptions) (*PaginatedResponse[*CouponCode], error) {
	page, err := fetchPage(ctx, c.s, c.path()+"/codes", &RequestOptions{Query: encodeSort(opts)}, func(d couponCodeData) *CouponCode {
		return newCouponCode(c.s, d)
	})
	if err != nil {
		return nil, fmt.Errorf("getting coupon codes: %w", err)
	}
	return page, nil
}

// Code retrieves a single code of the coupon.
func (c *Coupon) Code(ctx context.Context, id string) (*CouponCode, error) {
	data, err := getJSON[couponCodeData](ctx, c.s, c.path()+"/codes/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("getting coupon code: %w", err)
	}
	return newCouponCode(c.s, data), nil
}

// AddCodes uploads a CSV with one code per line.
func (c *Coupon) AddCodes(ctx context.Context, csv []byte) error {
	body, contentType, err := multipartBody(nil, formFile{
		field:       "file",
		fileName:    "codes.csv",
		contentType: "text/csv",
		data:        csv,
	})
	if err != nil {
		return fmt.Errorf("adding coupon codes: %w", err)
	}

	if err := c.s.transport.Post(ctx, c.path(), body, &RequestOptions{ContentType: contentType}, nil); err != nil {
		return fmt.Errorf("adding coupon codes: %w", err)
	}
	return nil
}

// Delete removes the coupon and its codes.
func (c *Coupon) Delete(ctx context.Context) error {
	if err := c.s.transport.Delete(ctx, c.path(), nil, nil); err != nil {
		return fmt.Errorf("deleting coupon: %w", err)
	}
	return nil
}

type couponCodeData struct {
	ID       string     `json:"id"`
	CouponID string     `json:"couponId"`
	Code     string     `json:"code"`
	Used     bool       `json:"used"`
	UsedAt   *time.Time `json:"usedAt"`
	OrderID  *string    `json:"orderId"`
}

// CouponCode is a single-use code of a coupon.
type CouponCode struct {
	s    *shared
	data couponCodeData
}

func newCouponCode(s *shared, data couponCodeData) *CouponCode {
	return &CouponCode{s: s, data: data}
}

func (c *CouponCode) ID() string       { return c.data.ID }
func (c *CouponCode) CouponID() string { return c.data.CouponID }
func (c *CouponCode) Code() string     { return c.data.Code }
func (c *CouponCode) Used() bool       { return c.data.Used }

// UsedAt returns nil while the code is unused.
func (c *CouponCode) UsedAt() *time.Time { return c.data.UsedAt }

// OrderID returns the order that used the code, or "".
func (c *CouponCode) OrderID() string {
	if c.data.OrderID == nil {
		return ""
	}
	return *c.data.OrderID
}

// Refresh replaces the code's data with the server's current state.
func (c *CouponCode) Refresh(ctx context.Context) error {
	data, err := getJSON[couponCodeData](ctx, c.s, "coupons/"+c.data.CouponID+"/codes/"+c.data.ID, nil)
	if err != nil {
		return fmt.Errorf("refreshing coupon code: %w", err)
	}
	c.data = data
	return nil
}

// Order fetches the order that used the code. It returns nil, nil for an
// unused code.
func (c *CouponCode) Order(ctx context.Context) (*Order, error) {
	id := c.OrderID()
	if id == "" {
		return nil, nil
	}
	return c.s.client.Order(ctx, id)
}

// CreateCouponRequest describes a new coupon.
type CreateCouponRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateCoupon creates a coupon without codes.
func (c *Client) CreateCoupon(ctx context.Context, req CreateCouponRequest) (*Coupon, error) {
	if err := validateRequest("create coupon", req); err != nil {
		return nil, err
	}

	data, err := postJSON[couponData](ctx, c.s, "coupons", req, nil)
	if err != nil {
		return nil, fmt.Errorf("creating coupon: %w", err)
	}
	return newCoupon(c.s, data), nil
}

// Coupon retrieves a coupon by id.
func (c *Client) Coupon(ctx context.Context, id string) (*Coupon, error) {
	data, err := getJSON[couponData](ctx, c.s, "coupons/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("getting coupon: %w", err)
	}
	return newCoupon(c.s, data), nil
}

// Coupons lists coupons.
func (c *Client) Coupons(ctx context.Context, q CouponQuery) (*PaginatedResponse[*Coupon], error) {
	page, err := fetchPage(ctx, c.s, "coupons", &RequestOptions{Query: q.values()}, func(d couponData) *Coupon {
		return newCoupon(c.s, d)
	})
	if err != nil {
		return nil, fmt.Errorf("getting coupons: %w", err)
	}
	return page, nil
}
