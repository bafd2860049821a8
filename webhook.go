package printone

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WebhookSignatureHeader carries the base64 HMAC-SHA256 of the raw body.
const WebhookSignatureHeader = "X-Webhook-Hmac-Sha256"

// WebhookRequest is a decoded webhook delivery. It is one of
// *OrderStatusUpdate, *TemplatePreviewRendered, *BatchStatusUpdate or
// *CouponCodeUsed.
type WebhookRequest interface {
	Event() WebhookEvent
	CreatedAt() time.Time
	webhookRequest()
}

type webhookBase struct {
	event     WebhookEvent
	createdAt time.Time
}

func (b webhookBase) Event() WebhookEvent  { return b.event }
func (b webhookBase) CreatedAt() time.Time { return b.createdAt }
func (webhookBase) webhookRequest()        {}

// OrderStatusUpdate is sent when an order changes status.
type OrderStatusUpdate struct {
	webhookBase
	order *Order
}

func (r *OrderStatusUpdate) Data() *Order { return r.order }

// TemplatePreviewRendered is sent when a preview finished rendering.
type TemplatePreviewRendered struct {
	webhookBase
	details *PreviewDetails
}

func (r *TemplatePreviewRendered) Data() *PreviewDetails { return r.details }

// BatchStatusUpdate is sent when a batch changes status.
type BatchStatusUpdate struct {
	webhookBase
	batch *Batch
}

func (r *BatchStatusUpdate) Data() *Batch { return r.batch }

// CouponCodeUsed is sent when an order used a coupon code.
type CouponCodeUsed struct {
	webhookBase
	code *CouponCode
}

func (r *CouponCodeUsed) Data() *CouponCode { return r.code }

// webhookEnvelope accepts both spellings of the creation time; deliveries
// use created_at and webhook logs use createdAt.
type webhookEnvelope struct {
	Event      WebhookEvent    `json:"event"`
	CreatedAt  *time.Time      `json:"created_at"`
	CreatedAt2 *time.Time      `json:"createdAt"`
	Data       json.RawMessage `json:"data"`
}

func decodeWebhookRequest(s *shared, raw []byte) (WebhookRequest, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decoding webhook payload: %w", err)
	}

	base := webhookBase{event: env.Event}
	switch {
	case env.CreatedAt != nil:
		base.createdAt = *env.CreatedAt
	case env.CreatedAt2 != nil:
		base.createdAt = *env.CreatedAt2
	}

	switch env.Event {
	case WebhookEventOrderStatusUpdate:
		data, err := decodeWebhookData[orderData](env)
		if err != nil {
			return nil, err
		}
		return &OrderStatusUpdate{webhookBase: base, order: newOrder(s, data)}, nil
	case WebhookEventTemplatePreviewRendered:
		data, err := decodeWebhookData[previewDetailsData](env)
		if err != nil {
			return nil, err
		}
		return &TemplatePreviewRendered{webhookBase: base, details: newPreviewDetails(s, data)}, nil
	case WebhookEventBatchStatusUpdate:
		data, err := decodeWebhookData[batchData](env)
		if err != nil {
			return nil, err
		}
		return &BatchStatusUpdate{webhookBase: base, batch: newBatch(s, data)}, nil
	case WebhookEventCouponCodeUsed:
		data, err := decodeWebhookData[couponCodeData](env)
		if err != nil {
			return nil, err
		}
		return &CouponCodeUsed{webhookBase: base, code: newCouponCode(s, data)}, nil
	default:
		return nil, &UnknownWebhookEventError{Event: string(env.Event)}
	}
}

func decodeWebhookData[T any](env webhookEnvelope) (T, error) {
	var data T
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return data, fmt.Errorf("decoding %s data: %w", env.Event, err)
	}
	return data, nil
}

// IsValidWebhook reports whether the signature header matches the
// HMAC-SHA256 of body under secret.
func IsValidWebhook(body []byte, headers http.Header, secret string) bool {
	signature := headers.Get(WebhookSignatureHeader)
	if signature == "" {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(signWebhook(body, secret)))
}

func signWebhook(body []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// IsValidWebhook reports whether the signature header matches the
// HMAC-SHA256 of body under secret.
func (c *Client) IsValidWebhook(body []byte, headers http.Header, secret string) bool {
	return IsValidWebhook(body, headers, secret)
}

// ValidateWebhook checks the signature of a delivery and decodes it.
func (c *Client) ValidateWebhook(body []byte, headers http.Header, secret string) (WebhookRequest, error) {
	if !IsValidWebhook(body, headers, secret) {
		return nil, ErrInvalidWebhookSignature
	}
	req, err := decodeWebhookRequest(c.s, body)
	if err != nil {
		return nil, err
	}
	c.s.logger.Debug("webhook received", "event", req.Event())
	return req, nil
}

// WebhookValidator validates incoming webhook HTTP requests.
type WebhookValidator struct {
	client    *Client
	secret    string
	oldSecret string // For zero-downtime key rotation
}

// NewWebhookValidator creates a validator for deliveries signed with secret.
func (c *Client) NewWebhookValidator(secret string) *WebhookValidator {
	return &WebhookValidator{client: c, secret: secret}
}

// SetOldSecret sets the previous secret, accepted while a rotation is in progress.
func (v *WebhookValidator) SetOldSecret(oldSecret string) {
	v.oldSecret = oldSecret
}

// ValidateRequest validates and decodes an incoming webhook request.
// The request body can be read again afterwards.
func (v *WebhookValidator) ValidateRequest(r *http.Request) (WebhookRequest, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	req, err := v.client.ValidateWebhook(body, r.Header, v.secret)
	if err == ErrInvalidWebhookSignature && v.oldSecret != "" {
		req, err = v.client.ValidateWebhook(body, r.Header, v.oldSecret)
	}
	return req, err
}
