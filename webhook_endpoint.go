package printone

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"
)

type webhookData struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Events        []WebhookEvent    `json:"events"`
	Active        bool              `json:"active"`
	Headers       map[string]string `json:"headers"`
	SecretHeaders map[string]string `json:"secretHeaders"`
	URL           string            `json:"url"`
	SuccessRate   *float64          `json:"successRate"`
}

// Webhook is a registered callback URL and the events it receives.
type Webhook struct {
	s    *shared
	data webhookData
}

func newWebhook(s *shared, data webhookData) *Webhook {
	return &Webhook{s: s, data: data}
}

func (w *Webhook) ID() string                       { return w.data.ID }
func (w *Webhook) Name() string                     { return w.data.Name }
func (w *Webhook) Events() []WebhookEvent           { return slices.Clone(w.data.Events) }
func (w *Webhook) Active() bool                     { return w.data.Active }
func (w *Webhook) Headers() map[string]string       { return maps.Clone(w.data.Headers) }
func (w *Webhook) SecretHeaders() map[string]string { return maps.Clone(w.data.SecretHeaders) }
func (w *Webhook) URL() string                      { return w.data.URL }

// SuccessRate returns nil before the first delivery.
func (w *Webhook) SuccessRate() *float64 { return w.data.SuccessRate }

func (w *Webhook) path() string {
	return "webhooks/" + w.data.ID
}

// WebhookUpdate holds the fields to change. Nil fields are left as they are.
type WebhookUpdate struct {
	Name          *string           `json:"name,omitempty"`
	Events        []WebhookEvent    `json:"events,omitempty" validate:"omitempty,dive,required"`
	Active        *bool             `json:"active,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"`
	SecretHeaders map[string]string `json:"secretHeaders,omitempty"`
	URL           *string           `json:"url,omitempty" validate:"omitempty,url"`
}

// Update changes the webhook and replaces its data with the result.
func (w *Webhook) Update(ctx context.Context, u WebhookUpdate) error {
	if err := validateRequest("update webhook", u); err != nil {
		return err
	}

	data, err := patchJSON[webhookData](ctx, w.s, w.path(), u)
	if err != nil {
		return fmt.Errorf("updating webhook: %w", err)
	}
	w.data = data
	return nil
}

// Delete removes the webhook.
func (w *Webhook) Delete(ctx context.Context) error {
	if err := w.s.transport.Delete(ctx, w.path(), nil, nil); err != nil {
		return fmt.Errorf("deleting webhook: %w", err)
	}
	return nil
}

// Logs lists the delivery attempts of the webhook.
func (w *Webhook) Logs(ctx context.Context, opts ListOptions) (*PaginatedResponse[*WebhookLog], error) {
	page, err := fetchPage(ctx, w.s, w.path()+"/logs", &RequestOptions{Query: encodeSort(opts)}, func(d webhookLogData) *WebhookLog {
		return newWebhookLog(w.s, d)
	})
	if err != nil {
		return nil, fmt.Errorf("getting webhook logs: %w", err)
	}
	return page, nil
}

// WebhookLogResponse is what the receiving endpoint answered.
type WebhookLogResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

type webhookLogData struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"`
	Event     WebhookEvent       `json:"event"`
	Request   json.RawMessage    `json:"request"`
	Response  WebhookLogResponse `json:"response"`
	CreatedAt time.Time          `json:"createdAt"`
}

// WebhookLog records one delivery attempt.
type WebhookLog struct {
	s    *shared
	data webhookLogData
}

func newWebhookLog(s *shared, data webhookLogData) *WebhookLog {
	return &WebhookLog{s: s, data: data}
}

func (l *WebhookLog) ID() string                   { return l.data.ID }
func (l *WebhookLog) Event() WebhookEvent          { return l.data.Event }
func (l *WebhookLog) Response() WebhookLogResponse { return l.data.Response }
func (l *WebhookLog) CreatedAt() time.Time         { return l.data.CreatedAt }

// Status is "success" or "failed".
func (l *WebhookLog) Status() string { return l.data.Status }

// Succeeded reports whether the delivery was accepted.
func (l *WebhookLog) Succeeded() bool { return l.data.Status == "success" }

// Request decodes the delivered payload.
func (l *WebhookLog) Request() (WebhookRequest, error) {
	return decodeWebhookRequest(l.s, l.data.Request)
}

// CreateWebhookRequest describes a new webhook.
type CreateWebhookRequest struct {
	Name          string            `json:"name" validate:"required"`
	Events        []WebhookEvent    `json:"events" validate:"required,min=1,dive,required"`
	Active        bool              `json:"active"`
	URL           string            `json:"url" validate:"required,url"`
	Headers       map[string]string `json:"headers,omitempty"`
	SecretHeaders map[string]string `json:"secretHeaders,omitempty"`
}

// CreateWebhook registers a webhook.
func (c *Client) CreateWebhook(ctx context.Context, req CreateWebhookRequest) (*Webhook, error) {
	if err := validateRequest("create webhook", req); err != nil {
		return nil, err
	}

	data, err := postJSON[webhookData](ctx, c.s, "webhooks", req, nil)
	if err != nil {
		return nil, fmt.Errorf("creating webhook: %w", err)
	}
	return newWebhook(c.s, data), nil
}

// Webhook retrieves a webhook by id.
func (c *Client) Webhook(ctx context.Context, id string) (*Webhook, error) {
	data, err := getJSON[webhookData](ctx, c.s, "webhooks/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("getting webhook: %w", err)
	}
	return newWebhook(c.s, data), nil
}

// Webhooks lists the registered webhooks.
func (c *Client) Webhooks(ctx context.Context, opts ListOptions) (*PaginatedResponse[*Webhook], error) {
	page, err := fetchPage(ctx, c.s, "webhooks", &RequestOptions{Query: encodeSort(opts)}, func(d webhookData) *Webhook {
		return newWebhook(c.s, d)
	})
	if err != nil {
		return nil, fmt.Errorf("getting webhooks: %w", err)
	}
	return page, nil
}

// WebhookSecret retrieves the secret deliveries are signed with.
func (c *Client) WebhookSecret(ctx context.Context) (string, error) {
	out, err := postJSON[struct {
		Secret string `json:"secret"`
	}](ctx, c.s, "webhooks/secret", struct{}{}, nil)
	if err != nil {
		return "", fmt.Errorf("getting webhook secret: %w", err)
	}
	return out.Secret, nil
}
