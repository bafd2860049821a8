package printone

// Finish is the coating of a printed card.
type Finish string

const (
	FinishGlossy Finish = "GLOSSY"
	FinishMatte  Finish = "MATTE"
)

// Format is the size and shape of a printed product.
type Format string

const (
	FormatPostcardA5       Format = "POSTCARD_A5"
	FormatPostcardA6       Format = "POSTCARD_A6"
	FormatPostcardSQ14     Format = "POSTCARD_SQ14"
	FormatPostcardSQ15     Format = "POSTCARD_SQ15"
	FormatGreetingCardA5   Format = "GREETINGCARD_A5"
	FormatGreetingCardSQ14 Format = "GREETINGCARD_SQ14"
	FormatGreetingCardSQ15 Format = "GREETINGCARD_SQ15"
)

// OrderStatus is the detailed state of an order.
type OrderStatus string

const (
	OrderStatusCreated      OrderStatus = "order_created"
	OrderStatusPDFCreated   OrderStatus = "order_pdf_created"
	OrderStatusPDFQueued    OrderStatus = "order_pdf_queued"
	OrderStatusScheduled    OrderStatus = "order_scheduled"
	OrderStatusPDFDelivered OrderStatus = "order_pdf_delivered"
	OrderStatusCancelled    OrderStatus = "order_cancelled"
	OrderStatusFailed       OrderStatus = "order_failed"
)

// FriendlyStatus is the coarse order status computed by the server.
type FriendlyStatus string

const (
	FriendlyStatusProcessing FriendlyStatus = "Processing"
	FriendlyStatusSuccess    FriendlyStatus = "Success"
	FriendlyStatusSent       FriendlyStatus = "Sent"
	FriendlyStatusScheduled  FriendlyStatus = "Scheduled"
	FriendlyStatusCancelled  FriendlyStatus = "Cancelled"
	FriendlyStatusFailed     FriendlyStatus = "Failed"
)

// BatchStatus is the state of a batch.
type BatchStatus string

const (
	BatchStatusCreated         BatchStatus = "batch_created"
	BatchStatusNeedsApproval   BatchStatus = "batch_needs_approval"
	BatchStatusUserReady       BatchStatus = "batch_user_ready"
	BatchStatusReadyToSchedule BatchStatus = "batch_ready_to_schedule"
	BatchStatusScheduling      BatchStatus = "batch_scheduling"
	BatchStatusScheduled       BatchStatus = "batch_scheduled"
	BatchStatusSent            BatchStatus = "batch_sent"
)

// CsvStatus is the state of a CSV import.
type CsvStatus string

const (
	CsvStatusCreated   CsvStatus = "order_created"
	CsvStatusProcessed CsvStatus = "order_processed"
)

// FriendlyCsvStatus is the coarse state of a CSV import.
type FriendlyCsvStatus string

const (
	FriendlyCsvStatusProcessing FriendlyCsvStatus = "Processing"
	FriendlyCsvStatusSuccess    FriendlyCsvStatus = "Success"
)

// Friendly maps s onto its coarse status.
func (s CsvStatus) Friendly() FriendlyCsvStatus {
	if s == CsvStatusProcessed {
		return FriendlyCsvStatusSuccess
	}
	return FriendlyCsvStatusProcessing
}

// WebhookEvent names the kind of a webhook delivery.
type WebhookEvent string

const (
	WebhookEventOrderStatusUpdate       WebhookEvent = "order_status_update"
	WebhookEventTemplatePreviewRendered WebhookEvent = "template_preview_rendered"
	WebhookEventBatchStatusUpdate       WebhookEvent = "batch_status_update"
	WebhookEventCouponCodeUsed          WebhookEvent = "coupon_code_used"
)
