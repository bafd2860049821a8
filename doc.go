// Package printone provides a client for the print.one API.
//
// The print.one API sends printed postcards and greeting cards. Templates
// are designed once and orders are created from them, either one at a time,
// grouped in batches, or imported from a CSV file.
//
// Basic usage:
//
//	client := printone.New(apiKey, printone.WithLogger(slog.Default()))
//
//	// Send a single postcard
//	order, err := client.CreateOrder(ctx, printone.CreateOrderRequest{
//		Recipient:  recipient,
//		Sender:     &sender,
//		TemplateID: templateID,
//	})
//
//	// List the cancelled orders, page by page
//	page, err := client.Orders(ctx, printone.OrderQuery{
//		FriendlyStatus: []printone.FriendlyStatus{printone.FriendlyStatusCancelled},
//	})
//	for order, err := range page.All(ctx) {
//		...
//	}
//
// Entities returned by the client keep a reference to it, so follow-up calls
// such as Order.Cancel or Batch.CreateOrder need no extra arguments.
//
// Rendering and processing happen asynchronously on the server. Preview
// downloads retry while the render is missing and return a *TimeoutError
// when it does not appear in time. Order downloads and cancellations wait
// while the order is still being created and proceed once the wait runs out.
//
// Webhook deliveries are signed with the company's webhook secret. Use
// Client.ValidateWebhook or a WebhookValidator to check and decode them.
package printone
